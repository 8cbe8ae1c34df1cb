package queries

const userColumns = `u.id, u.username, u.email, u.display_name, u.bio, u.avatar_url, u.password_hash, u.created_at, u.updated_at`

const InsertUser = `
INSERT INTO users (username, email, password_hash, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`

const SelectUserByID = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

// Username and email use a case-insensitive collation, so equality here
// ignores case.
const SelectUserByLogin = `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1 OR u.email = $1 LIMIT 1`

const SelectUserProfile = `
SELECT ` + userColumns + `,
       (SELECT count(*) FROM trips t WHERE t.user_id = u.id),
       (SELECT count(*) FROM follows f WHERE f.followee_id = u.id),
       (SELECT count(*) FROM follows f WHERE f.follower_id = u.id)
FROM users u
WHERE u.id = $1`

const UpdateUser = `
UPDATE users u SET
    display_name = coalesce($2, u.display_name),
    bio          = coalesce($3, u.bio),
    avatar_url   = coalesce($4, u.avatar_url),
    updated_at   = now()
WHERE u.id = $1
RETURNING ` + userColumns

// LIKE is not supported on nondeterministic collations, so matching is done
// on the "C" collation with ILIKE. Prefix matches sort first.
const SearchUsers = `
SELECT ` + userColumns + `
FROM users u
WHERE u.username COLLATE "C" ILIKE $1 OR u.display_name ILIKE $1
ORDER BY (u.username COLLATE "C" ILIKE $2) DESC, u.username COLLATE "C"
LIMIT $3 OFFSET $4`
