package queries

const InsertLike = `INSERT INTO likes (user_id, trip_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

const DeleteLike = `DELETE FROM likes WHERE user_id = $1 AND trip_id = $2`

const IncrementLikeCount = `UPDATE trips SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`

const DecrementLikeCount = `UPDATE trips SET like_count = greatest(like_count - 1, 0) WHERE id = $1 RETURNING like_count`

const SelectLikeCount = `SELECT like_count FROM trips WHERE id = $1`

const SelectTripLikers = `
SELECT ` + userColumns + `
FROM likes l JOIN users u ON u.id = l.user_id
WHERE l.trip_id = $1
ORDER BY l.created_at DESC
LIMIT $2 OFFSET $3`

const InsertFollow = `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

const DeleteFollow = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

const SelectIsFollowing = `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`

const SelectFollowers = `
SELECT ` + userColumns + `
FROM follows f JOIN users u ON u.id = f.follower_id
WHERE f.followee_id = $1
ORDER BY f.created_at DESC
LIMIT $2 OFFSET $3`

const SelectFollowing = `
SELECT ` + userColumns + `
FROM follows f JOIN users u ON u.id = f.followee_id
WHERE f.follower_id = $1
ORDER BY f.created_at DESC
LIMIT $2 OFFSET $3`
