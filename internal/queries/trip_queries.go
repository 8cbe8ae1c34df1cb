package queries

const TripColumns = `
    t.id, t.user_id, t.title, t.description, t.destination,
    t.start_date, t.end_date, t.visibility, t.tags, t.cover_photo_id, t.like_count,
    coalesce(r.review_count, 0), coalesce(r.average_rating, 0),
    t.created_at, t.updated_at`

const TripFrom = `
FROM trips t
LEFT JOIN LATERAL (
    SELECT count(*) AS review_count, avg(rating)::float8 AS average_rating
    FROM reviews WHERE trip_id = t.id
) r ON true`

const InsertTrip = `
INSERT INTO trips (user_id, title, description, destination, start_date, end_date, visibility, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`

const SelectTripByID = `SELECT ` + TripColumns + TripFrom + ` WHERE t.id = $1`

const UpdateTrip = `
UPDATE trips SET
    title = $2, description = $3, destination = $4,
    start_date = $5, end_date = $6, visibility = $7, tags = $8,
    updated_at = now()
WHERE id = $1
RETURNING updated_at`

const DeleteTrip = `DELETE FROM trips WHERE id = $1`

const SetCoverPhoto = `UPDATE trips SET cover_photo_id = $2, updated_at = now() WHERE id = $1`

const SelectFeed = `
SELECT ` + TripColumns + TripFrom + `
WHERE t.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
  AND t.visibility IN ('public', 'followers')
ORDER BY t.created_at DESC, t.id
LIMIT $2 OFFSET $3`
