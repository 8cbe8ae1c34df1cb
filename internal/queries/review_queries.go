package queries

const reviewColumns = `id, trip_id, user_id, rating, body, created_at, updated_at`

const InsertReview = `
INSERT INTO reviews (trip_id, user_id, rating, body)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`

const SelectReviewByID = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

const UpdateReview = `
UPDATE reviews SET rating = $2, body = $3, updated_at = now()
WHERE id = $1
RETURNING updated_at`

const DeleteReview = `DELETE FROM reviews WHERE id = $1`

const SelectTripReviews = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE trip_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3`
