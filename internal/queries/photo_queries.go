package queries

const photoColumns = `id, trip_id, user_id, caption, content_type, size_bytes, checksum, coalesce(storage_path, ''), status, created_at`

const InsertPhoto = `
INSERT INTO photos (trip_id, user_id, caption, content_type, size_bytes, status)
VALUES ($1, $2, $3, $4, $5, 'pending')
RETURNING id, created_at`

const SelectPhotoByID = `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

const SelectTripPhotos = `
SELECT ` + photoColumns + `
FROM photos
WHERE trip_id = $1 AND (status = 'ready' OR user_id = $2)
ORDER BY created_at, id`

const UpdatePhotoStatus = `
UPDATE photos SET status = $2, storage_path = nullif($3, ''), checksum = $4
WHERE id = $1`

const DeletePhoto = `DELETE FROM photos WHERE id = $1 RETURNING coalesce(storage_path, '')`

const SelectLegacyPhotos = `
SELECT id, trip_id, user_id, filename
FROM photos
WHERE storage_path IS NULL AND filename IS NOT NULL AND id > $1
ORDER BY id
LIMIT $2`

const SetPhotoStorage = `
UPDATE photos SET storage_path = $2, checksum = $3, size_bytes = $4, status = 'ready'
WHERE id = $1`

const SelectStoredPhotos = `
SELECT ` + photoColumns + `
FROM photos
WHERE storage_path IS NOT NULL AND id > $1
ORDER BY id
LIMIT $2`
