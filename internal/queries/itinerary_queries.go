package queries

const DeleteItinerary = `DELETE FROM itinerary_days WHERE trip_id = $1`

const InsertItineraryDay = `
INSERT INTO itinerary_days (trip_id, day_number, date, title, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

const InsertItineraryItem = `
INSERT INTO itinerary_items (day_id, position, title, location, start_time, notes)
VALUES ($1, $2, $3, $4, $5::time, $6)
RETURNING id`

const TouchTrip = `UPDATE trips SET updated_at = now() WHERE id = $1`

const SelectItineraryDays = `
SELECT id, trip_id, day_number, date, title, notes
FROM itinerary_days
WHERE trip_id = $1
ORDER BY day_number`

const SelectItineraryItems = `
SELECT i.id, i.day_id, i.position, i.title, i.location, to_char(i.start_time, 'HH24:MI'), i.notes
FROM itinerary_items i
JOIN itinerary_days d ON d.id = i.day_id
WHERE d.trip_id = $1
ORDER BY d.day_number, i.position`
