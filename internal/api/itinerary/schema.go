package itinerary

import (
	"sort"
	"strings"
	"time"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
)

const startTimeLayout = "15:04"

// Normalize turns the request into the days to store: days sorted by day
// number, which must be unique and at least 1, and each day's items in the
// order of their given positions, renumbered from 0.
func (r ReplaceRequest) Normalize(trip *types.Trip) ([]types.ItineraryDay, error) {
	days := make([]types.ItineraryDay, 0, len(r.Days))
	seen := make(map[int]bool, len(r.Days))

	for _, d := range r.Days {
		if d.DayNumber < 1 {
			return nil, utils.BadRequest("dayNumber must be at least 1, got %d", d.DayNumber)
		}
		if seen[d.DayNumber] {
			return nil, utils.BadRequest("day %d appears more than once", d.DayNumber)
		}
		seen[d.DayNumber] = true

		if err := checkDayDate(trip, d); err != nil {
			return nil, err
		}

		items, err := normalizeItems(d.DayNumber, d.Items)
		if err != nil {
			return nil, err
		}
		days = append(days, types.ItineraryDay{
			DayNumber: d.DayNumber,
			Date:      d.Date,
			Title:     strings.TrimSpace(d.Title),
			Notes:     strings.TrimSpace(d.Notes),
			Items:     items,
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func normalizeItems(day int, reqs []ItemRequest) ([]types.ItineraryItem, error) {
	sorted := make([]ItemRequest, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	items := make([]types.ItineraryItem, 0, len(sorted))
	for i, it := range sorted {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return nil, utils.BadRequest("day %d: item title cannot be blank", day)
		}
		start, err := normalizeStartTime(it.StartTime)
		if err != nil {
			return nil, utils.BadRequest("day %d: %v", day, err)
		}
		items = append(items, types.ItineraryItem{
			Position:  i,
			Title:     title,
			Location:  strings.TrimSpace(it.Location),
			StartTime: start,
			Notes:     strings.TrimSpace(it.Notes),
		})
	}
	return items, nil
}

// normalizeStartTime accepts "H:MM" or "HH:MM" and returns "HH:MM".
func normalizeStartTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(startTimeLayout, s)
	if err != nil {
		return "", utils.BadRequest("startTime %q is not HH:MM", s)
	}
	return t.Format(startTimeLayout), nil
}

// checkDayDate rejects day dates outside the trip's date range.
func checkDayDate(trip *types.Trip, d DayRequest) error {
	if d.Date == nil {
		return nil
	}
	if trip.StartDate != nil && d.Date.Before(trip.StartDate.Time) {
		return utils.BadRequest("day %d is dated before the trip starts", d.DayNumber)
	}
	if trip.EndDate != nil && d.Date.After(trip.EndDate.Time) {
		return utils.BadRequest("day %d is dated after the trip ends", d.DayNumber)
	}
	return nil
}
