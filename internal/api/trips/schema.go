package trips

import (
	"strings"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
)

// NormalizeTag lowercases and trims a tag and joins its words with "-".
func NormalizeTag(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

// NormalizeTags normalizes every tag, drops empty ones and duplicates
// (keeping the first occurrence) and enforces the tag limits.
func NormalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		tag := NormalizeTag(r)
		if tag == "" || seen[tag] {
			continue
		}
		if len([]rune(tag)) > shared.MaxTagLength {
			return nil, utils.BadRequest("tag %q is longer than %d characters", tag, shared.MaxTagLength)
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) > shared.MaxTags {
		return nil, utils.BadRequest("a trip can have at most %d tags", shared.MaxTags)
	}
	return tags, nil
}

func validateDates(start, end *types.Date) error {
	if start != nil && end != nil && end.Before(start.Time) {
		return utils.BadRequest("endDate must not be before startDate")
	}
	return nil
}

// Trip builds the trip owned by owner that the request describes.
func (r CreateTripRequest) Trip(owner uuid.UUID) (*types.Trip, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, utils.BadRequest("title cannot be blank")
	}
	if err := validateDates(r.StartDate, r.EndDate); err != nil {
		return nil, err
	}
	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return nil, err
	}
	visibility := r.Visibility
	if visibility == "" {
		visibility = types.VisibilityPublic
	}
	return &types.Trip{
		UserID:      owner,
		Title:       title,
		Description: strings.TrimSpace(r.Description),
		Destination: strings.TrimSpace(r.Destination),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Visibility:  visibility,
		Tags:        tags,
	}, nil
}

// Apply copies the sent fields onto t and validates the result.
func (r UpdateTripRequest) Apply(t *types.Trip) error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return utils.BadRequest("title cannot be blank")
		}
		t.Title = title
	}
	if r.Description != nil {
		t.Description = strings.TrimSpace(*r.Description)
	}
	if r.Destination != nil {
		t.Destination = strings.TrimSpace(*r.Destination)
	}
	if r.ClearDates {
		t.StartDate, t.EndDate = nil, nil
	}
	if r.StartDate != nil {
		t.StartDate = r.StartDate
	}
	if r.EndDate != nil {
		t.EndDate = r.EndDate
	}
	if err := validateDates(t.StartDate, t.EndDate); err != nil {
		return err
	}
	if r.Visibility != nil {
		if !r.Visibility.Valid() {
			return utils.BadRequest("visibility must be public, followers or private")
		}
		t.Visibility = *r.Visibility
	}
	if r.Tags != nil {
		tags, err := NormalizeTags(*r.Tags)
		if err != nil {
			return err
		}
		t.Tags = tags
	}
	return nil
}
