package types

import "github.com/google/uuid"

// TripFilter narrows trip listings. Zero values mean "no constraint";
// Visibilities must be non-empty.
type TripFilter struct {
	UserID       *uuid.UUID
	Query        string
	Destination  string
	Tag          string
	Visibilities []Visibility
	Limit        int
	Offset       int
}

type UserPatch struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// LegacyPhoto is a photo stored in the flat pre-UUID directory layout.
type LegacyPhoto struct {
	ID       uuid.UUID
	TripID   uuid.UUID
	UserID   uuid.UUID
	Filename string
}
