package types

import (
	"time"

	"github.com/google/uuid"
)

// ====== ENUMS ======

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

type PhotoStatus string

const (
	PhotoPending PhotoStatus = "pending"
	PhotoReady   PhotoStatus = "ready"
	PhotoFailed  PhotoStatus = "failed"
)

// ====== CORE TYPES ======

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy of u without private fields.
func (u User) Public() User {
	u.Email = ""
	u.PasswordHash = ""
	return u
}

type UserProfile struct {
	User
	TripCount      int `json:"tripCount"`
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
}

type Trip struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Destination   string     `json:"destination"`
	StartDate     *Date      `json:"startDate,omitempty"`
	EndDate       *Date      `json:"endDate,omitempty"`
	Visibility    Visibility `json:"visibility"`
	Tags          []string   `json:"tags"`
	CoverPhotoID  *uuid.UUID `json:"coverPhotoId,omitempty"`
	LikeCount     int        `json:"likeCount"`
	ReviewCount   int        `json:"reviewCount"`
	AverageRating float64    `json:"averageRating"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type ItineraryDay struct {
	ID        uuid.UUID       `json:"id"`
	TripID    uuid.UUID       `json:"tripId"`
	DayNumber int             `json:"dayNumber"`
	Date      *Date           `json:"date,omitempty"`
	Title     string          `json:"title"`
	Notes     string          `json:"notes"`
	Items     []ItineraryItem `json:"items"`
}

type ItineraryItem struct {
	ID        uuid.UUID `json:"id"`
	DayID     uuid.UUID `json:"dayId"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartTime string    `json:"startTime,omitempty"`
	Notes     string    `json:"notes"`
}

type Photo struct {
	ID          uuid.UUID   `json:"id"`
	TripID      uuid.UUID   `json:"tripId"`
	UserID      uuid.UUID   `json:"userId"`
	Caption     string      `json:"caption"`
	ContentType string      `json:"contentType"`
	SizeBytes   int64       `json:"sizeBytes"`
	Checksum    string      `json:"checksum,omitempty"`
	StoragePath string      `json:"-"`
	Status      PhotoStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"tripId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Like struct {
	TripID    uuid.UUID `json:"tripId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Follow struct {
	FollowerID uuid.UUID `json:"followerId"`
	FolloweeID uuid.UUID `json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ====== HELPERS ======

// CanView reports whether viewer may see trip. viewer is uuid.Nil for
// anonymous requests; follows tells whether viewer follows the trip owner.
func CanView(trip *Trip, viewer uuid.UUID, follows bool) bool {
	if viewer != uuid.Nil && viewer == trip.UserID {
		return true
	}
	switch trip.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityFollowers:
		return viewer != uuid.Nil && follows
	default:
		return false
	}
}
