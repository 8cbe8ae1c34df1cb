package trips

import (
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
)

type CreateTripRequest struct {
	Title       string           `json:"title" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Destination string           `json:"destination" binding:"max=200"`
	StartDate   *types.Date      `json:"startDate"`
	EndDate     *types.Date      `json:"endDate"`
	Visibility  types.Visibility `json:"visibility" binding:"omitempty,visibility"`
	Tags        []string         `json:"tags"`
}

// UpdateTripRequest changes only the fields that are sent.
type UpdateTripRequest struct {
	Title       *string           `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string           `json:"description" binding:"omitempty,max=5000"`
	Destination *string           `json:"destination" binding:"omitempty,max=200"`
	StartDate   *types.Date       `json:"startDate"`
	EndDate     *types.Date       `json:"endDate"`
	ClearDates  bool              `json:"clearDates"`
	Visibility  *types.Visibility `json:"visibility" binding:"omitempty,visibility"`
	Tags        *[]string         `json:"tags"`
}

// SetCoverRequest picks the cover photo; a null photoId clears it.
type SetCoverRequest struct {
	PhotoID *uuid.UUID `json:"photoId"`
}

type ListQuery struct {
	UserID      *uuid.UUID
	Query       string
	Destination string
	Tag         string
	Limit       int
	Offset      int
}
