package itinerary

import "github.com/Conversly/tripshare/internal/types"

type ReplaceRequest struct {
	Days []DayRequest `json:"days" binding:"max=366,dive"`
}

type DayRequest struct {
	DayNumber int           `json:"dayNumber"`
	Date      *types.Date   `json:"date"`
	Title     string        `json:"title" binding:"max=200"`
	Notes     string        `json:"notes" binding:"max=5000"`
	Items     []ItemRequest `json:"items" binding:"max=100,dive"`
}

type ItemRequest struct {
	Position  int    `json:"position"`
	Title     string `json:"title" binding:"required,max=200"`
	Location  string `json:"location" binding:"max=200"`
	StartTime string `json:"startTime"`
	Notes     string `json:"notes" binding:"max=2000"`
}
