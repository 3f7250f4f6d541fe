package models

import "time"

type CalendarEvent struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	LocationName *string    `json:"location_name"`
	Description  *string    `json:"description"`
}

// CalendarRange bounds a calendar query by day.
type CalendarRange struct {
	Start time.Time
	End   time.Time
}
