package model

import "time"

// Schedule is one itinerary entry on a given day of a trip.
type Schedule struct {
	ID          string    `json:"id"`
	TripID      string    `json:"tripId"`
	Day         Date      `json:"day"`
	Time        *string   `json:"time,omitempty"` // "HH:MM"
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SchedulePatch enumerates the schedule fields that may be changed.
type SchedulePatch struct {
	Day         *Date   `json:"day,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Title       *string `json:"title,omitempty"`
}

func (p SchedulePatch) IsEmpty() bool {
	return p.Day == nil && p.Time == nil && p.Location == nil &&
		p.Description == nil && p.Title == nil
}

func (p SchedulePatch) Apply(s *Schedule) {
	if p.Day != nil {
		s.Day = *p.Day
	}
	if p.Time != nil {
		s.Time = optional(*p.Time)
	}
	if p.Location != nil {
		s.Location = optional(*p.Location)
	}
	if p.Description != nil {
		s.Description = optional(*p.Description)
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
}
