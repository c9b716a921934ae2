package model

// TripTag is a coloured label attached to one trip.
type TripTag struct {
	ID     string `json:"id"`
	TripID string `json:"tripId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}
