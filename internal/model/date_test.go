package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.June, 1)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2025-06-01"` {
		t.Errorf("Marshal() = %s, want \"2025-06-01\"", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("Unmarshal() = %v, want %v", back, d)
	}
}

func TestDate_UnmarshalAcceptsTimestamp(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-06-07T10:30:00Z"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d.String() != "2025-06-07" {
		t.Errorf("String() = %q, want 2025-06-07", d.String())
	}
}

func TestDate_UnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"next tuesday"`), &d); err == nil {
		t.Error("Unmarshal() should reject a non-date string")
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{name: "text", src: "2025-06-02", want: "2025-06-02"},
		{name: "bytes", src: []byte("2025-06-03"), want: "2025-06-03"},
		{name: "time", src: time.Date(2025, 6, 4, 23, 0, 0, 0, time.UTC), want: "2025-06-04"},
		{name: "datetime text", src: "2025-06-05 00:00:00+00:00", want: "2025-06-05"},
		{name: "null", src: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("Scan() = %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestTripPatch_ApplyClearsOptionalFields(t *testing.T) {
	img := "https://example.com/paris.jpg"
	trip := Trip{Name: "Paris Trip", ImageURL: &img}

	empty := ""
	name := "Paris Getaway"
	TripPatch{Name: &name, ImageURL: &empty}.Apply(&trip)

	if trip.Name != "Paris Getaway" {
		t.Errorf("Name = %q, want %q", trip.Name, "Paris Getaway")
	}
	if trip.ImageURL != nil {
		t.Errorf("ImageURL = %v, want nil after clearing", *trip.ImageURL)
	}
}
