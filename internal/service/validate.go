package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
)

const (
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxURLLength         = 2048
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	DefaultColor         = "#6b7280"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// fieldErrors accumulates every invalid field so the client sees all of them
// in one 400 response.
type fieldErrors []apperror.FieldError

func (f *fieldErrors) add(field, format string, args ...any) {
	*f = append(*f, apperror.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f *fieldErrors) required(field, value, label string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "%s is required", label)
	}
}

func (f *fieldErrors) maxLen(field, value, label string, max int) {
	if utf8.RuneCountInString(value) > max {
		f.add(field, "%s must be %d characters or less", label, max)
	}
}

func (f *fieldErrors) optionalMaxLen(field string, value *string, label string, max int) {
	if value != nil {
		f.maxLen(field, *value, label, max)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.Invalid(f)
}

// trimOptional trims *s in place and leaves nil alone.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func validateTrip(t *model.Trip) error {
	var errs fieldErrors
	errs.required("name", t.Name, "name")
	errs.maxLen("name", t.Name, "name", MaxNameLength)
	errs.required("destination", t.Destination, "destination")
	errs.maxLen("destination", t.Destination, "destination", MaxNameLength)
	if t.StartDate.IsZero() {
		errs.add("startDate", "start date is required")
	}
	if t.EndDate.IsZero() {
		errs.add("endDate", "end date is required")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		errs.add("endDate", "end date must not be before start date")
	}
	errs.optionalMaxLen("imageUrl", t.ImageURL, "image URL", MaxURLLength)
	errs.optionalMaxLen("description", t.Description, "description", MaxDescriptionLength)
	return errs.err()
}

func validateSchedule(s *model.Schedule) error {
	var errs fieldErrors
	errs.required("title", s.Title, "title")
	errs.maxLen("title", s.Title, "title", MaxTitleLength)
	if s.Day.IsZero() {
		errs.add("day", "day is required")
	}
	if s.Time != nil && !validClock(*s.Time) {
		errs.add("time", "time must be in HH:MM format")
	}
	errs.optionalMaxLen("location", s.Location, "location", MaxNameLength)
	errs.optionalMaxLen("description", s.Description, "description", MaxDescriptionLength)
	return errs.err()
}

func validatePackingItem(item *model.PackingItem) error {
	var errs fieldErrors
	errs.required("name", item.Name, "name")
	errs.maxLen("name", item.Name, "name", MaxNameLength)
	if item.Quantity < 1 {
		errs.add("quantity", "quantity must be at least 1")
	}
	return errs.err()
}

// validateLabel checks the name and colour shared by tags and packing categories.
func validateLabel(name, color string) error {
	var errs fieldErrors
	errs.required("name", name, "name")
	errs.maxLen("name", name, "name", MaxNameLength)
	if color != "" && !colorPattern.MatchString(color) {
		errs.add("color", "color must be a hex value like #3b82f6")
	}
	return errs.err()
}

func validClock(s string) bool {
	if len(s) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func validateEmail(errs *fieldErrors, email string) {
	if strings.TrimSpace(email) == "" {
		errs.add("email", "email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.add("email", "invalid email format")
	}
}

func validatePassword(errs *fieldErrors, password string) {
	switch {
	case len(password) < MinPasswordLength:
		errs.add("password", "password must be at least %d characters", MinPasswordLength)
	case len(password) > 72:
		errs.add("password", "password must be 72 bytes or fewer")
	}
}
