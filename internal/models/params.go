package models

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxWindowDays bounds the search window and the stay length. A sweep makes
// one provider query per valid pair, so wider windows are never practical.
const MaxWindowDays = 731

type SeatClass string

const (
	SeatEconomy  SeatClass = "economy"
	SeatBusiness SeatClass = "business"
	SeatFirst    SeatClass = "first"
)

func ParseSeatClass(s string) (SeatClass, error) {
	switch SeatClass(strings.ToLower(strings.TrimSpace(s))) {
	case "", SeatEconomy:
		return SeatEconomy, nil
	case SeatBusiness:
		return SeatBusiness, nil
	case SeatFirst:
		return SeatFirst, nil
	}
	return "", ErrInvalidSeatClass
}

// SearchParameters describes one sweep. Values are passed around by copy and
// never mutated after Normalize.
type SearchParameters struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	MinStayDays int       `json:"min_stay_days"`
	MaxStayDays int       `json:"max_stay_days"`
	Adults      int       `json:"adults"`
	SeatType    SeatClass `json:"seat_type"`
}

// Normalize returns a validated copy with upper-cased airport codes and
// defaults applied. Date problems come back as *SetupError.
func (p SearchParameters) Normalize() (SearchParameters, error) {
	p.Origin = strings.ToUpper(strings.TrimSpace(p.Origin))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))

	if p.Origin == "" {
		return p, ErrMissingOrigin
	}
	if p.Destination == "" {
		return p, ErrMissingDestination
	}
	if p.Adults <= 0 {
		p.Adults = 1
	}

	seat, err := ParseSeatClass(string(p.SeatType))
	if err != nil {
		return p, err
	}
	p.SeatType = seat

	if p.MinStayDays < 0 || p.MinStayDays > p.MaxStayDays {
		return p, ErrInvalidStayRange
	}
	if p.MaxStayDays > MaxWindowDays {
		return p, &SetupError{Field: "max_stay_days", Err: ErrStayTooLong}
	}

	start, end, err := p.Window()
	if err != nil {
		return p, err
	}
	if end.Sub(start) > MaxWindowDays*24*time.Hour {
		return p, &SetupError{Field: "end_date", Err: ErrWindowTooLong}
	}
	return p, nil
}

// Window parses the search window boundaries as UTC dates.
func (p SearchParameters) Window() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return start, end, &SetupError{Field: "start_date", Err: err}
	}
	end, err = time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return start, end, &SetupError{Field: "end_date", Err: err}
	}
	if end.Before(start) {
		return start, end, &SetupError{Field: "end_date", Err: ErrDateOrder}
	}
	return start, end, nil
}

func (p SearchParameters) Route() string {
	return p.Origin + " ↔ " + p.Destination
}

func (p SearchParameters) Period() string {
	if p.StartDate == "" && p.EndDate == "" {
		return ""
	}
	return p.StartDate + " ~ " + p.EndDate
}

func (p SearchParameters) PassengerSummary() string {
	adults := p.Adults
	if adults <= 0 {
		adults = 1
	}
	seat := p.SeatType
	if seat == "" {
		seat = SeatEconomy
	}
	return fmt.Sprintf("%d adult(s), %s", adults, seat)
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin      ValidationError = "origin is required"
	ErrMissingDestination ValidationError = "destination is required"
	ErrInvalidStayRange   ValidationError = "min_stay_days must be between 0 and max_stay_days"
	ErrInvalidSeatClass   ValidationError = "seat_type must be one of economy, business, first"
	ErrDateOrder          ValidationError = "start_date must not be after end_date"
	ErrWindowTooLong      ValidationError = "search window must not exceed 731 days"
	ErrStayTooLong        ValidationError = "max_stay_days must not exceed 731"
)

// SetupError is a fatal problem with the search parameters themselves.
type SetupError struct {
	Field string
	Err   error
}

func (e *SetupError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
