package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() SearchParameters {
	return SearchParameters{
		Origin:      "pus",
		Destination: " kix ",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		MinStayDays: 1,
		MaxStayDays: 2,
	}
}

func TestNormalize(t *testing.T) {
	p, err := validParams().Normalize()
	require.NoError(t, err)

	assert.Equal(t, "PUS", p.Origin)
	assert.Equal(t, "KIX", p.Destination)
	assert.Equal(t, 1, p.Adults)
	assert.Equal(t, SeatEconomy, p.SeatType)
	assert.Equal(t, "PUS ↔ KIX", p.Route())
	assert.Equal(t, "2025-06-01 ~ 2025-06-03", p.Period())
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SearchParameters)
		want   error
	}{
		{name: "missing origin", mutate: func(p *SearchParameters) { p.Origin = "" }, want: ErrMissingOrigin},
		{name: "missing destination", mutate: func(p *SearchParameters) { p.Destination = "" }, want: ErrMissingDestination},
		{name: "stay range inverted", mutate: func(p *SearchParameters) { p.MinStayDays = 3 }, want: ErrInvalidStayRange},
		{name: "negative min stay", mutate: func(p *SearchParameters) { p.MinStayDays = -1 }, want: ErrInvalidStayRange},
		{name: "bad seat", mutate: func(p *SearchParameters) { p.SeatType = "premium" }, want: ErrInvalidSeatClass},
		{name: "window inverted", mutate: func(p *SearchParameters) { p.EndDate = "2025-05-30" }, want: ErrDateOrder},
		{name: "window too long", mutate: func(p *SearchParameters) { p.StartDate, p.EndDate = "0001-01-01", "9999-12-31" }, want: ErrWindowTooLong},
		{name: "stay too long", mutate: func(p *SearchParameters) { p.MaxStayDays = 5000000 }, want: ErrStayTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := p.Normalize()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWindowSetupError(t *testing.T) {
	p := validParams()
	p.StartDate = "06/01/2025"

	_, err := p.Normalize()
	var setupErr *SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Equal(t, "start_date", setupErr.Field)
}

func TestNormalizeWindowBounds(t *testing.T) {
	p := validParams()
	p.StartDate, p.EndDate = "2025-01-01", "2027-01-02"
	p.MaxStayDays = MaxWindowDays

	_, err := p.Normalize()
	require.NoError(t, err)

	p.EndDate = "2027-01-03"
	_, err = p.Normalize()
	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, "end_date", setupErr.Field)
}

func TestParseSeatClass(t *testing.T) {
	seat, err := ParseSeatClass("Business")
	require.NoError(t, err)
	assert.Equal(t, SeatBusiness, seat)

	seat, err = ParseSeatClass("")
	require.NoError(t, err)
	assert.Equal(t, SeatEconomy, seat)
}
