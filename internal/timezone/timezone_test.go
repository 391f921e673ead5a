package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetTimezoneByAirport(t *testing.T) {
	assert.Equal(t, "KST", GetTimezoneByAirport("pus"))
	assert.Equal(t, "JST", GetTimezoneByAirport("KIX"))
	assert.Equal(t, "UTC", GetTimezoneByAirport("JFK"))
	assert.Equal(t, UTC, GetLocationByAirport("JFK"))
}

func TestLocalDate(t *testing.T) {
	late := time.Date(2025, 5, 20, 16, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), LocalDate(late, "PUS"))
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), LocalDate(late, "LHR"))
}
