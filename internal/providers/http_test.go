package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/faresweep/internal/models"
)

func testQuery() models.FareQuery {
	return models.FareQuery{
		Origin:      "PUS",
		Destination: "KIX",
		Pair: models.DatePair{
			Departure: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Return:    time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		},
		Adults: 2,
		Seat:   models.SeatEconomy,
	}
}

func TestHTTPProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/fares/round-trip", r.URL.Path)
		assert.Equal(t, "PUS", r.URL.Query().Get("origin"))
		assert.Equal(t, "2025-06-04", r.URL.Query().Get("return_date"))
		assert.Equal(t, "2", r.URL.Query().Get("adults"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"offers": [
			{"name": "Jeju Air", "departure": "10:40 AM on Sun, Jun 1", "stops": 0, "price": "₩254,000", "is_best": true},
			{"name": "Korean Air", "stops": 1, "price": "₩412,000"},
			"garbage"
		]}}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL + "/api/", APIKey: "secret", ResultsPath: "data.offers"})
	require.NoError(t, err)

	flights, err := p.Search(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, "Jeju Air", flights[0].Name)
	assert.True(t, flights[0].IsBest)
	assert.Equal(t, models.UnknownText, flights[1].Departure)
	assert.Equal(t, 1, flights[1].Stops)
}

func TestHTTPProviderNoOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flights": []}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	flights, err := p.Search(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestHTTPProviderFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category Category
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", category: CategoryUpstream},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "", category: CategoryUnavailable},
		{name: "invalid json", status: http.StatusOK, body: "<html>", category: CategoryDecode},
		{name: "results not array", status: http.StatusOK, body: `{"flights": {"a": 1}}`, category: CategoryDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = p.Search(context.Background(), testQuery())
			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.category, pe.Category)
		})
	}
}

func TestHTTPProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Search(ctx, testQuery())
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, CategoryTimeout, pe.Category)
}

func TestNewHTTPProviderValidation(t *testing.T) {
	_, err := NewHTTPProvider(HTTPConfig{})
	assert.Error(t, err)

	_, err = NewHTTPProvider(HTTPConfig{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
