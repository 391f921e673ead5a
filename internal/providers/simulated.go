package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/providers/data"
	"github.com/dharmasatrya/faresweep/pkg/currency"
)

var ErrSimulatedUnavailable = errors.New("temporary service unavailable")

type catalog struct {
	Routes   []catalogRoute   `json:"routes"`
	Fallback []catalogCarrier `json:"fallback"`
}

type catalogRoute struct {
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Carriers    []catalogCarrier `json:"carriers"`
}

type catalogCarrier struct {
	Name      string `json:"name"`
	BasePrice int64  `json:"base_price"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Duration  string `json:"duration"`
	Stops     int    `json:"stops"`
}

type SimulatedConfig struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64
	// Catalog overrides the embedded carrier catalog when set.
	Catalog []byte
}

// SimulatedProvider produces deterministic offers from a carrier catalog.
// Prices depend only on route, dates, carrier, seat and passenger count, so
// repeated sweeps agree with each other.
type SimulatedProvider struct {
	routes   map[string][]catalogCarrier
	fallback []catalogCarrier
	config   SimulatedConfig
}

func NewSimulatedProvider(cfg SimulatedConfig) (*SimulatedProvider, error) {
	raw := cfg.Catalog
	if raw == nil {
		raw = data.Catalog
	}

	var c catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("simulated provider: %w", err)
	}

	routes := make(map[string][]catalogCarrier, len(c.Routes)*2)
	for _, r := range c.Routes {
		routes[routeKey(r.Origin, r.Destination)] = r.Carriers
		if _, ok := routes[routeKey(r.Destination, r.Origin)]; !ok {
			routes[routeKey(r.Destination, r.Origin)] = r.Carriers
		}
	}

	return &SimulatedProvider{
		routes:   routes,
		fallback: c.Fallback,
		config:   cfg,
	}, nil
}

func (p *SimulatedProvider) Name() string {
	return "simulated"
}

func (p *SimulatedProvider) Search(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, error) {
	if delay := p.latency(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, Classify(p.Name(), ctx.Err())
		}
	}

	if p.config.FailureRate > 0 && rand.Float64() < p.config.FailureRate {
		return nil, NewProviderError(p.Name(), CategoryUnavailable, ErrSimulatedUnavailable)
	}

	carriers, ok := p.routes[routeKey(q.Origin, q.Destination)]
	if !ok {
		carriers = p.fallback
	}

	results := make([]models.FlightRecord, 0, len(carriers))
	for _, c := range carriers {
		results = append(results, p.offer(q, c))
	}
	return results, nil
}

func (p *SimulatedProvider) offer(q models.FareQuery, c catalogCarrier) models.FlightRecord {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s", q.Origin, q.Destination, q.Pair.Key(), c.Name)
	seed := h.Sum64()

	// +/- 25% swing, rounded to 100 won
	swing := float64(seed%5001)/10000 - 0.25
	price := float64(c.BasePrice) * (1 + swing) * seatMultiplier(q.Seat)
	if wd := q.Pair.Departure.Weekday(); wd == time.Friday || wd == time.Saturday {
		price *= 1.12
	}
	adults := max(q.Adults, 1)
	amount := currency.Amount(int64(price/100)*100) * currency.Amount(adults)

	priceText := currency.FormatKRW(amount)
	if seed%97 == 0 {
		priceText = "Price unavailable"
	}

	return models.FlightRecord{
		Name:      c.Name,
		Departure: withDateMarker(c.Departure, q.Pair.Departure),
		Arrival:   withDateMarker(c.Arrival, q.Pair.Departure),
		Duration:  c.Duration,
		Stops:     c.Stops,
		Price:     priceText,
		IsBest:    seed%3 == 0,
	}
}

func (p *SimulatedProvider) latency() time.Duration {
	lo, hi := p.config.MinLatency, p.config.MaxLatency
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func seatMultiplier(seat models.SeatClass) float64 {
	switch seat {
	case models.SeatBusiness:
		return 2.8
	case models.SeatFirst:
		return 4.5
	default:
		return 1
	}
}

func withDateMarker(clock string, day time.Time) string {
	return clock + " on " + day.Format("Mon, Jan 2")
}

func routeKey(origin, destination string) string {
	return strings.ToUpper(origin) + "-" + strings.ToUpper(destination)
}
