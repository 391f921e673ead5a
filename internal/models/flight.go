package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dharmasatrya/faresweep/pkg/currency"
)

const (
	UnknownText  = "unknown"
	UnknownStops = -1
)

// FlightRecord is one round-trip offer as reported by a provider. Fields the
// provider did not supply hold UnknownText / UnknownStops / "".
type FlightRecord struct {
	Name      string
	Departure string
	Arrival   string
	Duration  string
	Stops     int
	Price     string
	Delay     string
	IsBest    bool
}

func (f FlightRecord) PriceAmount() currency.Amount {
	return currency.ParsePrice(f.Price)
}

func (f FlightRecord) Direct() bool {
	return f.Stops == 0
}

type flightWire struct {
	Name      *string `json:"name"`
	Departure *string `json:"departure"`
	Arrival   *string `json:"arrival"`
	Duration  *string `json:"duration"`
	Stops     *int    `json:"stops"`
	Price     *string `json:"price"`
	Delay     *string `json:"delay"`
	IsBest    bool    `json:"is_best"`
}

func (f FlightRecord) MarshalJSON() ([]byte, error) {
	w := flightWire{
		Name:      knownText(f.Name),
		Departure: knownText(f.Departure),
		Arrival:   knownText(f.Arrival),
		Duration:  knownText(f.Duration),
		Price:     nonEmpty(f.Price),
		Delay:     nonEmpty(f.Delay),
		IsBest:    f.IsBest,
	}
	if f.Stops >= 0 {
		stops := f.Stops
		w.Stops = &stops
	}
	return json.Marshal(w)
}

// UnmarshalJSON is tolerant: wrongly typed or missing fields fall back to
// their unknown values instead of failing the whole document.
func (f *FlightRecord) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("flight record: invalid json")
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return errors.New("flight record: expected object")
	}
	*f = FlightFromJSON(r)
	return nil
}

// FlightFromJSON maps a provider offer object onto a FlightRecord.
func FlightFromJSON(r gjson.Result) FlightRecord {
	return FlightRecord{
		Name:      textField(r.Get("name")),
		Departure: textField(r.Get("departure")),
		Arrival:   textField(r.Get("arrival")),
		Duration:  textField(r.Get("duration")),
		Stops:     stopsField(r.Get("stops")),
		Price:     stringField(r.Get("price")),
		Delay:     stringField(r.Get("delay")),
		IsBest:    r.Get("is_best").Type == gjson.True,
	}
}

func textField(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		if v.Str != "" {
			return v.Str
		}
	case gjson.Number:
		return v.Raw
	}
	return UnknownText
}

func stringField(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return ""
}

func stopsField(v gjson.Result) int {
	if v.Type != gjson.Number {
		return UnknownStops
	}
	n := v.Int()
	if n < 0 || float64(n) != v.Num {
		return UnknownStops
	}
	return int(n)
}

func knownText(s string) *string {
	if s == "" || s == UnknownText {
		return nil
	}
	return &s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type DatePair struct {
	Departure time.Time
	Return    time.Time
}

func (p DatePair) StayDays() int {
	return int(p.Return.Sub(p.Departure).Hours() / 24)
}

func (p DatePair) Key() PairKey {
	return PairKey{
		Departure: p.Departure.Format(DateLayout),
		Return:    p.Return.Format(DateLayout),
	}
}

func (p DatePair) String() string {
	return p.Departure.Format(DateLayout) + " -> " + p.Return.Format(DateLayout)
}

// PairKey identifies a round trip by its two dates.
type PairKey struct {
	Departure string
	Return    string
}

func (k PairKey) String() string {
	return k.Departure + "-" + k.Return
}

// SearchOutcome is the result for one valid date pair. CheapestFlight is nil
// when the provider returned no offers.
type SearchOutcome struct {
	DepartureDate  string        `json:"departure_date"`
	ReturnDate     string        `json:"return_date"`
	StayDays       int           `json:"stay_days"`
	CheapestFlight *FlightRecord `json:"cheapest_flight"`
}

func NewOutcome(pair DatePair, cheapest *FlightRecord) SearchOutcome {
	return SearchOutcome{
		DepartureDate:  pair.Departure.Format(DateLayout),
		ReturnDate:     pair.Return.Format(DateLayout),
		StayDays:       pair.StayDays(),
		CheapestFlight: cheapest,
	}
}

func (o SearchOutcome) HasFlight() bool {
	return o.CheapestFlight != nil
}

func (o SearchOutcome) Key() PairKey {
	return PairKey{Departure: o.DepartureDate, Return: o.ReturnDate}
}

// ConsolidatedFlight is a direct, priced flight projected with its dates.
type ConsolidatedFlight struct {
	DepartureDate string          `json:"departure_date"`
	ReturnDate    string          `json:"return_date"`
	Airline       string          `json:"airline"`
	DepartureTime string          `json:"departure_time"`
	ArrivalTime   string          `json:"arrival_time"`
	Duration      string          `json:"duration"`
	Price         string          `json:"price"`
	PriceNumeric  currency.Amount `json:"price_numeric"`
	Stops         int             `json:"stops"`
}

func (c ConsolidatedFlight) Key() PairKey {
	return PairKey{Departure: c.DepartureDate, Return: c.ReturnDate}
}

// StayDays returns false when either date is not in DateLayout.
func (c ConsolidatedFlight) StayDays() (int, bool) {
	dep, err := time.Parse(DateLayout, c.DepartureDate)
	if err != nil {
		return 0, false
	}
	ret, err := time.Parse(DateLayout, c.ReturnDate)
	if err != nil {
		return 0, false
	}
	return DatePair{Departure: dep, Return: ret}.StayDays(), true
}

// Outcome projects the flight back to the outcome it was consolidated from.
func (c ConsolidatedFlight) Outcome() SearchOutcome {
	stay, _ := c.StayDays()
	return SearchOutcome{
		DepartureDate: c.DepartureDate,
		ReturnDate:    c.ReturnDate,
		StayDays:      stay,
		CheapestFlight: &FlightRecord{
			Name:      c.Airline,
			Departure: c.DepartureTime,
			Arrival:   c.ArrivalTime,
			Duration:  c.Duration,
			Stops:     c.Stops,
			Price:     c.Price,
		},
	}
}

// FareQuery is what a provider is asked for one date pair. Provider names
// the fare source answering it and is empty until the orchestrator sets it.
type FareQuery struct {
	Provider    string
	Origin      string
	Destination string
	Pair        DatePair
	Adults      int
	Seat        SeatClass
}

func NewFareQuery(p SearchParameters, pair DatePair) FareQuery {
	return FareQuery{
		Origin:      p.Origin,
		Destination: p.Destination,
		Pair:        pair,
		Adults:      p.Adults,
		Seat:        p.SeatType,
	}
}
