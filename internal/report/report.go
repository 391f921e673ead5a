package report

import (
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/pkg/currency"
)

// DefaultDateMarker separates a time of day from the date a provider appends
// to it, as in "8:05 AM on Sun, Jun 1".
const DefaultDateMarker = " on"

var airportNames = map[string]string{
	"PUS": "김해국제공항",
	"NRT": "도쿄",
	"KIX": "오사카",
	"ICN": "인천국제공항",
	"GMP": "김포국제공항",
}

// AirportName returns a display name for code, or code itself.
func AirportName(code string) string {
	if name, ok := airportNames[code]; ok {
		return name
	}
	return code
}

type PriceStats struct {
	Min  currency.Amount `json:"min"`
	Max  currency.Amount `json:"max"`
	Mean float64         `json:"mean"`
}

type CarrierStat struct {
	Airline  string          `json:"airline"`
	Count    int             `json:"count"`
	MinPrice currency.Amount `json:"min_price"`
}

type Highlight struct {
	Flight   models.ConsolidatedFlight `json:"flight"`
	StayDays int                       `json:"stay_days"`
}

// RunLog is what the report tells about the runs behind the consolidated set.
type RunLog struct {
	SkippedFiles []string `json:"skipped_files,omitempty"`
	FailedPairs  int      `json:"failed_pairs"`
	NoResult     int      `json:"no_result"`
	Notes        []string `json:"notes,omitempty"`
}

type Report struct {
	Params      models.SearchParameters     `json:"params"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Empty       bool                        `json:"empty"`
	Total       int                         `json:"total"`
	Top         []models.ConsolidatedFlight `json:"top"`
	Stats       *PriceStats                 `json:"stats,omitempty"`
	Carriers    []CarrierStat               `json:"carriers"`
	Cheapest    *Highlight                  `json:"cheapest,omitempty"`
	Log         RunLog                      `json:"log"`
	Files       []string                    `json:"files,omitempty"`
}

// Build computes the report over flights, which must already be sorted by
// price. Statistics cover the whole set, not only the top slice. An empty
// set yields a report with Empty set and no statistics.
func Build(flights []models.ConsolidatedFlight, topN int, params models.SearchParameters, now time.Time) *Report {
	r := &Report{
		Params:      params,
		GeneratedAt: now,
		Total:       len(flights),
		Top:         []models.ConsolidatedFlight{},
		Carriers:    []CarrierStat{},
	}

	if len(flights) == 0 {
		r.Empty = true
		return r
	}

	n := min(max(topN, 0), len(flights))
	r.Top = append(r.Top, flights[:n]...)

	r.Stats = priceStats(flights)
	r.Carriers = carrierStats(flights)

	cheapest := flights[0]
	stay, _ := cheapest.StayDays()
	r.Cheapest = &Highlight{Flight: cheapest, StayDays: stay}

	return r
}

func priceStats(flights []models.ConsolidatedFlight) *PriceStats {
	stats := &PriceStats{Min: flights[0].PriceNumeric, Max: flights[0].PriceNumeric}
	var sum float64
	for _, f := range flights {
		stats.Min = min(stats.Min, f.PriceNumeric)
		stats.Max = max(stats.Max, f.PriceNumeric)
		sum += float64(f.PriceNumeric)
	}
	stats.Mean = sum / float64(len(flights))
	return stats
}

// carrierStats orders carriers by their minimum price, first seen first on
// equal minimums.
func carrierStats(flights []models.ConsolidatedFlight) []CarrierStat {
	index := make(map[string]int)
	var stats []CarrierStat

	for _, f := range flights {
		i, ok := index[f.Airline]
		if !ok {
			index[f.Airline] = len(stats)
			stats = append(stats, CarrierStat{Airline: f.Airline, Count: 1, MinPrice: f.PriceNumeric})
			continue
		}
		stats[i].Count++
		stats[i].MinPrice = min(stats[i].MinPrice, f.PriceNumeric)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].MinPrice < stats[j].MinPrice
	})
	return stats
}

// StripDateMarker keeps the part of s before the first occurrence of marker.
// s is returned unchanged when marker is empty or absent.
func StripDateMarker(s, marker string) string {
	if marker == "" {
		return s
	}
	prefix, _, found := strings.Cut(s, marker)
	if !found {
		return s
	}
	return prefix
}
