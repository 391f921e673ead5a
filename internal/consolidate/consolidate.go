package consolidate

import (
	"sort"
	"time"

	"github.com/dharmasatrya/faresweep/internal/models"
)

const (
	DefaultTopN = 3
	ArchiveTopN = 10
)

// Result is the deduplicated, direct-only flight set sorted by price.
type Result struct {
	All []models.ConsolidatedFlight
	// Considered counts every outcome fed in, Eligible those that passed the
	// direct/priced filter before deduplication.
	Considered int
	Eligible   int
}

// Consolidate merges any number of outcome collections. Outcomes without a
// flight, with stops, or without a positive price are dropped; per date pair
// only the cheapest flight survives, the first one seen on equal prices.
func Consolidate(sources ...[]models.SearchOutcome) *Result {
	result := &Result{}

	index := make(map[models.PairKey]int)
	var unique []models.ConsolidatedFlight

	for _, source := range sources {
		for _, outcome := range source {
			result.Considered++

			flight, ok := Project(outcome)
			if !ok {
				continue
			}
			result.Eligible++

			key := flight.Key()
			i, seen := index[key]
			if !seen {
				index[key] = len(unique)
				unique = append(unique, flight)
				continue
			}
			if flight.PriceNumeric < unique[i].PriceNumeric {
				unique[i] = flight
			}
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PriceNumeric < unique[j].PriceNumeric
	})

	result.All = unique
	if result.All == nil {
		result.All = []models.ConsolidatedFlight{}
	}
	return result
}

// Project turns an outcome into a ConsolidatedFlight when it holds a direct
// flight with a positive price.
func Project(o models.SearchOutcome) (models.ConsolidatedFlight, bool) {
	if !o.HasFlight() {
		return models.ConsolidatedFlight{}, false
	}

	f := *o.CheapestFlight
	if !f.Direct() {
		return models.ConsolidatedFlight{}, false
	}

	price := f.PriceAmount()
	if !price.Positive() {
		return models.ConsolidatedFlight{}, false
	}

	return models.ConsolidatedFlight{
		DepartureDate: o.DepartureDate,
		ReturnDate:    o.ReturnDate,
		Airline:       f.Name,
		DepartureTime: f.Departure,
		ArrivalTime:   f.Arrival,
		Duration:      f.Duration,
		Price:         f.Price,
		PriceNumeric:  price,
		Stops:         f.Stops,
	}, true
}

// Top returns at most n of the cheapest flights.
func (r *Result) Top(n int) []models.ConsolidatedFlight {
	if n < 0 {
		n = 0
	}
	n = min(n, len(r.All))
	top := make([]models.ConsolidatedFlight, n)
	copy(top, r.All[:n])
	return top
}

// Outcomes projects the consolidated set back to outcomes, so it can be fed
// into Consolidate again.
func (r *Result) Outcomes() []models.SearchOutcome {
	out := make([]models.SearchOutcome, len(r.All))
	for i, f := range r.All {
		out[i] = f.Outcome()
	}
	return out
}

// Summary describes the run for the consolidation output file.
type Summary struct {
	Params models.SearchParameters
	Files  []string
}

func (r *Result) File(s Summary, now time.Time) models.ConsolidationFile {
	files := s.Files
	if files == nil {
		files = []string{}
	}

	return models.ConsolidationFile{
		Summary: models.ConsolidationSummary{
			Route:                 s.Params.Route(),
			FlightType:            "direct",
			Period:                s.Params.Period(),
			Passengers:            s.Params.PassengerSummary(),
			TotalCombinations:     len(r.All),
			AnalysisDate:          now.Format(models.TimestampLayout),
			MonthlyFilesProcessed: files,
		},
		Top3:       r.Top(DefaultTopN),
		AllResults: r.Top(ArchiveTopN),
	}
}
