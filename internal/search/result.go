package search

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/providers"
)

// Progress counts pairs as the sweep advances.
type Progress struct {
	Total     int `json:"total_combinations"`
	Valid     int `json:"valid_combinations"`
	Completed int `json:"completed"`
	Succeeded int `json:"succeeded"`
	NoResult  int `json:"no_result"`
	Errored   int `json:"errored"`
}

type PairError struct {
	Pair models.DatePair
	Err  *providers.ProviderError
}

type Result struct {
	Params     models.SearchParameters
	Outcomes   []models.SearchOutcome
	Errors     []PairError
	Progress   Progress
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// WithFlights returns the outcomes that carry a cheapest flight.
func (r *Result) WithFlights() []models.SearchOutcome {
	out := make([]models.SearchOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.HasFlight() {
			out = append(out, o)
		}
	}
	return out
}

// File renders the result as the document persisted after a sweep.
func (r *Result) File(searchID string, now time.Time) models.SearchFile {
	return models.SearchFile{
		SearchID:         searchID,
		SearchParameters: r.Params,
		Outcomes:         r.Outcomes,
		Summary: models.SearchSummary{
			TotalCombinations: r.Progress.Succeeded,
			ValidCombinations: r.Progress.Valid,
			Succeeded:         r.Progress.Succeeded,
			NoResult:          r.Progress.NoResult,
			Errored:           r.Progress.Errored,
			SearchDate:        now.Format(models.TimestampLayout),
		},
	}
}

// accumulator is the single place outcomes and counters are written. Slots
// are indexed by enumeration order so concurrent completion does not reorder
// the outcome list.
type accumulator struct {
	mu       sync.Mutex
	slots    []*models.SearchOutcome
	errors   []PairError
	progress Progress

	detailLimit   int
	progressEvery int
	notifier      func(Progress)
	logger        *zap.Logger
}

// initialSlots caps the up-front slot allocation; put grows past it.
const initialSlots = 1024

func newAccumulator(total, valid int, cfg Config, logger *zap.Logger) *accumulator {
	return &accumulator{
		slots:         make([]*models.SearchOutcome, 0, min(valid, initialSlots)),
		progress:      Progress{Total: total, Valid: valid},
		detailLimit:   cfg.ErrorDetailLimit,
		progressEvery: cfg.ProgressEvery,
		notifier:      cfg.Notifier,
		logger:        logger,
	}
}

func (a *accumulator) record(idx int, pair models.DatePair, flights []models.FlightRecord, err error) {
	a.mu.Lock()

	a.progress.Completed++
	switch {
	case err != nil:
		a.progress.Errored++
		pe := providers.Classify("", err)
		fields := []zap.Field{
			zap.Stringer("pair", pair),
			zap.String("category", string(pe.Category)),
		}
		if a.progress.Errored <= a.detailLimit {
			a.errors = append(a.errors, PairError{Pair: pair, Err: pe})
			fields = append(fields, zap.String("detail", pe.Error()))
		}
		a.logger.Warn("pair search failed", fields...)

	case len(flights) == 0:
		a.progress.NoResult++
		a.put(idx, models.NewOutcome(pair, nil))
		a.logger.Info("no result", zap.Stringer("pair", pair))

	default:
		a.progress.Succeeded++
		a.put(idx, models.NewOutcome(pair, Cheapest(flights)))
	}

	var notify bool
	snapshot := a.progress
	if a.progress.Completed%a.progressEvery == 0 {
		notify = true
		a.logger.Info("search progress", zap.Int("completed", snapshot.Completed))
	}
	a.mu.Unlock()

	if notify && a.notifier != nil {
		a.notifier(snapshot)
	}
}

func (a *accumulator) put(idx int, o models.SearchOutcome) {
	for len(a.slots) <= idx {
		a.slots = append(a.slots, nil)
	}
	a.slots[idx] = &o
}

func (a *accumulator) snapshot() ([]models.SearchOutcome, []PairError, Progress) {
	a.mu.Lock()
	defer a.mu.Unlock()

	outcomes := make([]models.SearchOutcome, 0, len(a.slots))
	for _, o := range a.slots {
		if o != nil {
			outcomes = append(outcomes, *o)
		}
	}
	errs := make([]PairError, len(a.errors))
	copy(errs, a.errors)
	return outcomes, errs, a.progress
}
