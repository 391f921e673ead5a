package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/cache"
	"github.com/dharmasatrya/faresweep/internal/dates"
	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/providers"
	"github.com/dharmasatrya/faresweep/internal/ratelimit"
)

const (
	DefaultErrorDetailLimit = 5
	DefaultProgressEvery    = 10
	DefaultQueryTimeout     = 30 * time.Second
)

type State string

const (
	StateIdle        State = "idle"
	StateEnumerating State = "enumerating"
	StateQuerying    State = "querying"
	StateCompleted   State = "completed"
	StateCanceled    State = "canceled"
	StateFailed      State = "failed"
)

type Config struct {
	QueryTimeout     time.Duration
	Workers          int
	ErrorDetailLimit int
	ProgressEvery    int
	RateLimiter      *ratelimit.ProviderLimiter
	Cache            cache.Cache
	// Notifier is called every ProgressEvery completed pairs.
	Notifier func(Progress)
}

func DefaultConfig() Config {
	return Config{
		QueryTimeout:     DefaultQueryTimeout,
		Workers:          1,
		ErrorDetailLimit: DefaultErrorDetailLimit,
		ProgressEvery:    DefaultProgressEvery,
	}
}

// Orchestrator sweeps every valid date pair of a search window against one
// provider and keeps the cheapest offer per pair.
type Orchestrator struct {
	provider providers.Provider
	config   Config
	logger   *zap.Logger
}

func NewOrchestrator(provider providers.Provider, config Config, logger *zap.Logger) *Orchestrator {
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = DefaultQueryTimeout
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.ErrorDetailLimit < 0 {
		config.ErrorDetailLimit = 0
	}
	if config.ProgressEvery <= 0 {
		config.ProgressEvery = DefaultProgressEvery
	}
	if config.Cache == nil {
		config.Cache = cache.NewNoOpCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		provider: provider,
		config:   config,
		logger:   logger.Named("search"),
	}
}

// Run validates params, then queries the provider once per valid date pair.
// Per-pair failures are counted and skipped. Only invalid parameters
// (*models.SetupError) and cancellation of ctx are returned as errors; on
// cancellation the partial result is returned alongside ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, params models.SearchParameters) (*Result, error) {
	result := &Result{Params: params, State: StateIdle, StartedAt: time.Now()}

	normalized, err := params.Normalize()
	if err != nil {
		result.State = StateFailed
		result.FinishedAt = time.Now()
		var setupErr *models.SetupError
		if !errors.As(err, &setupErr) {
			err = &models.SetupError{Field: "parameters", Err: err}
		}
		return result, err
	}
	result.Params = normalized

	enum, err := dates.FromParams(normalized)
	if err != nil {
		result.State = StateFailed
		result.FinishedAt = time.Now()
		return result, err
	}

	total, valid := enum.Count()
	result.State = StateEnumerating
	o.logger.Info("search started",
		zap.String("route", normalized.Route()),
		zap.String("period", normalized.Period()),
		zap.Int("stay_min", normalized.MinStayDays),
		zap.Int("stay_max", normalized.MaxStayDays),
		zap.Int("dates", enum.Days()),
		zap.Int("combinations", total),
		zap.Int("valid_combinations", valid),
		zap.Int("workers", o.config.Workers),
	)

	acc := newAccumulator(total, valid, o.config, o.logger)
	result.State = StateQuerying

	if o.config.Workers > 1 {
		err = o.runPooled(ctx, normalized, enum, acc)
	} else {
		o.runSequential(ctx, normalized, enum, acc)
	}

	result.Outcomes, result.Errors, result.Progress = acc.snapshot()
	result.FinishedAt = time.Now()

	if err != nil {
		result.State = StateFailed
		return result, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.State = StateCanceled
		o.logger.Warn("search canceled", zap.Int("completed", result.Progress.Completed))
		return result, ctxErr
	}

	result.State = StateCompleted
	o.logger.Info("search completed",
		zap.Int("combinations", result.Progress.Total),
		zap.Int("valid_combinations", result.Progress.Valid),
		zap.Int("succeeded", result.Progress.Succeeded),
		zap.Int("no_result", result.Progress.NoResult),
		zap.Int("errored", result.Progress.Errored),
		zap.Duration("elapsed", result.Elapsed()),
	)
	return result, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, params models.SearchParameters, enum *dates.Enumerator, acc *accumulator) {
	idx := 0
	for pair := range enum.All() {
		if ctx.Err() != nil {
			return
		}
		o.process(ctx, params, idx, pair, acc)
		idx++
	}
}

func (o *Orchestrator) runPooled(ctx context.Context, params models.SearchParameters, enum *dates.Enumerator, acc *accumulator) error {
	pool, err := ants.NewPool(o.config.Workers,
		ants.WithPanicHandler(func(p interface{}) {
			o.logger.Error("search worker panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	idx := 0
	for pair := range enum.All() {
		if ctx.Err() != nil {
			break
		}

		i, p := idx, pair
		idx++
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			o.process(ctx, params, i, p, acc)
		}); err != nil {
			wg.Done()
			acc.record(i, p, nil, providers.NewProviderError(o.provider.Name(), providers.CategoryUnknown, err))
		}
	}

	wg.Wait()
	return nil
}

func (o *Orchestrator) process(ctx context.Context, params models.SearchParameters, idx int, pair models.DatePair, acc *accumulator) {
	q := models.NewFareQuery(params, pair)
	q.Provider = o.provider.Name()
	flights, err := o.query(ctx, q)
	if err != nil && ctx.Err() != nil {
		// The whole run is being canceled; this pair is not a provider failure.
		return
	}
	acc.record(idx, pair, flights, err)
}

func (o *Orchestrator) query(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, error) {
	name := o.provider.Name()

	if cached, found := o.config.Cache.Get(ctx, q); found {
		o.logger.Debug("cache hit", zap.Stringer("pair", q.Pair))
		return cached, nil
	}

	if o.config.RateLimiter != nil {
		if err := o.config.RateLimiter.Wait(ctx, name); err != nil {
			return nil, providers.Classify(name, err)
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, o.config.QueryTimeout)
	defer cancel()

	flights, err := o.provider.Search(queryCtx, q)
	if err != nil {
		return nil, providers.Classify(name, err)
	}

	if err := o.config.Cache.Set(ctx, q, flights); err != nil {
		o.logger.Warn("cache write failed", zap.Stringer("pair", q.Pair), zap.Error(err))
	}
	return flights, nil
}

// Cheapest returns the lowest priced offer; on ties the earliest one wins.
// Offers without a readable price only win when nothing else has one.
func Cheapest(flights []models.FlightRecord) *models.FlightRecord {
	if len(flights) == 0 {
		return nil
	}

	best := 0
	bestPrice := flights[0].PriceAmount()
	for i := 1; i < len(flights); i++ {
		if price := flights[i].PriceAmount(); price < bestPrice {
			best, bestPrice = i, price
		}
	}

	cheapest := flights[best]
	return &cheapest
}
