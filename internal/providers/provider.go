package providers

import (
	"context"
	"errors"
	"net"

	"github.com/dharmasatrya/faresweep/internal/models"
)

// Provider answers a round-trip fare query for one date pair. An empty
// slice with a nil error means the provider had no offers.
type Provider interface {
	Name() string
	Search(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, error)
}

type Category string

const (
	CategoryTimeout     Category = "timeout"
	CategoryCanceled    Category = "canceled"
	CategoryTransport   Category = "transport"
	CategoryUpstream    Category = "upstream"
	CategoryUnavailable Category = "unavailable"
	CategoryDecode      Category = "decode"
	CategoryUnknown     Category = "unknown"
)

type ProviderError struct {
	Provider string
	Category Category
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + " [" + string(e.Category) + "]: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, category Category, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Category: category,
		Err:      err,
	}
}

// Classify wraps err in a ProviderError, keeping the category of an existing
// one and inferring it otherwise.
func Classify(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(provider, CategoryTimeout, err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(provider, CategoryCanceled, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewProviderError(provider, CategoryTimeout, err)
		}
		return NewProviderError(provider, CategoryTransport, err)
	}

	return NewProviderError(provider, CategoryUnknown, err)
}
