package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dharmasatrya/faresweep/internal/models"
)

const maxResponseBytes = 8 << 20

type HTTPConfig struct {
	BaseURL     string
	APIKey      string
	ResultsPath string
	Timeout     time.Duration
	Client      *http.Client
}

// HTTPProvider queries a fare API over HTTP. The response is read
// tolerantly: offers are taken from ResultsPath and each offer field falls
// back to its unknown value when missing.
type HTTPProvider struct {
	baseURL     *url.URL
	apiKey      string
	resultsPath string
	client      *http.Client
}

func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("http provider: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("http provider: invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("http provider: unsupported scheme %q", base.Scheme)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	path := cfg.ResultsPath
	if path == "" {
		path = "flights"
	}

	return &HTTPProvider{
		baseURL:     base,
		apiKey:      cfg.APIKey,
		resultsPath: path,
		client:      client,
	}, nil
}

func (p *HTTPProvider) Name() string {
	return "http"
}

func (p *HTTPProvider) Search(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(q), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), CategoryTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		pe := Classify(p.Name(), err)
		if pe.Category == CategoryUnknown {
			pe.Category = CategoryTransport
		}
		return nil, pe
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, Classify(p.Name(), err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, NewProviderError(p.Name(), CategoryUnavailable, statusError(resp.StatusCode, body))
	case resp.StatusCode != http.StatusOK:
		return nil, NewProviderError(p.Name(), CategoryUpstream, statusError(resp.StatusCode, body))
	}

	return p.parse(body)
}

func (p *HTTPProvider) endpoint(q models.FareQuery) string {
	u := *p.baseURL
	u.Path += "/v1/fares/round-trip"

	v := url.Values{}
	v.Set("origin", q.Origin)
	v.Set("destination", q.Destination)
	v.Set("departure_date", q.Pair.Departure.Format(models.DateLayout))
	v.Set("return_date", q.Pair.Return.Format(models.DateLayout))
	v.Set("adults", strconv.Itoa(q.Adults))
	v.Set("seat", string(q.Seat))
	u.RawQuery = v.Encode()

	return u.String()
}

func (p *HTTPProvider) parse(body []byte) ([]models.FlightRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, NewProviderError(p.Name(), CategoryDecode, errors.New("response is not valid json"))
	}

	offers := gjson.GetBytes(body, p.resultsPath)
	if !offers.Exists() || offers.Type == gjson.Null {
		return nil, nil
	}
	if !offers.IsArray() {
		return nil, NewProviderError(p.Name(), CategoryDecode, fmt.Errorf("%s is not an array", p.resultsPath))
	}

	var results []models.FlightRecord
	offers.ForEach(func(_, offer gjson.Result) bool {
		if offer.IsObject() {
			results = append(results, models.FlightFromJSON(offer))
		}
		return true
	})
	return results, nil
}

func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return fmt.Errorf("status %d: %s", code, msg)
}
