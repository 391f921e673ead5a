package consolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/models"
)

var ErrNoFiles = errors.New("no result files matched")

// FileError is a result file that could not be used. It is reported and
// skipped, never fatal to the remaining files.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func DefaultPattern(origin, destination string) string {
	return fmt.Sprintf("%s_%s_flights_*.json", origin, destination)
}

type LoadedFile struct {
	Path     string
	Params   *models.SearchParameters
	Summary  *models.SearchSummary
	Outcomes []models.SearchOutcome
	Skipped  int
}

type LoadResult struct {
	Files  []LoadedFile
	Failed []*FileError
}

func (r *LoadResult) Sources() [][]models.SearchOutcome {
	sources := make([][]models.SearchOutcome, len(r.Files))
	for i, f := range r.Files {
		sources[i] = f.Outcomes
	}
	return sources
}

// Failures sums the errored and empty pairs the loaded searches recorded.
func (r *LoadResult) Failures() (errored, noResult int) {
	for _, f := range r.Files {
		if f.Summary != nil {
			errored += f.Summary.Errored
			noResult += f.Summary.NoResult
		}
	}
	return errored, noResult
}

func (r *LoadResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// Params merges the search parameters recorded in the loaded files: the
// window spans the earliest start to the latest end, the rest comes from the
// first file that recorded parameters. Origin and destination fall back to
// the given route.
func (r *LoadResult) Params(origin, destination string) models.SearchParameters {
	merged := models.SearchParameters{Origin: origin, Destination: destination}
	first := true
	for _, f := range r.Files {
		if f.Params == nil {
			continue
		}
		p := *f.Params
		if first {
			merged = p
			if merged.Origin == "" {
				merged.Origin = origin
			}
			if merged.Destination == "" {
				merged.Destination = destination
			}
			first = false
			continue
		}
		if p.StartDate != "" && (merged.StartDate == "" || p.StartDate < merged.StartDate) {
			merged.StartDate = p.StartDate
		}
		if p.EndDate > merged.EndDate {
			merged.EndDate = p.EndDate
		}
	}
	return merged
}

// LoadFiles reads every file matching pattern. Unreadable or malformed files
// are collected in Failed; ErrNoFiles is returned when nothing matched.
func LoadFiles(pattern string, logger *zap.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	result := &LoadResult{}
	for _, path := range paths {
		f, err := LoadFile(path)
		if err != nil {
			var fe *FileError
			if !errors.As(err, &fe) {
				fe = &FileError{Path: path, Err: err}
			}
			result.Failed = append(result.Failed, fe)
			logger.Warn("skipping result file", zap.String("file", path), zap.Error(fe.Err))
			continue
		}

		result.Files = append(result.Files, *f)
		logger.Info("result file loaded",
			zap.String("file", path),
			zap.Int("outcomes", len(f.Outcomes)),
			zap.Int("skipped_entries", f.Skipped),
		)
	}
	return result, nil
}

type searchFileWire struct {
	Params   json.RawMessage    `json:"search_parameters"`
	Summary  json.RawMessage    `json:"search_summary"`
	Outcomes *[]json.RawMessage `json:"cheapest_option_per_date_pair"`
}

// LoadFile decodes one search result file. Individual malformed entries are
// skipped and counted; a missing or malformed document is a *FileError.
func LoadFile(path string) (*LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	var wire searchFileWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	if wire.Outcomes == nil {
		return nil, &FileError{Path: path, Err: errors.New("missing cheapest_option_per_date_pair")}
	}

	loaded := &LoadedFile{Path: path}
	if len(wire.Params) > 0 {
		var p models.SearchParameters
		if err := json.Unmarshal(wire.Params, &p); err == nil {
			loaded.Params = &p
		}
	}
	if len(wire.Summary) > 0 {
		var sum models.SearchSummary
		if err := json.Unmarshal(wire.Summary, &sum); err == nil {
			loaded.Summary = &sum
		}
	}

	for _, raw := range *wire.Outcomes {
		var o models.SearchOutcome
		if err := json.Unmarshal(raw, &o); err != nil {
			loaded.Skipped++
			continue
		}
		loaded.Outcomes = append(loaded.Outcomes, o)
	}
	return loaded, nil
}
