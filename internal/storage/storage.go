package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/consolidate"
	"github.com/dharmasatrya/faresweep/internal/models"
)

const fileStampLayout = "20060102_150405"

func SearchFileName(origin, destination string, at time.Time) string {
	return fmt.Sprintf("%s_%s_flights_%s.json", origin, destination, at.Format(fileStampLayout))
}

func ConsolidationFileName(origin, destination string) string {
	return fmt.Sprintf("%s_%s_flight_results.json", origin, destination)
}

// SummaryFileName names the summary document; ext is "md" or "html".
func SummaryFileName(origin, destination, ext string) string {
	return fmt.Sprintf("%s_%s_final_results_summary.%s", origin, destination, ext)
}

// Store writes result documents as flat files under one directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger.Named("storage")}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SearchPattern matches every search file written for the route.
func (s *Store) SearchPattern(origin, destination string) string {
	return s.Path(consolidate.DefaultPattern(origin, destination))
}

func (s *Store) SaveSearch(file models.SearchFile, at time.Time) (string, error) {
	name := SearchFileName(file.SearchParameters.Origin, file.SearchParameters.Destination, at)
	return s.writeJSON(name, file)
}

func (s *Store) SaveConsolidation(origin, destination string, file models.ConsolidationFile) (string, error) {
	return s.writeJSON(ConsolidationFileName(origin, destination), file)
}

func (s *Store) SaveSummary(origin, destination, markdown string) (string, error) {
	return s.write(SummaryFileName(origin, destination, "md"), []byte(markdown))
}

func (s *Store) SaveSummaryHTML(origin, destination, html string) (string, error) {
	return s.write(SummaryFileName(origin, destination, "html"), []byte(html))
}

func (s *Store) writeJSON(name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return s.write(name, buf.Bytes())
}

// write replaces the file through a temporary sibling so readers never see a
// partial document.
func (s *Store) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	s.logger.Info("file saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
