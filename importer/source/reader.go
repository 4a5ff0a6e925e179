/* reader.go
 * Contains the logic used to load the historical JSON exports from a data directory. Per-tournament files are named
 * "YYYY-MM-DD <format token>.json"; the three aggregate files are optional
 */

package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"bod-importer/importer/record"
)

var (
	// ErrMalformedJSON is returned when a file that is present cannot be decoded
	ErrMalformedJSON = errors.New("malformed JSON")

	tournamentFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (.+)\.json$`)
)

type Reader struct {
	Files  Files
	Logger *slog.Logger
}

// NewReader returns a Reader for the given aggregate file names
func NewReader(files Files, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{Files: files, Logger: logger}
}

// ParseTournamentFileName extracts the date and format token from a per-tournament file name
// Preconditions: Receives a base file name such as "2024-07-20 M.json"
// Postconditions: Returns the date, the token and true, or false if the name does not follow the pattern
func ParseTournamentFileName(name string) (time.Time, string, bool) {
	m := tournamentFilePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, "", false
	}
	return date, m[2], true
}

// Read loads every export from dir
// Preconditions: Receives the path of the data directory
// Postconditions: Returns a Bundle with tournament files sorted by name. Missing aggregate files are logged and left
// empty; a missing directory or any malformed file is returned as an error
func (r *Reader) Read(dir string) (*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	bundle := &Bundle{Dir: dir}
	aggregates := map[string]bool{r.Files.Players: true, r.Files.Scores: true, r.Files.Champions: true}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if aggregates[name] {
			continue
		}
		date, token, ok := ParseTournamentFileName(name)
		if !ok {
			r.Logger.Debug("ignoring file with unrecognised name", "file", name)
			continue
		}

		records, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		bundle.Tournaments = append(bundle.Tournaments, TournamentFile{
			Name:    name,
			Date:    date,
			Token:   token,
			Records: records,
		})
	}
	sort.Slice(bundle.Tournaments, func(i, j int) bool {
		return bundle.Tournaments[i].Name < bundle.Tournaments[j].Name
	})

	if bundle.Players, err = r.readOptional(dir, r.Files.Players); err != nil {
		return nil, err
	}
	if bundle.Scores, err = r.readOptional(dir, r.Files.Scores); err != nil {
		return nil, err
	}
	if bundle.Champions, err = r.readOptional(dir, r.Files.Champions); err != nil {
		return nil, err
	}

	r.Logger.Info("source files loaded",
		"dir", dir,
		"tournament_files", len(bundle.Tournaments),
		"player_rows", len(bundle.Players),
		"score_rows", len(bundle.Scores),
		"champion_rows", len(bundle.Champions),
	)
	return bundle, nil
}

func (r *Reader) readOptional(dir string, name string) ([]record.Record, error) {
	if name == "" {
		return nil, nil
	}
	records, err := ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		r.Logger.Info("optional aggregate file not found, skipping", "file", name)
		return nil, nil
	}
	return records, err
}

// ReadFile decodes one export. The file may hold an array of objects or a single object; null entries are dropped
func ReadFile(path string) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Decode parses export bytes into records, keeping numbers as json.Number so the normalizer can parse them permissively
func Decode(data []byte) ([]record.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		var single record.Record
		if err := dec.Decode(&single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedJSON)
		}
		return []record.Record{single}, nil
	}

	var rows []record.Record
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedJSON)
	}

	out := rows[:0]
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}
