/* marker.go
 * Contains the completion marker. The marker is written after a full pass and makes every later run a no-op until it
 * is removed or the run is forced
 */

package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Marker records whether a full import already completed
type Marker interface {
	// Completed returns the completion time and run id of an earlier run, or ok=false if there was none
	Completed() (at time.Time, runID string, ok bool, err error)
	Mark(at time.Time, runID string) error
}

// FileMarker keeps the marker in a file holding an RFC3339 timestamp and the run id, one per line
type FileMarker struct {
	Path string
}

func (m FileMarker) Completed() (time.Time, string, bool, error) {
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, "", false, nil
	}
	if err != nil {
		return time.Time{}, "", false, fmt.Errorf("failed to read import marker: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// A marker that exists but cannot be parsed still counts as complete
	at, _ := time.Parse(time.RFC3339, strings.TrimSpace(lines[0]))
	runID := ""
	if len(lines) > 1 {
		runID = strings.TrimSpace(lines[1])
	}
	return at, runID, true, nil
}

func (m FileMarker) Mark(at time.Time, runID string) error {
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}
	content := at.UTC().Format(time.RFC3339) + "\n" + runID + "\n"
	if err := os.WriteFile(m.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write import marker: %w", err)
	}
	return nil
}

// MemoryMarker is a Marker that lives for one process. Used for dry runs and tests
type MemoryMarker struct {
	mu    sync.Mutex
	at    time.Time
	runID string
	set   bool
}

func (m *MemoryMarker) Completed() (time.Time, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at, m.runID, m.set, nil
}

func (m *MemoryMarker) Mark(at time.Time, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at, m.runID, m.set = at, runID, true
	return nil
}

// Ensure both implementations satisfy Marker
var (
	_ Marker = FileMarker{}
	_ Marker = (*MemoryMarker)(nil)
)
