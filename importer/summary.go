/* summary.go
 * Contains the Summary returned by a run and its log and text forms
 */

package importer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bod-importer/importer/store"
	"bod-importer/importer/writer"
)

// Summary is the outcome of one import run
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// AlreadyImported is set when the completion marker short-circuited the run
	AlreadyImported bool
	MarkedAt        time.Time

	Players     writer.Tally
	Tournaments writer.Tally
	Results     writer.Tally

	// Stored holds the collection sizes after the run
	Stored store.Counts

	FilesSkipped     int
	RowsExcluded     int
	PlayersNotFound  int
	BracketFixErrors int
}

// Errors returns every row level error of the run
func (s *Summary) Errors() []writer.RecordError {
	var out []writer.RecordError
	out = append(out, s.Players.Errors...)
	out = append(out, s.Tournaments.Errors...)
	out = append(out, s.Results.Errors...)
	return out
}

// Log writes one line per entity type and one line for the run totals. The logger is expected to carry the run id
func (s *Summary) Log(logger *slog.Logger) {
	for _, e := range []struct {
		name  string
		tally writer.Tally
	}{
		{"players", s.Players},
		{"tournaments", s.Tournaments},
		{"results", s.Results},
	} {
		logger.Info("import summary",
			"entity", e.name,
			"created", e.tally.Created,
			"updated", e.tally.Updated,
			"skipped", e.tally.Skipped,
			"failed", e.tally.Failed,
		)
	}
	logger.Info("import finished",
		"dry_run", s.DryRun,
		"files_skipped", s.FilesSkipped,
		"rows_excluded", s.RowsExcluded,
		"players_not_found", s.PlayersNotFound,
		"bracket_fix_errors", s.BracketFixErrors,
		"stored_players", s.Stored.Players,
		"stored_tournaments", s.Stored.Tournaments,
		"stored_results", s.Stored.Results,
		"duration", s.FinishedAt.Sub(s.StartedAt).String(),
	)
}

// String renders the summary as plain text for notifications
func (s *Summary) String() string {
	var b strings.Builder
	if s.AlreadyImported {
		fmt.Fprintf(&b, "Import skipped: already completed at %s\n", s.MarkedAt.Format(time.RFC3339))
		return b.String()
	}
	title := "Import"
	if s.DryRun {
		title = "Dry run import"
	}
	fmt.Fprintf(&b, "%s %s finished in %s\n", title, s.RunID, s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	writeTally(&b, "Players", s.Players)
	writeTally(&b, "Tournaments", s.Tournaments)
	writeTally(&b, "Results", s.Results)
	fmt.Fprintf(&b, "Files skipped: %d, players not found: %d\n", s.FilesSkipped, s.PlayersNotFound)
	fmt.Fprintf(&b, "Stored: %d players, %d tournaments, %d results\n", s.Stored.Players, s.Stored.Tournaments, s.Stored.Results)
	return b.String()
}

func writeTally(b *strings.Builder, name string, t writer.Tally) {
	fmt.Fprintf(b, "%s: %d created, %d updated, %d skipped, %d failed\n", name, t.Created, t.Updated, t.Skipped, t.Failed)
}
