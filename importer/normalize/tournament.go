/* tournament.go
 * Contains the tournament mappers. Per-tournament files take their date and format from the file name, aggregate
 * score rows and champions rows carry them as columns
 */

package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bod-importer/importer/record"
	"bod-importer/importer/source"
	"bod-importer/importer/store"
)

var ErrNoTournamentDate = errors.New("no tournament date found")

var formatTokens = map[string]string{
	"m":       store.FormatMen,
	"men":     store.FormatMen,
	"men's":   store.FormatMen,
	"mens":    store.FormatMen,
	"w":       store.FormatWomen,
	"women":   store.FormatWomen,
	"women's": store.FormatWomen,
	"womens":  store.FormatWomen,
}

// FormatFromToken maps a file name token or a Format column onto a short format code. Anything containing "mixed" and
// anything unrecognised becomes Mixed
func FormatFromToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if format, ok := formatTokens[t]; ok {
		return format
	}
	return store.FormatMixed
}

// TournamentFromFile builds the tournament for a per-tournament file. Metadata comes from the first row carrying each
// field
func TournamentFromFile(f source.TournamentFile) store.Tournament {
	t := store.Tournament{
		BodNumber: store.BodNumberFor(f.Date),
		Date:      f.Date,
		Format:    FormatFromToken(f.Token),
	}
	ApplyMetadata(&t, f.Records)
	return t
}

// ApplyMetadata fills the tournament's empty metadata fields from the first row in rows that carries each one.
// Returns true if any field changed
func ApplyMetadata(t *store.Tournament, rows []record.Record) bool {
	changed := false
	fill := func(dst *string, keys Candidates) {
		if *dst != "" {
			return
		}
		for _, r := range rows {
			if v := r.String(keys...); v != "" {
				*dst = v
				changed = true
				return
			}
		}
	}
	fill(&t.Location, Location)
	fill(&t.AdvancementCriteria, AdvancementCriteria)
	fill(&t.Notes, Notes)
	fill(&t.PhotoAlbums, PhotoAlbums)
	return changed
}

// TournamentFromRow builds a tournament from a row that carries its own Date and Format columns, as the scores and
// champions exports do. An explicit BOD number column wins over the date encoding
func TournamentFromRow(r record.Record) (store.Tournament, error) {
	v, _, ok := r.Lookup(TournamentDate...)
	if !ok {
		return store.Tournament{}, ErrNoTournamentDate
	}
	date, ok := record.ParseDate(v)
	if !ok {
		return store.Tournament{}, fmt.Errorf("%w: unparseable date %q", ErrNoTournamentDate, record.ToString(v))
	}

	t := store.Tournament{
		BodNumber: store.BodNumberFor(date),
		Date:      date,
		Format:    FormatFromToken(r.String(TournamentFormat...)),
	}
	if n, ok := r.IntOK(BodNumber...); ok && n > 0 {
		t.BodNumber = n
	}
	ApplyMetadata(&t, []record.Record{r})
	return t, nil
}

// SourceName names a tournament group taken from an aggregate file, e.g. "All Scores.json#2012-05-05 M"
func SourceName(file string, date time.Time, format string) string {
	return fmt.Sprintf("%s#%s %s", file, date.Format("2006-01-02"), format)
}
