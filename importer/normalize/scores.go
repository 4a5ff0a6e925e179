/* scores.go
 * Contains the aggregate file handling. The scores export holds the team rows of many tournaments in one list, each
 * row naming its own date and format, and the champions export holds one metadata row per tournament
 */

package normalize

import (
	"fmt"
	"slices"

	"bod-importer/importer/record"
	"bod-importer/importer/store"
)

// RowError is a row level problem found while grouping or mapping an aggregate file. Row is the one based row number
// in its file
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ScoreGroup is the set of aggregate score rows belonging to one tournament
type ScoreGroup struct {
	Source     string
	Tournament store.Tournament
	Records    []record.Record
}

// GroupScores splits the aggregate scores export into one group per tournament.
// Preconditions: Receives the aggregate file name, used to name the groups, and its rows
// Postconditions: Returns groups in (date, format) order with rows in file order. Summary rows are dropped silently,
// rows without a usable date are returned as RowErrors
func GroupScores(file string, rows []record.Record) ([]ScoreGroup, []*RowError) {
	var errs []*RowError
	index := make(map[string]int)
	var groups []ScoreGroup

	for i, r := range rows {
		if skip, _ := Excluded(r); skip {
			continue
		}
		t, err := TournamentFromRow(r)
		if err != nil {
			errs = append(errs, &RowError{Row: i + 1, Err: err})
			continue
		}
		name := SourceName(file, t.Date, t.Format)
		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, ScoreGroup{Source: name, Tournament: t})
		}
		g := &groups[pos]
		ApplyMetadata(&g.Tournament, []record.Record{r})
		g.Records = append(g.Records, r)
	}

	slices.SortStableFunc(groups, func(a, b ScoreGroup) int {
		if c := a.Tournament.Date.Compare(b.Tournament.Date); c != 0 {
			return c
		}
		switch {
		case a.Tournament.Format < b.Tournament.Format:
			return -1
		case a.Tournament.Format > b.Tournament.Format:
			return 1
		}
		return 0
	})
	return groups, errs
}

// MapChampions turns the champions export into tournament metadata. Rows without a usable date are returned as
// RowErrors
func MapChampions(rows []record.Record) ([]store.Tournament, []*RowError) {
	var out []store.Tournament
	var errs []*RowError
	for i, r := range rows {
		if skip, _ := Excluded(r); skip {
			continue
		}
		t, err := TournamentFromRow(r)
		if err != nil {
			errs = append(errs, &RowError{Row: i + 1, Err: err})
			continue
		}
		out = append(out, t)
	}
	return out, errs
}
