/* result.go
 * Contains the team result row handling: summary row exclusion, the row format detector and one mapper per row
 * format. Rows from 2024 onwards name both players in explicit columns, older rows only carry a combined team string
 */

package normalize

import (
	"errors"
	"fmt"
	"strings"

	"bod-importer/importer/record"
	"bod-importer/importer/store"
)

var (
	ErrTeamSplit  = errors.New("team name does not split into two players")
	ErrUnknownRow = errors.New("row has no player or team columns")
)

// TeamDelimiter separates the two player names in a combined team string
const TeamDelimiter = " & "

type RowFormat int

const (
	FormatUnknown RowFormat = iota
	FormatExplicit
	FormatCombined
)

func (f RowFormat) String() string {
	switch f {
	case FormatExplicit:
		return "explicit"
	case FormatCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// ResultRow is a normalized team result. Players holds the player names in source order; the resolver turns them into
// identities. Has records which derivable fields the source supplied so the calculator only fills the absent ones
type ResultRow struct {
	Players []string
	Result  store.TournamentResult
	Has     ResultPresence
}

type ResultPresence struct {
	RRPlayed        bool
	RRWinPercentage bool
	BracketWon      bool
	BracketLost     bool
	BracketPlayed   bool
	TotalWon        bool
	TotalLost       bool
	TotalPlayed     bool
	WinPercentage   bool
}

// Label is the human readable team name used in logs and error keys
func (r ResultRow) Label() string {
	return strings.Join(r.Players, TeamDelimiter)
}

// Excluded reports whether a row is a summary or filler row rather than a team result, and why
func Excluded(r record.Record) (bool, string) {
	for _, key := range TournamentDate {
		if r.IsNull(key) {
			return true, "null date"
		}
		if strings.EqualFold(r.String(key), "Home") {
			return true, "home marker"
		}
	}
	if strings.EqualFold(r.String("Home"), "Home") {
		return true, "home marker"
	}
	if strings.EqualFold(r.String(TeamName...), "Tiebreakers") {
		return true, "tiebreakers"
	}
	if blank(r) {
		return true, "blank"
	}
	return false, ""
}

func blank(r record.Record) bool {
	for _, v := range r {
		if record.ToString(v) != "" {
			return false
		}
	}
	return true
}

// DetectRowFormat tags a row with the shape its players are recorded in
func DetectRowFormat(r record.Record) RowFormat {
	if r.String(Player1...) != "" {
		return FormatExplicit
	}
	if r.String(TeamName...) != "" {
		return FormatCombined
	}
	return FormatUnknown
}

// DetectFileFormat returns the format of the first row that decides one. Summary rows are ignored
func DetectFileFormat(rows []record.Record) RowFormat {
	for _, r := range rows {
		if skip, _ := Excluded(r); skip {
			continue
		}
		if r.String(Player1...) != "" && r.String(Player2...) != "" {
			return FormatExplicit
		}
		if strings.Contains(r.String(TeamName...), TeamDelimiter) {
			return FormatCombined
		}
	}
	return FormatUnknown
}

// SplitTeam splits a combined team string on the literal " & " delimiter.
// Preconditions: Receives a team string such as "Jane Doe & John Smith"
// Postconditions: Returns exactly two trimmed names, or ErrTeamSplit for any other shape
func SplitTeam(team string) ([]string, error) {
	parts := strings.Split(team, TeamDelimiter)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrTeamSplit, team)
	}
	names := []string{CleanName(parts[0]), CleanName(parts[1])}
	if names[0] == "" || names[1] == "" {
		return nil, fmt.Errorf("%w: %q", ErrTeamSplit, team)
	}
	return names, nil
}

// MapResultRow detects the row format and dispatches to the matching mapper
func MapResultRow(r record.Record) (ResultRow, error) {
	switch DetectRowFormat(r) {
	case FormatExplicit:
		return mapExplicit(r)
	case FormatCombined:
		return mapCombined(r)
	default:
		return ResultRow{}, ErrUnknownRow
	}
}

func mapExplicit(r record.Record) (ResultRow, error) {
	players := []string{CleanName(r.String(Player1...))}
	if p2 := CleanName(r.String(Player2...)); p2 != "" {
		players = append(players, p2)
	}
	row := ResultRow{Players: players}
	mapScores(r, &row)
	return row, nil
}

func mapCombined(r record.Record) (ResultRow, error) {
	players, err := SplitTeam(r.String(TeamName...))
	if err != nil {
		return ResultRow{}, err
	}
	row := ResultRow{Players: players}
	mapScores(r, &row)
	return row, nil
}

// mapScores copies every score column. Both row formats share the score columns
func mapScores(r record.Record, row *ResultRow) {
	res := &row.Result
	res.Division = r.String(Division...)
	res.Seed = r.Int(Seed...)

	rr := &res.RoundRobinScores
	rr.Round1 = r.Int(Round1...)
	rr.Round2 = r.Int(Round2...)
	rr.Round3 = r.Int(Round3...)
	rr.RRWon = r.Int(RRWon...)
	rr.RRLost = r.Int(RRLost...)
	rr.RRPlayed, row.Has.RRPlayed = r.IntOK(RRPlayed...)
	rr.RRWinPercentage, row.Has.RRWinPercentage = r.PercentOK(RRWinPct...)
	rr.RRRank = r.Int(RRRank...)

	b := &res.BracketScores
	b.R16Won = r.Int(R16Won...)
	b.R16Lost = r.Int(R16Lost...)
	b.QFWon = r.Int(QFWon...)
	b.QFLost = r.Int(QFLost...)
	b.SFWon = r.Int(SFWon...)
	b.SFLost = r.Int(SFLost...)
	b.FinalsWon = r.Int(FinalsWon...)
	b.FinalsLost = r.Int(FinalsLost...)
	b.BracketWon, row.Has.BracketWon = r.IntOK(BracketWon...)
	b.BracketLost, row.Has.BracketLost = r.IntOK(BracketLost...)
	b.BracketPlayed, row.Has.BracketPlayed = r.IntOK(BracketPlayed...)

	ts := &res.TotalStats
	ts.TotalWon, row.Has.TotalWon = r.IntOK(TotalWon...)
	ts.TotalLost, row.Has.TotalLost = r.IntOK(TotalLost...)
	ts.TotalPlayed, row.Has.TotalPlayed = r.IntOK(TotalPlayed...)
	ts.WinPercentage, row.Has.WinPercentage = r.PercentOK(WinPct...)
	ts.FinalRank = r.Int(FinalRank...)
	ts.BodFinish = r.Int(BodFinish...)
	ts.Home = flag(r, Home)
}

// flag reads a yes/no column. Spreadsheet exports used booleans, 1/0, Y/N and X marks interchangeably
func flag(r record.Record, keys Candidates) bool {
	v, _, ok := r.Lookup(keys...)
	if !ok {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	switch strings.ToLower(record.ToString(v)) {
	case "true", "yes", "y", "x", "1":
		return true
	}
	return false
}
