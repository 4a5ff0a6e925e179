/* fixer.go
 * Contains the bracket fixer. Historical tournament files record round of 16 matchups inconsistently: matchup ids
 * differ between opponents, opponent references are one-sided and the two sides' scores disagree. The fixer re-pairs
 * teams by seed (1 v N, 2 v N-1, ...), gives both sides of a matchup the same id and opponent references, makes their
 * scores complementary and recomputes the bracket and total columns from the round columns
 */

package fixer

import (
	"fmt"
	"slices"

	"bod-importer/importer/normalize"
	"bod-importer/importer/record"
)

// Column names written by the fixer
const (
	colPlayer1       = "Player 1"
	colPlayer2       = "Player 2"
	colTeamsSummary  = "Teams (Summary)"
	colTeamsRR       = "Teams (Round Robin)"
	colTeamsBracket  = "Teams (Bracket)"
	colMatchup       = "R16 Matchup"
	colR16Won        = "R16 Won"
	colR16Lost       = "R16 Lost"
	colBracketWon    = "Bracket Won"
	colBracketLost   = "Bracket Lost"
	colBracketPlayed = "Bracket Played"
	colTotalWon      = "Total Won"
	colTotalLost     = "Total Lost"
	colTotalPlayed   = "Total Played"
	colWinPct        = "Win %"
	colBodFinish     = "BOD Finish"
)

// Rounds in bracket order
var bracketRounds = []string{"R16", "QF", "SF", "Finals"}

// Unseeded teams and teams without a finish sort last
const unranked = 999

// Default losing score when neither side recorded a winning score
const defaultLoserScore = 8

// Validation is the outcome of checking a fixed tournament's matchups
type Validation struct {
	Teams    int
	Matchups int
	Verified []string
	Errors   []string
}

// Fix repairs the bracket columns of one tournament file.
// Preconditions: Receives every row of a per-tournament file, summary rows included
// Postconditions: Returns the full row list with team rows replaced by their fixed versions and other rows untouched,
// the detected row format and the validation of the fixed rows. The input rows are not modified
func Fix(rows []record.Record) ([]record.Record, normalize.RowFormat, Validation) {
	format := normalize.DetectFileFormat(rows)
	entries := teamEntries(rows, format)
	if len(entries) == 0 {
		return rows, format, Validation{}
	}

	fixed := FixEntries(entries)
	validation := Validate(fixed)

	byTeam := make(map[string]record.Record, len(fixed))
	for _, r := range fixed {
		byTeam[teamName(r)] = r
	}
	out := make([]record.Record, len(rows))
	for i, r := range rows {
		out[i] = r
		if skip, _ := normalize.Excluded(r); skip {
			continue
		}
		if f, ok := byTeam[rowKey(r)]; ok {
			out[i] = f
		}
	}
	return out, format, validation
}

// teamEntries returns copies of the genuine team rows. Combined rows gain Player 1, Player 2 and Teams (Summary)
func teamEntries(rows []record.Record, format normalize.RowFormat) []record.Record {
	var entries []record.Record
	for _, r := range rows {
		if skip, _ := normalize.Excluded(r); skip {
			continue
		}
		switch format {
		case normalize.FormatExplicit:
			if r.String(colPlayer1) == "" || r.String(colPlayer2) == "" {
				continue
			}
			e := r.Clone()
			e[colTeamsSummary] = rowKey(r)
			entries = append(entries, e)
		case normalize.FormatCombined:
			team := r.String(colTeamsRR)
			players, err := normalize.SplitTeam(team)
			if err != nil {
				continue
			}
			e := r.Clone()
			e[colPlayer1], e[colPlayer2] = players[0], players[1]
			if e.String(colTeamsSummary) == "" {
				e[colTeamsSummary] = team
			}
			entries = append(entries, e)
		}
	}
	return entries
}

func teamName(r record.Record) string {
	return r.String(colTeamsSummary, colTeamsRR)
}

// rowKey is the team name of a row, or its two player names joined when the row has no team columns
func rowKey(r record.Record) string {
	if name := teamName(r); name != "" {
		return name
	}
	p1, p2 := r.String(colPlayer1), r.String(colPlayer2)
	if p1 == "" || p2 == "" {
		return ""
	}
	return p1 + normalize.TeamDelimiter + p2
}

func seed(r record.Record) int {
	if s, ok := r.IntOK("Seed.1"); ok {
		return s
	}
	if s, ok := r.IntOK("Seed"); ok {
		return s
	}
	return unranked
}

func finish(r record.Record) int {
	if f, ok := r.IntOK(colBodFinish); ok {
		return f
	}
	return unranked
}

// Pair sorts teams by seed and pairs the best remaining seed with the worst. With an odd number of teams the middle
// seed has no opponent and is left out
func Pair(entries []record.Record) [][2]record.Record {
	seeded := slices.Clone(entries)
	slices.SortStableFunc(seeded, func(a, b record.Record) int { return seed(a) - seed(b) })

	n := len(seeded)
	pairs := make([][2]record.Record, 0, n/2)
	for i := 0; i < n/2; i++ {
		pairs = append(pairs, [2]record.Record{seeded[i], seeded[n-1-i]})
	}
	return pairs
}

// MatchResult decides the round of 16 score from both sides' records.
// Postconditions: Returns the winning and losing score. A side with at least 11 won and more won than lost is
// preferred, then any side with more won than lost, otherwise 11 against the recorded losing score capped at 10
func MatchResult(a, b record.Record) (int, int) {
	aWon, aLost := a.Int(colR16Won), a.Int(colR16Lost)
	bWon, bLost := b.Int(colR16Won), b.Int(colR16Lost)

	switch {
	case aWon >= 11 && aWon > aLost:
		return aWon, aLost
	case bWon >= 11 && bWon > bLost:
		return bWon, bLost
	case aWon > aLost:
		return aWon, aLost
	case bWon > bLost:
		return bWon, bLost
	}

	lost := aLost
	if lost == 0 {
		lost = bLost
	}
	if lost == 0 {
		lost = defaultLoserScore
	}
	return 11, max(0, min(10, lost))
}

// FixEntries pairs the team rows and rewrites their matchup, opponent, score and total columns.
// Postconditions: Returns the fixed rows sorted by BOD finish then seed. Unpaired teams are dropped
func FixEntries(entries []record.Record) []record.Record {
	var fixed []record.Record
	for i, pair := range Pair(entries) {
		a, b := pair[0].Clone(), pair[1].Clone()
		aName, bName := teamName(a), teamName(b)
		if aName == "" || bName == "" {
			continue
		}
		matchup := i + 1

		winner, loser := MatchResult(a, b)
		aWins := a.Int(colR16Won) >= b.Int(colR16Won)

		a[colTeamsSummary], b[colTeamsSummary] = aName, bName
		a[colMatchup], b[colMatchup] = matchup, matchup
		a[colTeamsBracket], b[colTeamsBracket] = bName, aName

		if aWins {
			setScore(a, winner, loser)
			setScore(b, loser, winner)
		} else {
			setScore(a, loser, winner)
			setScore(b, winner, loser)
		}

		for _, r := range []record.Record{a, b} {
			UpdateBracketTotals(r)
			UpdateTotalStats(r)
		}
		fixed = append(fixed, a, b)
	}

	slices.SortStableFunc(fixed, func(a, b record.Record) int {
		if d := finish(a) - finish(b); d != 0 {
			return d
		}
		return seed(a) - seed(b)
	})
	return fixed
}

func setScore(r record.Record, won, lost int) {
	r[colR16Won] = won
	r[colR16Lost] = lost
}

// UpdateBracketTotals recomputes the bracket columns from the per round columns
func UpdateBracketTotals(r record.Record) {
	won, lost := 0, 0
	for _, round := range bracketRounds {
		won += r.Int(round + " Won")
		lost += r.Int(round + " Lost")
	}
	r[colBracketWon] = won
	r[colBracketLost] = lost
	r[colBracketPlayed] = won + lost
}

// UpdateTotalStats recomputes the total columns from the round robin and bracket columns
func UpdateTotalStats(r record.Record) {
	won := r.Int("RR Won") + r.Int(colBracketWon)
	lost := r.Int("RR Lost") + r.Int(colBracketLost)
	r[colTotalWon] = won
	r[colTotalLost] = lost
	r[colTotalPlayed] = won + lost
	if won+lost > 0 {
		r[colWinPct] = float64(won) / float64(won+lost)
	}
}

// Validate checks that every matchup is consistent from both sides
func Validate(entries []record.Record) Validation {
	v := Validation{Teams: len(entries)}
	lookup := make(map[string]record.Record, len(entries))
	for _, r := range entries {
		if name := teamName(r); name != "" {
			lookup[name] = r
		}
	}

	matchups := make(map[string]bool)
	for _, r := range entries {
		name, opponent := teamName(r), r.String(colTeamsBracket)
		if name == "" || opponent == "" {
			continue
		}
		matchup := r.String(colMatchup)
		matchups[matchup] = true

		other, ok := lookup[opponent]
		if !ok {
			continue
		}
		if om := other.String(colMatchup); om != matchup {
			v.Errors = append(v.Errors, fmt.Sprintf("matchup id mismatch: %s=%s vs %s=%s", name, matchup, opponent, om))
		}
		if oo := other.String(colTeamsBracket); oo != name {
			v.Errors = append(v.Errors, fmt.Sprintf("opponent mismatch: %s vs %s, but %s vs %s", name, opponent, opponent, oo))
		}

		won, wonOK := r.IntOK(colR16Won)
		lost, lostOK := r.IntOK(colR16Lost)
		oWon, oWonOK := other.IntOK(colR16Won)
		oLost, oLostOK := other.IntOK(colR16Lost)
		if !wonOK || !lostOK || !oWonOK || !oLostOK {
			continue
		}
		if won != oLost || lost != oWon {
			v.Errors = append(v.Errors, fmt.Sprintf("score mismatch: %s %d-%d vs %s %d-%d", name, won, lost, opponent, oWon, oLost))
		} else {
			v.Verified = append(v.Verified, fmt.Sprintf("%s %d-%d vs %s %d-%d", name, won, lost, opponent, oWon, oLost))
		}
	}
	v.Matchups = len(matchups)
	return v
}
