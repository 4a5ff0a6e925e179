/* player.go
 * Contains the player row mapper. Player rows come from the aggregate players export and carry career counters
 */

package normalize

import (
	"errors"
	"strings"

	"github.com/go-andiamo/splitter"

	"bod-importer/importer/record"
	"bod-importer/importer/store"
)

var ErrNoPlayerName = errors.New("no player name found")

// Quote aware so nicknames such as `Jane "Jay Jay" Doe` stay a single token
var nameSplitter, _ = splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)

// PlayerRow is a normalized player plus which derivable fields the source supplied
type PlayerRow struct {
	Player store.Player
	Has    PlayerPresence
}

type PlayerPresence struct {
	WinningPercentage  bool
	TotalChampionships bool
}

// MapPlayer maps one raw player row onto the Player document shape.
// Preconditions: Receives a raw record from the players export
// Postconditions: Returns the mapped row, or ErrNoPlayerName if no name candidate holds a value
func MapPlayer(r record.Record) (PlayerRow, error) {
	name := CleanName(r.String(PlayerName...))
	if name == "" {
		return PlayerRow{}, ErrNoPlayerName
	}

	var row PlayerRow
	p := &row.Player
	p.Name = name
	p.FirstName, p.LastName = SplitName(name)
	p.GamesPlayed = r.Int(GamesPlayed...)
	p.GamesWon = r.Int(GamesWon...)
	p.WinningPercentage, row.Has.WinningPercentage = r.PercentOK(WinningPercentage...)
	p.BodsPlayed = r.Int(BodsPlayed...)
	p.BestResult = r.Int(BestResult...)
	p.AvgFinish = r.Float(AvgFinish...)
	p.IndividualChampionships = r.Int(IndividualChampionships...)
	p.DivisionChampionships = r.Int(DivisionChampionships...)
	p.TotalChampionships, row.Has.TotalChampionships = r.IntOK(TotalChampionships...)
	p.Division = r.String(PlayerDivision...)
	p.Pairing = CleanName(r.String(Pairing...))
	p.DrawingSequence = r.Int(DrawingSequence...)
	return row, nil
}

// CleanName trims a name and collapses internal runs of whitespace. Casing is preserved
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SplitName splits a full name into its first token and the remainder
func SplitName(full string) (string, string) {
	tokens := nameTokens(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

func nameTokens(full string) []string {
	full = strings.TrimSpace(full)
	if full == "" {
		return nil
	}
	parts, err := nameSplitter.Split(full)
	if err != nil {
		// Unbalanced quotes
		return strings.Fields(full)
	}
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
