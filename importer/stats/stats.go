/* stats.go
 * Contains the derived statistic calculations. Only fields the source left out are computed: a value the source
 * supplied is kept even when it disagrees with its parts, and validation reports the disagreement
 */

package stats

import (
	"math"

	"bod-importer/importer/normalize"
)

// Ratio returns won/played, or 0 when nothing was played
func Ratio(won int, played int) float64 {
	if played <= 0 {
		return 0
	}
	return float64(won) / float64(played)
}

// Consistency scores how close a player's average finish is to their best finish.
// Preconditions: Receives the best finish rank and the average finish rank (lower is better)
// Postconditions: Returns max(0, min(1, 1 - (best/avg - 1))), or 0 when avg is not positive
func Consistency(best int, avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	score := 1 - (float64(best)/avg - 1)
	return math.Max(0, math.Min(1, score))
}

// Result fills the derived fields of a team result row that the source did not supply
func Result(row *normalize.ResultRow) {
	has := row.Has
	rr := &row.Result.RoundRobinScores
	if !has.RRPlayed {
		rr.RRPlayed = rr.RRWon + rr.RRLost
	}
	if !has.RRWinPercentage {
		rr.RRWinPercentage = Ratio(rr.RRWon, rr.RRPlayed)
	}

	b := &row.Result.BracketScores
	if !has.BracketWon {
		b.BracketWon = b.R16Won + b.QFWon + b.SFWon + b.FinalsWon
	}
	if !has.BracketLost {
		b.BracketLost = b.R16Lost + b.QFLost + b.SFLost + b.FinalsLost
	}
	if !has.BracketPlayed {
		b.BracketPlayed = b.BracketWon + b.BracketLost
	}

	ts := &row.Result.TotalStats
	if !has.TotalWon {
		ts.TotalWon = rr.RRWon + b.BracketWon
	}
	if !has.TotalLost {
		ts.TotalLost = rr.RRLost + b.BracketLost
	}
	if !has.TotalPlayed {
		ts.TotalPlayed = ts.TotalWon + ts.TotalLost
	}
	if !has.WinPercentage {
		ts.WinPercentage = Ratio(ts.TotalWon, ts.TotalPlayed)
	}
}

// Player fills the derived fields of a player row. The winning percentage is recomputed whenever games were played,
// the supplied percentage only survives for players with no recorded games
func Player(row *normalize.PlayerRow) {
	p := &row.Player
	if p.GamesPlayed > 0 {
		p.WinningPercentage = Ratio(p.GamesWon, p.GamesPlayed)
	} else if !row.Has.WinningPercentage {
		p.WinningPercentage = 0
	}
	if !row.Has.TotalChampionships {
		p.TotalChampionships = p.IndividualChampionships + p.DivisionChampionships
	}
	p.ConsistencyScore = Consistency(p.BestResult, p.AvgFinish)
}
