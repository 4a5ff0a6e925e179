/* test_helpers.go
 * Contains test helper functions and sample documents for store package tests
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SamplePlayer returns a valid player with a fresh id
func SamplePlayer(name string) Player {
	return Player{
		ID:                primitive.NewObjectID(),
		Name:              name,
		GamesPlayed:       10,
		GamesWon:          7,
		WinningPercentage: 0.7,
		BestResult:        1,
		AvgFinish:         3.5,
	}
}

// SampleTournament returns a valid tournament for the given date and format
func SampleTournament(date time.Time, format string) Tournament {
	return Tournament{
		ID:        primitive.NewObjectID(),
		BodNumber: BodNumberFor(date),
		Date:      date,
		Format:    format,
		Location:  "Denver",
	}
}

// SampleResult returns a valid result for a tournament and players
func SampleResult(tournamentID primitive.ObjectID, players ...primitive.ObjectID) TournamentResult {
	return TournamentResult{
		ID:           primitive.NewObjectID(),
		TournamentID: tournamentID,
		Players:      players,
		TotalStats: TotalStats{
			TotalWon:      12,
			TotalLost:     4,
			TotalPlayed:   16,
			WinPercentage: 0.75,
			BodFinish:     1,
		},
	}
}
