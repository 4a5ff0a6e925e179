/* models_test.go
 * Contains unit tests for the validators in models.go
 */

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

// region Player.Validate tests

func TestPlayerValidate_Valid(t *testing.T) {
	assert.NoError(t, SamplePlayer("Jane Doe").Validate())
}

func TestPlayerValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Player)
	}{
		{"empty name", func(p *Player) { p.Name = "  " }},
		{"won exceeds played", func(p *Player) { p.GamesWon = 11 }},
		{"negative counters", func(p *Player) { p.BodsPlayed = -1 }},
		{"percentage above one", func(p *Player) { p.WinningPercentage = 1.2 }},
		{"best worse than average", func(p *Player) { p.BestResult = 5; p.AvgFinish = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SamplePlayer("Jane Doe")
			tt.mutate(&p)
			err := p.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestPlayerValidate_UnsetRanksAllowed(t *testing.T) {
	p := Player{Name: "New Player", BestResult: 3}
	assert.NoError(t, p.Validate())
}

// endregion

// region Tournament.Validate tests

func TestTournamentValidate_Valid(t *testing.T) {
	tour := SampleTournament(time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC), FormatMen)
	assert.NoError(t, tour.Validate(testNow))
}

func TestTournamentValidate_LongFormatAccepted(t *testing.T) {
	tour := SampleTournament(time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC), "Women's")
	assert.NoError(t, tour.Validate(testNow))
}

func TestTournamentValidate_Invalid(t *testing.T) {
	july := time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tour Tournament
	}{
		{"zero bod number", Tournament{BodNumber: 0, Date: july, Format: FormatMen}},
		{"too old", Tournament{BodNumber: 12, Date: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), Format: FormatMen}},
		{"too far in future", Tournament{BodNumber: 12, Date: testNow.AddDate(2, 0, 0), Format: FormatMen}},
		{"unknown format", Tournament{BodNumber: 202407, Date: july, Format: "Doubles"}},
		{"legacy number mismatch", Tournament{BodNumber: 202408, Date: july, Format: FormatMixed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tour.Validate(testNow)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTournamentValidate_SequentialNumberSkipsDateCheck(t *testing.T) {
	tour := Tournament{BodNumber: 42, Date: time.Date(2015, 5, 2, 0, 0, 0, 0, time.UTC), Format: FormatMixed}
	assert.NoError(t, tour.Validate(testNow))
}

func TestBodNumberFor(t *testing.T) {
	assert.Equal(t, 202403, BodNumberFor(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 202403, BodNumberFor(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 200912, BodNumberFor(time.Date(2009, time.December, 5, 0, 0, 0, 0, time.UTC)))
}

func TestLongFormat(t *testing.T) {
	assert.Equal(t, "Men's", LongFormat(FormatMen))
	assert.Equal(t, "Women's", LongFormat(FormatWomen))
	assert.Equal(t, "Mixed", LongFormat(FormatMixed))
	assert.Equal(t, "other", LongFormat("other"))
}

// endregion

// region TournamentResult.Validate tests

func TestResultValidate_Valid(t *testing.T) {
	r := SampleResult(primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.NoError(t, r.Validate())
}

func TestResultValidate_SinglePlayerAllowed(t *testing.T) {
	r := SampleResult(primitive.NewObjectID(), primitive.NewObjectID())
	assert.NoError(t, r.Validate())
}

func TestResultValidate_Invalid(t *testing.T) {
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()
	tests := []struct {
		name   string
		mutate func(r *TournamentResult)
	}{
		{"no tournament", func(r *TournamentResult) { r.TournamentID = primitive.NilObjectID }},
		{"no players", func(r *TournamentResult) { r.Players = nil }},
		{"three players", func(r *TournamentResult) { r.Players = append(r.Players, primitive.NewObjectID()) }},
		{"same player twice", func(r *TournamentResult) { r.Players = []primitive.ObjectID{p1, p1} }},
		{"totals do not add up", func(r *TournamentResult) { r.TotalStats.TotalPlayed = 15 }},
		{"win percentage above one", func(r *TournamentResult) { r.TotalStats.WinPercentage = 1.5 }},
		{"round robin does not add up", func(r *TournamentResult) {
			r.RoundRobinScores = RoundRobinScores{RRWon: 5, RRLost: 2, RRPlayed: 9}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SampleResult(primitive.NewObjectID(), p1, p2)
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrValidation)
		})
	}
}

func TestTeamKey_OrderIndependent(t *testing.T) {
	tid, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.Equal(t, TeamKey(tid, []primitive.ObjectID{a, b}), TeamKey(tid, []primitive.ObjectID{b, a}))
	assert.NotEqual(t, TeamKey(tid, []primitive.ObjectID{a, b}), TeamKey(tid, []primitive.ObjectID{a}))
}

// endregion
