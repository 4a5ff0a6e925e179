/* models.go
 * This file contains the documents stored by the importer and the validators that guard them. The validators play the
 * role of schema validation: the writer runs them before every insert and update
 */

package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrValidation is wrapped by every validator failure
var ErrValidation = errors.New("validation failed")

// Tournament formats. Short codes are what the exports use in file names, long forms are what people type
const (
	FormatMen   = "M"
	FormatWomen = "W"
	FormatMixed = "Mixed"
)

var longFormats = map[string]string{
	FormatMen:   "Men's",
	FormatWomen: "Women's",
	FormatMixed: "Mixed",
}

// Bounds on tournament dates. The series started in 2009
var (
	MinTournamentDate = time.Date(2008, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxFutureWindow   = 365 * 24 * time.Hour
)

type Player struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                    string             `bson:"name" json:"name"`
	FirstName               string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName                string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	GamesPlayed             int                `bson:"gamesPlayed" json:"gamesPlayed"`
	GamesWon                int                `bson:"gamesWon" json:"gamesWon"`
	WinningPercentage       float64            `bson:"winningPercentage" json:"winningPercentage"`
	BodsPlayed              int                `bson:"bodsPlayed" json:"bodsPlayed"`
	BestResult              int                `bson:"bestResult" json:"bestResult"`
	AvgFinish               float64            `bson:"avgFinish" json:"avgFinish"`
	IndividualChampionships int                `bson:"individualChampionships" json:"individualChampionships"`
	DivisionChampionships   int                `bson:"divisionChampionships" json:"divisionChampionships"`
	TotalChampionships      int                `bson:"totalChampionships" json:"totalChampionships"`
	ConsistencyScore        float64            `bson:"consistencyScore" json:"consistencyScore"`
	Division                string             `bson:"division,omitempty" json:"division,omitempty"`
	Pairing                 string             `bson:"pairing,omitempty" json:"pairing,omitempty"`
	DrawingSequence         int                `bson:"drawingSequence,omitempty" json:"drawingSequence,omitempty"`
}

// Validate checks the player invariants.
// Preconditions: none
// Postconditions: Returns nil, or an error wrapping ErrValidation describing the first violated invariant
func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: player name is required", ErrValidation)
	}
	if p.GamesPlayed < 0 || p.GamesWon < 0 || p.BodsPlayed < 0 {
		return fmt.Errorf("%w: player %q has negative counters", ErrValidation, p.Name)
	}
	if p.GamesWon > p.GamesPlayed {
		return fmt.Errorf("%w: player %q gamesWon %d exceeds gamesPlayed %d", ErrValidation, p.Name, p.GamesWon, p.GamesPlayed)
	}
	if p.WinningPercentage < 0 || p.WinningPercentage > 1 {
		return fmt.Errorf("%w: player %q winningPercentage %.3f outside [0,1]", ErrValidation, p.Name, p.WinningPercentage)
	}
	if p.BestResult > 0 && p.AvgFinish > 0 && float64(p.BestResult) > p.AvgFinish {
		return fmt.Errorf("%w: player %q bestResult %d is worse than avgFinish %.2f", ErrValidation, p.Name, p.BestResult, p.AvgFinish)
	}
	return nil
}

type Tournament struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BodNumber           int                `bson:"bodNumber" json:"bodNumber"`
	Date                time.Time          `bson:"date" json:"date"`
	Format              string             `bson:"format" json:"format"`
	Location            string             `bson:"location,omitempty" json:"location,omitempty"`
	AdvancementCriteria string             `bson:"advancementCriteria,omitempty" json:"advancementCriteria,omitempty"`
	Notes               string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PhotoAlbums         string             `bson:"photoAlbums,omitempty" json:"photoAlbums,omitempty"`
}

// Validate checks the tournament invariants against the supplied current time
func (t Tournament) Validate(now time.Time) error {
	if t.BodNumber <= 0 {
		return fmt.Errorf("%w: bodNumber must be positive, got %d", ErrValidation, t.BodNumber)
	}
	if t.Date.Before(MinTournamentDate) || t.Date.After(now.Add(MaxFutureWindow)) {
		return fmt.Errorf("%w: tournament %d date %s outside the allowed window", ErrValidation, t.BodNumber, t.Date.Format("2006-01-02"))
	}
	if !ValidFormat(t.Format) {
		return fmt.Errorf("%w: tournament %d has unknown format %q", ErrValidation, t.BodNumber, t.Format)
	}
	// Six digit numbers are the legacy YYYYMM encoding and must agree with the date
	if t.BodNumber >= 100000 && t.BodNumber <= 999999 {
		year, month := t.BodNumber/100, t.BodNumber%100
		if year != t.Date.Year() || month != int(t.Date.Month()) {
			return fmt.Errorf("%w: bodNumber %d does not match date %s", ErrValidation, t.BodNumber, t.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// ValidFormat reports whether format is one of the short or long format names
func ValidFormat(format string) bool {
	for short, long := range longFormats {
		if format == short || format == long {
			return true
		}
	}
	return false
}

// LongFormat returns the display name for a short format code, or the input if it is not a known code
func LongFormat(format string) string {
	if long, ok := longFormats[format]; ok {
		return long
	}
	return format
}

// BodNumberFor returns the legacy YYYYMM identifying number for a tournament date.
// Two tournaments in the same month share a number; the importer keeps that behaviour
func BodNumberFor(date time.Time) int {
	return date.Year()*100 + int(date.Month())
}

type RoundRobinScores struct {
	Round1          int     `bson:"round1" json:"round1"`
	Round2          int     `bson:"round2" json:"round2"`
	Round3          int     `bson:"round3" json:"round3"`
	RRWon           int     `bson:"rrWon" json:"rrWon"`
	RRLost          int     `bson:"rrLost" json:"rrLost"`
	RRPlayed        int     `bson:"rrPlayed" json:"rrPlayed"`
	RRWinPercentage float64 `bson:"rrWinPercentage" json:"rrWinPercentage"`
	RRRank          int     `bson:"rrRank" json:"rrRank"`
}

type BracketScores struct {
	R16Won        int `bson:"r16Won" json:"r16Won"`
	R16Lost       int `bson:"r16Lost" json:"r16Lost"`
	QFWon         int `bson:"qfWon" json:"qfWon"`
	QFLost        int `bson:"qfLost" json:"qfLost"`
	SFWon         int `bson:"sfWon" json:"sfWon"`
	SFLost        int `bson:"sfLost" json:"sfLost"`
	FinalsWon     int `bson:"finalsWon" json:"finalsWon"`
	FinalsLost    int `bson:"finalsLost" json:"finalsLost"`
	BracketWon    int `bson:"bracketWon" json:"bracketWon"`
	BracketLost   int `bson:"bracketLost" json:"bracketLost"`
	BracketPlayed int `bson:"bracketPlayed" json:"bracketPlayed"`
}

type TotalStats struct {
	TotalWon      int     `bson:"totalWon" json:"totalWon"`
	TotalLost     int     `bson:"totalLost" json:"totalLost"`
	TotalPlayed   int     `bson:"totalPlayed" json:"totalPlayed"`
	WinPercentage float64 `bson:"winPercentage" json:"winPercentage"`
	FinalRank     int     `bson:"finalRank" json:"finalRank"`
	BodFinish     int     `bson:"bodFinish" json:"bodFinish"`
	Home          bool    `bson:"home" json:"home"`
}

type TournamentResult struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TournamentID     primitive.ObjectID   `bson:"tournamentId" json:"tournamentId"`
	Players          []primitive.ObjectID `bson:"players" json:"players"`
	Division         string               `bson:"division,omitempty" json:"division,omitempty"`
	Seed             int                  `bson:"seed,omitempty" json:"seed,omitempty"`
	RoundRobinScores RoundRobinScores     `bson:"roundRobinScores" json:"roundRobinScores"`
	BracketScores    BracketScores        `bson:"bracketScores" json:"bracketScores"`
	TotalStats       TotalStats           `bson:"totalStats" json:"totalStats"`
}

// Validate checks the team result invariants
func (r TournamentResult) Validate() error {
	if r.TournamentID.IsZero() {
		return fmt.Errorf("%w: result has no tournament", ErrValidation)
	}
	if len(r.Players) < 1 || len(r.Players) > 2 {
		return fmt.Errorf("%w: result must reference 1 or 2 players, got %d", ErrValidation, len(r.Players))
	}
	if len(r.Players) == 2 && r.Players[0] == r.Players[1] {
		return fmt.Errorf("%w: result references the same player twice", ErrValidation)
	}
	ts := r.TotalStats
	if ts.TotalWon < 0 || ts.TotalLost < 0 {
		return fmt.Errorf("%w: negative totals %d-%d", ErrValidation, ts.TotalWon, ts.TotalLost)
	}
	if ts.TotalWon+ts.TotalLost != ts.TotalPlayed {
		return fmt.Errorf("%w: totalWon %d + totalLost %d != totalPlayed %d", ErrValidation, ts.TotalWon, ts.TotalLost, ts.TotalPlayed)
	}
	if ts.TotalWon > ts.TotalPlayed {
		return fmt.Errorf("%w: totalWon %d exceeds totalPlayed %d", ErrValidation, ts.TotalWon, ts.TotalPlayed)
	}
	if ts.WinPercentage < 0 || ts.WinPercentage > 1 {
		return fmt.Errorf("%w: winPercentage %.3f outside [0,1]", ErrValidation, ts.WinPercentage)
	}
	rr := r.RoundRobinScores
	if rr.RRPlayed > 0 && rr.RRWon+rr.RRLost != rr.RRPlayed {
		return fmt.Errorf("%w: rrWon %d + rrLost %d != rrPlayed %d", ErrValidation, rr.RRWon, rr.RRLost, rr.RRPlayed)
	}
	return nil
}

// TeamKey identifies a team within a tournament independent of player order
func TeamKey(tournamentID primitive.ObjectID, players []primitive.ObjectID) string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.Hex()
	}
	slices.Sort(ids)
	return tournamentID.Hex() + ":" + strings.Join(ids, ",")
}

// Checkpoint records that one source (a tournament file or an aggregate group) finished importing
type Checkpoint struct {
	Source      string    `bson:"_id" json:"source"`
	RunID       string    `bson:"runId" json:"runId"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	Created     int       `bson:"created" json:"created"`
	Updated     int       `bson:"updated" json:"updated"`
	Failed      int       `bson:"failed" json:"failed"`
	Skipped     bool      `bson:"skipped" json:"skipped"`
}

// Counts holds the number of stored documents per collection
type Counts struct {
	Players     int64
	Tournaments int64
	Results     int64
}

// BulkError is returned by bulk inserts when individual documents were rejected. Documents not listed were stored
type BulkError struct {
	Failed map[int]error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("%d documents in the batch were rejected", len(e.Failed))
}
