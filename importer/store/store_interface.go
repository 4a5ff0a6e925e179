/* store_interface.go
 * Contains the Store interface used by the resolver and writer. The MongoDB Store and the in-memory MemoryStore both
 * implement it
 */

package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interface defines the persistence operations the importer needs. Lookups that find nothing return
// mongo.ErrNoDocuments so callers can use errors.Is regardless of the implementation.
type Interface interface {
	FindPlayerByName(ctx context.Context, name string) (Player, error)
	ListPlayerNames(ctx context.Context) ([]string, error)
	InsertPlayers(ctx context.Context, players []Player) error
	InsertPlayer(ctx context.Context, player Player) error
	UpdatePlayer(ctx context.Context, player Player) error

	FindTournamentByBodNumber(ctx context.Context, bodNumber int) (Tournament, error)
	InsertTournament(ctx context.Context, tournament Tournament) error
	UpdateTournament(ctx context.Context, tournament Tournament) error
	DeleteTournament(ctx context.Context, id primitive.ObjectID) (int64, error)

	FindResult(ctx context.Context, tournamentID primitive.ObjectID, players []primitive.ObjectID) (TournamentResult, error)
	InsertResults(ctx context.Context, results []TournamentResult) error
	InsertResult(ctx context.Context, result TournamentResult) error
	UpdateResult(ctx context.Context, result TournamentResult) error

	GetCheckpoint(ctx context.Context, source string) (Checkpoint, error)
	SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error

	Counts(ctx context.Context) (Counts, error)
	Close(ctx context.Context) error
}

// Ensure both implementations satisfy Interface
var (
	_ Interface = (*Store)(nil)
	_ Interface = (*MemoryStore)(nil)
)
