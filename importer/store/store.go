/* store.go
 * Contains the MongoDB backed Store struct and NewStore function. The methods for this package were split by
 * collection: players, tournaments, results and checkpoints. Each of these files contains methods for interacting
 * with that part of the database
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the REST API
const (
	PlayersCollection     = "players"
	TournamentsCollection = "tournaments"
	ResultsCollection     = "tournament_results"
	CheckpointsCollection = "import_checkpoints"
)

// nameCollation makes name comparisons case-insensitive while the stored value keeps its original casing
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Players     *mongo.Collection
		Tournaments *mongo.Collection
		Results     *mongo.Collection
		Checkpoints *mongo.Collection
	}
}

// NewStore connects to MongoDB and returns a Store for the named database.
// Preconditions: Receives a context, the database name and a mongodb:// connection string
// Postconditions: Returns a connected Store, or an error if the URI is empty or the server cannot be reached
func NewStore(ctx context.Context, dbName string, mongoURI string) (*Store, error) {
	if mongoURI == "" {
		return nil, fmt.Errorf("mongo connection string cannot be empty")
	}
	if dbName == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return NewStoreFromDatabase(client, client.Database(dbName)), nil
}

// NewStoreFromDatabase wraps an existing client and database. Used by NewStore and by tests with mocked deployments
func NewStoreFromDatabase(client *mongo.Client, db *mongo.Database) *Store {
	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Players = db.Collection(PlayersCollection)
	s.Collections.Tournaments = db.Collection(TournamentsCollection)
	s.Collections.Results = db.Collection(ResultsCollection)
	s.Collections.Checkpoints = db.Collection(CheckpointsCollection)
	return s
}

// EnsureIndexes creates the unique indexes the importer relies on for natural keys
// Preconditions: Store is connected
// Postconditions: Indexes exist on players.name (case-insensitive), tournaments.bodNumber and tournament_results.tournamentId
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Players.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(nameCollation),
	})
	if err != nil {
		return fmt.Errorf("failed to create player name index: %w", err)
	}

	_, err = s.Collections.Tournaments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bodNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create bodNumber index: %w", err)
	}

	_, err = s.Collections.Results.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tournamentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tournamentId index: %w", err)
	}
	return nil
}

// Counts returns the number of documents in each entity collection
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Players, err = s.Collections.Players.CountDocuments(ctx, bson.D{}); err != nil {
		return Counts{}, fmt.Errorf("failed to count players: %w", err)
	}
	if c.Tournaments, err = s.Collections.Tournaments.CountDocuments(ctx, bson.D{}); err != nil {
		return Counts{}, fmt.Errorf("failed to count tournaments: %w", err)
	}
	if c.Results, err = s.Collections.Results.CountDocuments(ctx, bson.D{}); err != nil {
		return Counts{}, fmt.Errorf("failed to count results: %w", err)
	}
	return c, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

// insertMany stores docs without stopping at the first rejected document. Per-document rejections are reported as a
// *BulkError so the caller knows which documents did get stored
func insertMany[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]interface{}, len(docs))
	for i := range docs {
		items[i] = docs[i]
	}

	_, err := coll.InsertMany(ctx, items, options.InsertMany().SetOrdered(false))
	if err == nil {
		return nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 && bwe.WriteConcernError == nil {
		failed := make(map[int]error, len(bwe.WriteErrors))
		for _, we := range bwe.WriteErrors {
			failed[we.Index] = errors.New(we.Message)
		}
		return &BulkError{Failed: failed}
	}
	return fmt.Errorf("bulk insert into %s failed: %w", coll.Name(), err)
}
