/* results.go
 * Contains the methods for interacting with the tournament_results collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FindResult finds the result for a team, identified by tournament and the set of its players in any order
func (s *Store) FindResult(ctx context.Context, tournamentID primitive.ObjectID, players []primitive.ObjectID) (TournamentResult, error) {
	filter := bson.M{
		"tournamentId": tournamentID,
		"players": bson.M{
			"$all":  players,
			"$size": len(players),
		},
	}

	var r TournamentResult
	err := s.Collections.Results.FindOne(ctx, filter).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TournamentResult{}, err
		}
		return TournamentResult{}, fmt.Errorf("error fetching result from db: %w", err)
	}
	return r, nil
}

// InsertResults bulk inserts team results. See insertMany for the partial failure contract
func (s *Store) InsertResults(ctx context.Context, results []TournamentResult) error {
	return insertMany(ctx, s.Collections.Results, results)
}

// InsertResult inserts a single team result
func (s *Store) InsertResult(ctx context.Context, result TournamentResult) error {
	if _, err := s.Collections.Results.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// UpdateResult overwrites the stored fields of an existing result, matched by id
func (s *Store) UpdateResult(ctx context.Context, result TournamentResult) error {
	fields := result
	fields.ID = primitive.NilObjectID

	res, err := s.Collections.Results.UpdateOne(ctx, bson.M{"_id": result.ID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update result %s: %w", result.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
