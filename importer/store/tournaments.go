/* tournaments.go
 * Contains the methods for interacting with the tournaments collection
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

// FindTournamentByBodNumber looks a tournament up by its unique identifying number
// Preconditions: Receives a context and a bodNumber
// Postconditions: Returns the tournament, mongo.ErrNoDocuments if none exists, or another error if the lookup failed
func (s *Store) FindTournamentByBodNumber(ctx context.Context, bodNumber int) (Tournament, error) {
	var t Tournament
	err := s.Collections.Tournaments.FindOne(ctx, bson.D{{Key: "bodNumber", Value: bodNumber}}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Tournament{}, err
		}
		return Tournament{}, fmt.Errorf("error fetching tournament %d from db: %w", bodNumber, err)
	}
	return t, nil
}

// InsertTournament inserts a single tournament
func (s *Store) InsertTournament(ctx context.Context, tournament Tournament) error {
	if _, err := s.Collections.Tournaments.InsertOne(ctx, tournament); err != nil {
		return fmt.Errorf("failed to insert tournament %d: %w", tournament.BodNumber, err)
	}
	return nil
}

// UpdateTournament overwrites the stored fields of an existing tournament, matched by id
func (s *Store) UpdateTournament(ctx context.Context, tournament Tournament) error {
	fields := tournament
	fields.ID = primitive.NilObjectID

	res, err := s.Collections.Tournaments.UpdateOne(ctx, bson.M{"_id": tournament.ID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.BodNumber, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteTournament removes a tournament and every result that references it
// Preconditions: Receives the tournament id
// Postconditions: Returns the number of results removed, mongo.ErrNoDocuments if the tournament did not exist, or an
// error if either delete failed. Results are removed first so a failure never leaves orphans behind a missing tournament
func (s *Store) DeleteTournament(ctx context.Context, id primitive.ObjectID) (int64, error) {
	resultsRes, err := s.Collections.Results.DeleteMany(ctx, bson.M{"tournamentId": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete results for tournament %s: %w", id.Hex(), err)
	}

	res, err := s.Collections.Tournaments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return resultsRes.DeletedCount, fmt.Errorf("failed to delete tournament %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return resultsRes.DeletedCount, mongo.ErrNoDocuments
	}
	return resultsRes.DeletedCount, nil
}
