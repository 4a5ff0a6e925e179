/* players.go
 * Contains the methods for interacting with the players collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindPlayerByName looks a player up by full name, ignoring case
// Preconditions: Receives a context and the trimmed full name
// Postconditions: Returns the stored player, mongo.ErrNoDocuments if there is none, or another error if the lookup failed
func (s *Store) FindPlayerByName(ctx context.Context, name string) (Player, error) {
	opts := options.FindOne().SetCollation(nameCollation)

	var p Player
	err := s.Collections.Players.FindOne(ctx, bson.D{{Key: "name", Value: name}}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Player{}, err
		}
		return Player{}, fmt.Errorf("error fetching player %q from db: %w", name, err)
	}
	return p, nil
}

// ListPlayerNames returns the names of every stored player. Used to suggest near matches for unresolved names
func (s *Store) ListPlayerNames(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.Collections.Players.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing players: %w", err)
	}

	var players []Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of players: %w", err)
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	return names, nil
}

// InsertPlayers bulk inserts players. See insertMany for the partial failure contract
func (s *Store) InsertPlayers(ctx context.Context, players []Player) error {
	return insertMany(ctx, s.Collections.Players, players)
}

// InsertPlayer inserts a single player
func (s *Store) InsertPlayer(ctx context.Context, player Player) error {
	if _, err := s.Collections.Players.InsertOne(ctx, player); err != nil {
		return fmt.Errorf("failed to insert player %q: %w", player.Name, err)
	}
	return nil
}

// UpdatePlayer overwrites the stored fields of an existing player, matched by id
func (s *Store) UpdatePlayer(ctx context.Context, player Player) error {
	filter := bson.M{"_id": player.ID}
	fields := player
	fields.ID = primitive.NilObjectID
	update := bson.M{"$set": fields}

	res, err := s.Collections.Players.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update player %q: %w", player.Name, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
