/* checkpoints.go
 * Contains the methods for interacting with the import_checkpoints collection. A checkpoint is written after each
 * source finishes so a run that dies part way through can resume at source granularity
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

// GetCheckpoint returns the checkpoint for a source, or mongo.ErrNoDocuments if the source has not completed
func (s *Store) GetCheckpoint(ctx context.Context, source string) (Checkpoint, error) {
	var c Checkpoint
	err := s.Collections.Checkpoints.FindOne(ctx, bson.M{"_id": source}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Checkpoint{}, err
		}
		return Checkpoint{}, fmt.Errorf("error fetching checkpoint %q: %w", source, err)
	}
	return c, nil
}

// SaveCheckpoint inserts or replaces the checkpoint for its source
func (s *Store) SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.Collections.Checkpoints.ReplaceOne(ctx, bson.M{"_id": checkpoint.Source}, checkpoint, opts)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %q: %w", checkpoint.Source, err)
	}
	return nil
}
