/* store_test.go
 * Contains unit tests for the MongoDB store using mocked deployments, and integration tests that run against the
 * server named by MONGO_TEST_URI
 */

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// createTestStore connects to MONGO_TEST_URI, skipping the test when it is not set.
// Returns the store and a cleanup function that drops the test database
func createTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewStore(ctx, "test_bod_import", mongoURI)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Database.Drop(context.Background())
		_ = s.Close(context.Background())
	}
	return s, cleanup
}

// region NewStore tests

func TestNewStore_EmptyURI(t *testing.T) {
	_, err := NewStore(context.Background(), "db", "")
	assert.Error(t, err)
}

func TestNewStore_EmptyDatabase(t *testing.T) {
	_, err := NewStore(context.Background(), "", "mongodb://localhost:27017")
	assert.Error(t, err)
}

func TestStore_CloseWithoutClient(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close(context.Background()))
}

// endregion

// region mocked deployment tests

func TestStore_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("collections initialised", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)

		assert.Equal(mt, PlayersCollection, s.Collections.Players.Name())
		assert.Equal(mt, TournamentsCollection, s.Collections.Tournaments.Name())
		assert.Equal(mt, ResultsCollection, s.Collections.Results.Name())
		assert.Equal(mt, CheckpointsCollection, s.Collections.Checkpoints.Name())
	})

	mt.Run("find tournament by bod number", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		id := primitive.NewObjectID()
		date := time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + TournamentsCollection

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "bodNumber", Value: 202407},
			{Key: "date", Value: date},
			{Key: "format", Value: FormatMen},
		}))

		tour, err := s.FindTournamentByBodNumber(context.Background(), 202407)

		require.NoError(mt, err)
		assert.Equal(mt, id, tour.ID)
		assert.Equal(mt, 202407, tour.BodNumber)
		assert.Equal(mt, FormatMen, tour.Format)
		assert.True(mt, date.Equal(tour.Date))
	})

	mt.Run("find tournament not found", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + TournamentsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindTournamentByBodNumber(context.Background(), 202407)

		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})

	mt.Run("insert tournament", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := s.InsertTournament(context.Background(), SampleTournament(time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC), FormatMen))

		assert.NoError(mt, err)
	})

	mt.Run("insert tournament duplicate key", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := s.InsertTournament(context.Background(), SampleTournament(time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC), FormatMen))

		assert.Error(mt, err)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})

	mt.Run("bulk insert reports rejected documents", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    11000,
			Message: "duplicate key error",
		}))

		players := []Player{SamplePlayer("A"), SamplePlayer("B"), SamplePlayer("C")}
		err := s.InsertPlayers(context.Background(), players)

		var bulkErr *BulkError
		require.ErrorAs(mt, err, &bulkErr)
		assert.Len(mt, bulkErr.Failed, 1)
		assert.Contains(mt, bulkErr.Failed, 1)
	})

	mt.Run("bulk insert of nothing is a no-op", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)

		assert.NoError(mt, s.InsertResults(context.Background(), nil))
	})

	mt.Run("update unknown player", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := s.UpdatePlayer(context.Background(), SamplePlayer("Nobody"))

		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})

	mt.Run("update existing result", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		r := SampleResult(primitive.NewObjectID(), primitive.NewObjectID())
		assert.NoError(mt, s.UpdateResult(context.Background(), r))
	})

	mt.Run("save checkpoint", func(mt *mtest.T) {
		s := NewStoreFromDatabase(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "2024-07-20 M.json"}}}},
		))

		err := s.SaveCheckpoint(context.Background(), Checkpoint{Source: "2024-07-20 M.json", RunID: "run", CompletedAt: time.Now()})
		assert.NoError(mt, err)
	})
}

// endregion

// region integration tests

func TestStore_Integration_PlayerNameCaseInsensitive(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, s.EnsureIndexes(ctx))

	require.NoError(t, s.InsertPlayer(ctx, SamplePlayer("Jane Doe")))

	p, err := s.FindPlayerByName(ctx, "JANE DOE")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.Name)

	err = s.InsertPlayer(ctx, SamplePlayer("jane doe"))
	assert.True(t, mongo.IsDuplicateKeyError(err))
}

func TestStore_Integration_DeleteTournamentCascades(t *testing.T) {
	s, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	tour := SampleTournament(time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC), FormatMen)
	require.NoError(t, s.InsertTournament(ctx, tour))
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, s.InsertResults(ctx, []TournamentResult{SampleResult(tour.ID, a, b), SampleResult(tour.ID, a)}))

	found, err := s.FindResult(ctx, tour.ID, []primitive.ObjectID{b, a})
	require.NoError(t, err)
	assert.Len(t, found.Players, 2)

	removed, err := s.DeleteTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Tournaments)
	assert.Equal(t, int64(0), counts.Results)
}

// endregion
