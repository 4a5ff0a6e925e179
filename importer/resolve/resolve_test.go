/* resolve_test.go
 * Contains unit tests for resolve.go
 */

package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bod-importer/importer/store"
)

func newTestResolver(t *testing.T, allowCreate bool) (*Resolver, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	return NewResolver(mem, allowCreate, mem.InsertPlayer, nil), mem
}

// region player tests

func TestPlayer_CreatesOnceCaseInsensitive(t *testing.T) {
	r, mem := newTestResolver(t, true)
	ctx := context.Background()

	first, created, err := r.Player(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Jane", first.FirstName)
	assert.Equal(t, "Doe", first.LastName)

	again, created, err := r.Player(ctx, "  JANE   doe ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	players := mem.Players()
	require.Len(t, players, 1)
	assert.Equal(t, "Jane Doe", players[0].Name)
}

func TestPlayer_ReusesStoredPlayer(t *testing.T) {
	r, mem := newTestResolver(t, true)
	existing := store.SamplePlayer("John Smith")
	require.NoError(t, mem.InsertPlayer(context.Background(), existing))

	p, created, err := r.Player(context.Background(), "john smith")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, "John Smith", p.Name)
}

func TestPlayer_NotFoundWithSuggestion(t *testing.T) {
	r, mem := newTestResolver(t, false)
	require.NoError(t, mem.InsertPlayer(context.Background(), store.SamplePlayer("Jane Doe")))

	_, _, err := r.Player(context.Background(), "Jane Do")

	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.Contains(t, err.Error(), `did you mean "Jane Doe"`)
	assert.Len(t, mem.Players(), 1)
}

func TestPlayer_NotFoundNoSuggestion(t *testing.T) {
	r, _ := newTestResolver(t, false)

	_, _, err := r.Player(context.Background(), "Nobody Known")

	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestPlayer_CreateFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	boom := errors.New("write refused")
	r := NewResolver(mem, true, func(context.Context, store.Player) error { return boom }, nil)

	_, _, err := r.Player(context.Background(), "Jane Doe")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPlayerNotFound)
}

func TestTeam_ResolvesInOrder(t *testing.T) {
	r, _ := newTestResolver(t, true)
	ctx := context.Background()
	jane, _, err := r.Player(ctx, "Jane Doe")
	require.NoError(t, err)

	ids, created, err := r.Team(ctx, []string{"John Smith", "jane doe"})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, ids, 2)
	assert.Equal(t, jane.ID, ids[1])
}

func TestTeam_StopsAtUnresolved(t *testing.T) {
	r, mem := newTestResolver(t, false)
	require.NoError(t, mem.InsertPlayer(context.Background(), store.SamplePlayer("Jane Doe")))

	_, _, err := r.Team(context.Background(), []string{"Jane Doe", "Ghost Player"})

	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRemember_UpdatesSuggestions(t *testing.T) {
	r, _ := newTestResolver(t, false)
	ctx := context.Background()
	assert.Equal(t, "", r.Suggest(ctx, "Jane"))

	r.Remember(store.Player{ID: primitive.NewObjectID(), Name: "Jane Doe"})

	assert.Equal(t, "Jane Doe", r.Suggest(ctx, "Jane"))
	p, found, err := r.LookupPlayer(ctx, "JANE DOE")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Jane Doe", p.Name)
}

func TestClosest(t *testing.T) {
	names := []string{"Jane Doe", "John Smith", "Janet Doerr"}

	assert.Equal(t, "Jane Doe", closest("jane doe", names))
	assert.Equal(t, "John Smith", closest("Jonh Smith", names))
	assert.Equal(t, "", closest("Completely Different", names))
}

// endregion

// region tournament and result tests

func TestTournament_FoundAndMissing(t *testing.T) {
	r, mem := newTestResolver(t, true)
	ctx := context.Background()
	tour := store.SampleTournament(time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC), store.FormatMen)
	require.NoError(t, mem.InsertTournament(ctx, tour))

	got, found, err := r.Tournament(ctx, 202407)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tour.ID, got.ID)

	_, found, err = r.Tournament(ctx, 202408)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResult_PlayerOrderIgnored(t *testing.T) {
	r, mem := newTestResolver(t, true)
	ctx := context.Background()
	tid := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	res := store.SampleResult(tid, a, b)
	require.NoError(t, mem.InsertResult(ctx, res))

	got, found, err := r.Result(ctx, tid, []primitive.ObjectID{b, a})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, res.ID, got.ID)

	_, found, err = r.Result(ctx, tid, []primitive.ObjectID{a})
	require.NoError(t, err)
	assert.False(t, found)
}

// endregion
