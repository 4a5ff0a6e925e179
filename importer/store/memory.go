/* memory.go
 * Contains MemoryStore, an in-memory implementation of Interface. It backs dry runs and the importer tests, and
 * mirrors the MongoDB store's uniqueness rules: case-insensitive player names and unique bodNumbers
 */

package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MemoryStore struct {
	mu          sync.RWMutex
	players     map[primitive.ObjectID]Player
	tournaments map[primitive.ObjectID]Tournament
	results     map[primitive.ObjectID]TournamentResult
	checkpoints map[string]Checkpoint
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:     make(map[primitive.ObjectID]Player),
		tournaments: make(map[primitive.ObjectID]Tournament),
		results:     make(map[primitive.ObjectID]TournamentResult),
		checkpoints: make(map[string]Checkpoint),
	}
}

func (m *MemoryStore) FindPlayerByName(_ context.Context, name string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Player{}, mongo.ErrNoDocuments
}

func (m *MemoryStore) ListPlayerNames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.players))
	for _, p := range m.players {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *MemoryStore) InsertPlayers(ctx context.Context, players []Player) error {
	failed := make(map[int]error)
	for i, p := range players {
		if err := m.InsertPlayer(ctx, p); err != nil {
			failed[i] = err
		}
	}
	if len(failed) > 0 {
		return &BulkError{Failed: failed}
	}
	return nil
}

func (m *MemoryStore) InsertPlayer(_ context.Context, player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if player.ID.IsZero() {
		player.ID = primitive.NewObjectID()
	}
	if _, ok := m.players[player.ID]; ok {
		return fmt.Errorf("duplicate key: player id %s", player.ID.Hex())
	}
	for _, p := range m.players {
		if strings.EqualFold(p.Name, player.Name) {
			return fmt.Errorf("duplicate key: player name %q", player.Name)
		}
	}
	m.players[player.ID] = player
	return nil
}

func (m *MemoryStore) UpdatePlayer(_ context.Context, player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	m.players[player.ID] = player
	return nil
}

func (m *MemoryStore) FindTournamentByBodNumber(_ context.Context, bodNumber int) (Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tournaments {
		if t.BodNumber == bodNumber {
			return t, nil
		}
	}
	return Tournament{}, mongo.ErrNoDocuments
}

func (m *MemoryStore) InsertTournament(_ context.Context, tournament Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tournament.ID.IsZero() {
		tournament.ID = primitive.NewObjectID()
	}
	for _, t := range m.tournaments {
		if t.BodNumber == tournament.BodNumber {
			return fmt.Errorf("duplicate key: bodNumber %d", tournament.BodNumber)
		}
	}
	m.tournaments[tournament.ID] = tournament
	return nil
}

func (m *MemoryStore) UpdateTournament(_ context.Context, tournament Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tournaments[tournament.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	m.tournaments[tournament.ID] = tournament
	return nil
}

func (m *MemoryStore) DeleteTournament(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for rid, r := range m.results {
		if r.TournamentID == id {
			delete(m.results, rid)
			removed++
		}
	}
	if _, ok := m.tournaments[id]; !ok {
		return removed, mongo.ErrNoDocuments
	}
	delete(m.tournaments, id)
	return removed, nil
}

func (m *MemoryStore) FindResult(_ context.Context, tournamentID primitive.ObjectID, players []primitive.ObjectID) (TournamentResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := TeamKey(tournamentID, players)
	for _, r := range m.results {
		if TeamKey(r.TournamentID, r.Players) == key {
			return r, nil
		}
	}
	return TournamentResult{}, mongo.ErrNoDocuments
}

func (m *MemoryStore) InsertResults(ctx context.Context, results []TournamentResult) error {
	failed := make(map[int]error)
	for i, r := range results {
		if err := m.InsertResult(ctx, r); err != nil {
			failed[i] = err
		}
	}
	if len(failed) > 0 {
		return &BulkError{Failed: failed}
	}
	return nil
}

func (m *MemoryStore) InsertResult(_ context.Context, result TournamentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if _, ok := m.results[result.ID]; ok {
		return fmt.Errorf("duplicate key: result id %s", result.ID.Hex())
	}
	m.results[result.ID] = result
	return nil
}

func (m *MemoryStore) UpdateResult(_ context.Context, result TournamentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[result.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	m.results[result.ID] = result
	return nil
}

func (m *MemoryStore) GetCheckpoint(_ context.Context, source string) (Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checkpoints[source]
	if !ok {
		return Checkpoint{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (m *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[checkpoint.Source] = checkpoint
	return nil
}

func (m *MemoryStore) Counts(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Counts{
		Players:     int64(len(m.players)),
		Tournaments: int64(len(m.tournaments)),
		Results:     int64(len(m.results)),
	}, nil
}

func (m *MemoryStore) Close(_ context.Context) error {
	return nil
}

// Players returns a copy of every stored player sorted by name
func (m *MemoryStore) Players() []Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Player) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Tournaments returns a copy of every stored tournament sorted by bodNumber
func (m *MemoryStore) Tournaments() []Tournament {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tournament, 0, len(m.tournaments))
	for _, t := range m.tournaments {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Tournament) int { return a.BodNumber - b.BodNumber })
	return out
}

// Results returns a copy of every stored result for a tournament
func (m *MemoryStore) Results(tournamentID primitive.ObjectID) []TournamentResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TournamentResult
	for _, r := range m.results {
		if r.TournamentID == tournamentID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b TournamentResult) int { return strings.Compare(a.ID.Hex(), b.ID.Hex()) })
	return out
}
