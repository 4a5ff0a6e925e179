/* resolve.go
 * Contains the Resolver, which maps natural keys onto stored identities: player names onto players, BOD numbers onto
 * tournaments and (tournament, player set) pairs onto team results. Players are cached for the whole run so later
 * files see the players created by earlier ones
 */

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bod-importer/importer/normalize"
	"bod-importer/importer/store"
)

var ErrPlayerNotFound = errors.New("player not found")

// CreateFunc persists a newly seen player
type CreateFunc func(ctx context.Context, player store.Player) error

type Resolver struct {
	Store         store.Interface
	CreatePlayers bool
	Create        CreateFunc
	Logger        *slog.Logger

	players     map[string]store.Player
	names       []string
	namesLoaded bool
}

// NewResolver returns a Resolver over s. create is called for every player the resolver creates and may be nil when
// allowCreate is false
func NewResolver(s store.Interface, allowCreate bool, create CreateFunc, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		Store:         s,
		CreatePlayers: allowCreate,
		Create:        create,
		Logger:        logger,
		players:       make(map[string]store.Player),
	}
}

// Key is the case-insensitive cache key of a player name
func Key(name string) string {
	return strings.ToLower(normalize.CleanName(name))
}

// Remember caches a player that was stored outside the resolver, e.g. by a bulk insert
func (r *Resolver) Remember(player store.Player) {
	key := Key(player.Name)
	if _, ok := r.players[key]; !ok && r.namesLoaded {
		r.names = append(r.names, player.Name)
	}
	r.players[key] = player
}

// LookupPlayer finds a player by name in the cache, then the store.
// Preconditions: Receives a context and a player name in any casing
// Postconditions: Returns the player and true if it exists, false if it does not, or an error if the store failed
func (r *Resolver) LookupPlayer(ctx context.Context, name string) (store.Player, bool, error) {
	key := Key(name)
	if key == "" {
		return store.Player{}, false, nil
	}
	if p, ok := r.players[key]; ok {
		return p, true, nil
	}

	p, err := r.Store.FindPlayerByName(ctx, normalize.CleanName(name))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Player{}, false, nil
	}
	if err != nil {
		return store.Player{}, false, fmt.Errorf("failed to look up player %q: %w", name, err)
	}
	r.players[key] = p
	return p, true, nil
}

// Player resolves a name to a player, creating the player on first sight when creation is allowed.
// Postconditions: Returns the player and whether this call created it. Returns an error wrapping ErrPlayerNotFound
// when the player does not exist and cannot be created
func (r *Resolver) Player(ctx context.Context, name string) (store.Player, bool, error) {
	p, found, err := r.LookupPlayer(ctx, name)
	if err != nil {
		return store.Player{}, false, err
	}
	if found {
		return p, false, nil
	}

	clean := normalize.CleanName(name)
	if !r.CreatePlayers || r.Create == nil || clean == "" {
		if suggestion := r.Suggest(ctx, clean); suggestion != "" {
			return store.Player{}, false, fmt.Errorf("%w: %q (did you mean %q?)", ErrPlayerNotFound, clean, suggestion)
		}
		return store.Player{}, false, fmt.Errorf("%w: %q", ErrPlayerNotFound, clean)
	}

	p = store.Player{ID: primitive.NewObjectID(), Name: clean}
	p.FirstName, p.LastName = normalize.SplitName(clean)
	if err := r.Create(ctx, p); err != nil {
		return store.Player{}, false, fmt.Errorf("failed to create player %q: %w", clean, err)
	}
	r.Remember(p)
	r.Logger.Debug("created player from team row", "player", clean)
	return p, true, nil
}

// Team resolves every name of a team. The returned ids keep the order of names.
// Postconditions: Returns the ids and the number of players created, or the first resolution error
func (r *Resolver) Team(ctx context.Context, names []string) ([]primitive.ObjectID, int, error) {
	ids := make([]primitive.ObjectID, 0, len(names))
	created := 0
	for _, name := range names {
		p, isNew, err := r.Player(ctx, name)
		if err != nil {
			return nil, created, err
		}
		if isNew {
			created++
		}
		ids = append(ids, p.ID)
	}
	return ids, created, nil
}

// Suggest returns the known player name closest to name, or "" if nothing is close
func (r *Resolver) Suggest(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}
	if !r.namesLoaded {
		names, err := r.Store.ListPlayerNames(ctx)
		if err != nil {
			r.Logger.Warn("could not load player names for suggestions", "error", err)
			return ""
		}
		r.names = names
		r.namesLoaded = true
	}
	return closest(name, r.names)
}

// closest prefers a fuzzy subsequence match and falls back to the smallest edit distance within a third of the name
func closest(name string, names []string) string {
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", len(name)/3+1
	for _, candidate := range names {
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate))
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Tournament finds an existing tournament by BOD number
func (r *Resolver) Tournament(ctx context.Context, bodNumber int) (store.Tournament, bool, error) {
	t, err := r.Store.FindTournamentByBodNumber(ctx, bodNumber)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Tournament{}, false, nil
	}
	if err != nil {
		return store.Tournament{}, false, fmt.Errorf("failed to look up tournament %d: %w", bodNumber, err)
	}
	return t, true, nil
}

// Result finds the existing result of a team in a tournament. Player order does not matter
func (r *Resolver) Result(ctx context.Context, tournamentID primitive.ObjectID, players []primitive.ObjectID) (store.TournamentResult, bool, error) {
	res, err := r.Store.FindResult(ctx, tournamentID, players)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.TournamentResult{}, false, nil
	}
	if err != nil {
		return store.TournamentResult{}, false, fmt.Errorf("failed to look up result: %w", err)
	}
	return res, true, nil
}
