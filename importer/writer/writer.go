/* writer.go
 * Contains the Writer, which persists normalized documents. New documents are bulk inserted when the whole batch
 * validates and inserted one at a time otherwise, so one bad document never blocks the rest. Row level failures are
 * collected into a Tally; only store failures that make further writes pointless are returned as errors
 */

package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"bod-importer/importer/store"
)

// RecordError is one row level failure: the natural key of the record and what went wrong
type RecordError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Tally counts the outcome of writes for one entity type
type Tally struct {
	Created int
	Updated int
	Skipped int
	Failed  int
	Errors  []RecordError
}

// Fail records a row level failure
func (t *Tally) Fail(key string, err error) {
	t.Failed++
	t.Errors = append(t.Errors, RecordError{Key: key, Message: err.Error()})
}

// Add folds another tally into t
func (t *Tally) Add(o Tally) {
	t.Created += o.Created
	t.Updated += o.Updated
	t.Skipped += o.Skipped
	t.Failed += o.Failed
	t.Errors = append(t.Errors, o.Errors...)
}

// Item pairs a document with the key used to report failures
type Item[T any] struct {
	Key string
	Doc T
}

type Writer struct {
	Store   store.Interface
	Limiter *rate.Limiter
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewWriter returns a Writer over s. writesPerSecond <= 0 disables throttling
func NewWriter(s store.Interface, writesPerSecond float64, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{Store: s, Now: time.Now, Logger: logger}
	if writesPerSecond > 0 {
		burst := max(1, int(math.Ceil(writesPerSecond)))
		w.Limiter = rate.NewLimiter(rate.Limit(writesPerSecond), burst)
	}
	return w
}

// wait blocks until n writes are allowed
func (w *Writer) wait(ctx context.Context, n int) error {
	if w.Limiter == nil {
		return nil
	}
	for n > 0 {
		step := min(n, w.Limiter.Burst())
		if err := w.Limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// Fatal reports whether a store error means the store itself is unusable, as opposed to one document being rejected
func Fatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err)
}

// insertBatch validates items, bulk inserts them when all are valid and falls back to one insert per item otherwise.
// Preconditions: Receives the items, a validator and the bulk and single insert functions of the store
// Postconditions: tally holds one Created per stored item and one failure per rejected item. Returns an error only
// when the store is unusable
func insertBatch[T any](ctx context.Context, w *Writer, items []Item[T], validate func(T) error,
	bulk func(context.Context, []T) error, single func(context.Context, T) error, tally *Tally) error {
	if len(items) == 0 {
		return nil
	}

	valid := make([]Item[T], 0, len(items))
	for _, it := range items {
		if err := validate(it.Doc); err != nil {
			tally.Fail(it.Key, err)
			continue
		}
		valid = append(valid, it)
	}

	if len(valid) == len(items) {
		docs := make([]T, len(valid))
		for i, it := range valid {
			docs[i] = it.Doc
		}
		if err := w.wait(ctx, len(docs)); err != nil {
			return err
		}
		err := bulk(ctx, docs)
		if err == nil {
			tally.Created += len(docs)
			return nil
		}
		var bulkErr *store.BulkError
		if errors.As(err, &bulkErr) {
			for i, it := range valid {
				if failure, rejected := bulkErr.Failed[i]; rejected {
					tally.Fail(it.Key, failure)
				} else {
					tally.Created++
				}
			}
			return nil
		}
		if Fatal(err) {
			return err
		}
		w.Logger.Warn("bulk insert failed, falling back to single inserts", "error", err, "documents", len(docs))
	}

	for _, it := range valid {
		if err := w.wait(ctx, 1); err != nil {
			return err
		}
		if err := single(ctx, it.Doc); err != nil {
			if Fatal(err) {
				return err
			}
			tally.Fail(it.Key, err)
			continue
		}
		tally.Created++
	}
	return nil
}

// update validates and stores one changed document
func update[T any](ctx context.Context, w *Writer, item Item[T], validate func(T) error,
	apply func(context.Context, T) error, tally *Tally) error {
	if err := validate(item.Doc); err != nil {
		tally.Fail(item.Key, err)
		return nil
	}
	if err := w.wait(ctx, 1); err != nil {
		return err
	}
	if err := apply(ctx, item.Doc); err != nil {
		if Fatal(err) {
			return err
		}
		tally.Fail(item.Key, err)
		return nil
	}
	tally.Updated++
	return nil
}

// InsertPlayers stores new players, keyed by name in the tally
func (w *Writer) InsertPlayers(ctx context.Context, players []store.Player, tally *Tally) error {
	items := make([]Item[store.Player], len(players))
	for i, p := range players {
		items[i] = Item[store.Player]{Key: p.Name, Doc: p}
	}
	return insertBatch(ctx, w, items, store.Player.Validate, w.Store.InsertPlayers, w.Store.InsertPlayer, tally)
}

// CreatePlayer stores a single player seen for the first time in a team row. Unlike the batch inserts it returns the
// rejection so the resolver can drop the row
func (w *Writer) CreatePlayer(ctx context.Context, player store.Player) error {
	if err := player.Validate(); err != nil {
		return err
	}
	if err := w.wait(ctx, 1); err != nil {
		return err
	}
	return w.Store.InsertPlayer(ctx, player)
}

func (w *Writer) UpdatePlayer(ctx context.Context, player store.Player, tally *Tally) error {
	return update(ctx, w, Item[store.Player]{Key: player.Name, Doc: player}, store.Player.Validate, w.Store.UpdatePlayer, tally)
}

// InsertTournament stores one tournament and reports whether it was stored
func (w *Writer) InsertTournament(ctx context.Context, key string, t store.Tournament, tally *Tally) (bool, error) {
	before := tally.Created
	insert := func(ctx context.Context, docs []store.Tournament) error { return w.Store.InsertTournament(ctx, docs[0]) }
	err := insertBatch(ctx, w, []Item[store.Tournament]{{Key: key, Doc: t}}, w.validateTournament, insert, w.Store.InsertTournament, tally)
	return tally.Created > before, err
}

func (w *Writer) UpdateTournament(ctx context.Context, key string, t store.Tournament, tally *Tally) error {
	return update(ctx, w, Item[store.Tournament]{Key: key, Doc: t}, w.validateTournament, w.Store.UpdateTournament, tally)
}

func (w *Writer) validateTournament(t store.Tournament) error {
	return t.Validate(w.Now())
}

// InsertResults stores new team results
func (w *Writer) InsertResults(ctx context.Context, items []Item[store.TournamentResult], tally *Tally) error {
	return insertBatch(ctx, w, items, store.TournamentResult.Validate, w.Store.InsertResults, w.Store.InsertResult, tally)
}

func (w *Writer) UpdateResult(ctx context.Context, item Item[store.TournamentResult], tally *Tally) error {
	return update(ctx, w, item, store.TournamentResult.Validate, w.Store.UpdateResult, tally)
}

// Checkpointed reports whether a source already finished importing in an earlier run
func (w *Writer) Checkpointed(ctx context.Context, source string) (store.Checkpoint, bool, error) {
	c, err := w.Store.GetCheckpoint(ctx, source)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Checkpoint{}, false, nil
	}
	if err != nil {
		return store.Checkpoint{}, false, fmt.Errorf("failed to read checkpoint for %s: %w", source, err)
	}
	return c, true, nil
}

// Checkpoint records that a source finished importing
func (w *Writer) Checkpoint(ctx context.Context, source string, runID string, tally Tally, skipped bool) error {
	c := store.Checkpoint{
		Source:      source,
		RunID:       runID,
		CompletedAt: w.Now().UTC(),
		Created:     tally.Created,
		Updated:     tally.Updated,
		Failed:      tally.Failed,
		Skipped:     skipped,
	}
	if err := w.Store.SaveCheckpoint(ctx, c); err != nil {
		return fmt.Errorf("failed to save checkpoint for %s: %w", source, err)
	}
	return nil
}
