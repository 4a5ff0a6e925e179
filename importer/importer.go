/* importer.go
 * This file contains the public entry points of the import pipeline. Run reads the historical exports, normalizes and
 * resolves every row, fills derived statistics and writes the result through the idempotent writer. Sub packages
 * should be driven through this file so phases run in order and the summary stays complete
 */

package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bod-importer/importer/fixer"
	"bod-importer/importer/normalize"
	"bod-importer/importer/record"
	"bod-importer/importer/resolve"
	"bod-importer/importer/source"
	"bod-importer/importer/stats"
	"bod-importer/importer/store"
	"bod-importer/importer/writer"
)

// Options controls a run
type Options struct {
	Dir   string
	Files source.Files
	// Force ignores the completion marker. Checkpointed sources and existing tournaments are still skipped
	Force bool
	// Reimport processes every source again and updates results that already exist
	Reimport bool
	// CreatePlayers lets team rows create players that were not in the players export
	CreatePlayers bool
	// FixBrackets runs the bracket fixer over each tournament file before it is normalized
	FixBrackets bool
	// WriteRate limits store writes per second, 0 is unlimited
	WriteRate float64
	DryRun    bool
}

// Notifier delivers the text summary of a run
type Notifier interface {
	Send(ctx context.Context, message string) error
}

type Importer struct {
	Store    store.Interface
	Reader   *source.Reader
	Writer   *writer.Writer
	Marker   writer.Marker
	Notifier Notifier
	Logger   *slog.Logger
	Options  Options
	Now      func() time.Time
	NewRunID func() string

	resolver *resolve.Resolver
	runID    string
}

// NewImporter wires the pipeline over a store and completion marker
// Preconditions: Receives a store, a marker, the run options and a logger (nil uses the default logger)
// Postconditions: Returns an Importer ready to Run. Notifier is left nil
func NewImporter(s store.Interface, marker writer.Marker, opts Options, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Files == (source.Files{}) {
		opts.Files = source.DefaultFiles
	}
	return &Importer{
		Store:    s,
		Reader:   source.NewReader(opts.Files, logger),
		Writer:   writer.NewWriter(s, opts.WriteRate, logger),
		Marker:   marker,
		Logger:   logger,
		Options:  opts,
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

// Run executes every phase in order: marker check, read, optional bracket fix, players, tournament files, aggregate
// scores, champions metadata, marker write and notification.
// Preconditions: Receives a context
// Postconditions: Returns the run summary. Row level problems are only recorded in the summary; the returned error is
// set for fatal problems (unreadable input, unusable store) and in that case no marker is written
func (i *Importer) Run(ctx context.Context) (*Summary, error) {
	i.runID = i.NewRunID()
	i.Writer.Now = i.Now
	sum := &Summary{RunID: i.runID, StartedAt: i.Now().UTC(), DryRun: i.Options.DryRun}
	log := i.Logger.With("run_id", i.runID)

	if !i.Options.Force && i.Marker != nil {
		at, prevRun, done, err := i.Marker.Completed()
		if err != nil {
			return nil, err
		}
		if done {
			log.Info("import already completed, nothing to do", "completed_at", at, "previous_run", prevRun)
			sum.AlreadyImported = true
			sum.MarkedAt = at
			sum.FinishedAt = i.Now().UTC()
			return sum, nil
		}
	}

	log.Info("reading source files", "dir", i.Options.Dir)
	bundle, err := i.Reader.Read(i.Options.Dir)
	if err != nil {
		return nil, err
	}

	if i.Options.FixBrackets {
		i.fixBrackets(bundle, sum)
	}

	i.resolver = resolve.NewResolver(i.Store, i.Options.CreatePlayers, i.Writer.CreatePlayer, i.Logger)

	if err := i.importPlayers(ctx, bundle.Players, sum); err != nil {
		return nil, fmt.Errorf("players phase failed: %w", err)
	}

	for _, f := range bundle.Tournaments {
		if err := i.importSource(ctx, f.Name, normalize.TournamentFromFile(f), f.Records, sum); err != nil {
			return nil, fmt.Errorf("import of %s failed: %w", f.Name, err)
		}
	}

	groups, rowErrs := normalize.GroupScores(i.Options.Files.Scores, bundle.Scores)
	for _, e := range rowErrs {
		log.Warn("skipping score row", "file", i.Options.Files.Scores, "row", e.Row, "error", e.Err)
		sum.Results.Fail(fmt.Sprintf("%s row %d", i.Options.Files.Scores, e.Row), e.Err)
	}
	for _, g := range groups {
		if err := i.importSource(ctx, g.Source, g.Tournament, g.Records, sum); err != nil {
			return nil, fmt.Errorf("import of %s failed: %w", g.Source, err)
		}
	}

	if err := i.applyChampions(ctx, bundle.Champions, sum); err != nil {
		return nil, fmt.Errorf("champions phase failed: %w", err)
	}

	sum.FinishedAt = i.Now().UTC()
	if i.Marker != nil {
		if err := i.Marker.Mark(sum.FinishedAt, i.runID); err != nil {
			return sum, err
		}
	}
	if counts, err := i.Store.Counts(ctx); err != nil {
		log.Warn("failed to count stored documents", "error", err)
	} else {
		sum.Stored = counts
	}
	sum.Log(log)

	if i.Notifier != nil {
		if err := i.Notifier.Send(ctx, sum.String()); err != nil {
			log.Warn("failed to send import summary", "error", err)
		}
	}
	return sum, nil
}

func (i *Importer) fixBrackets(bundle *source.Bundle, sum *Summary) {
	for n := range bundle.Tournaments {
		f := &bundle.Tournaments[n]
		fixed, format, v := fixer.Fix(f.Records)
		f.Records = fixed
		sum.BracketFixErrors += len(v.Errors)
		i.Logger.Debug("fixed brackets", "file", f.Name, "format", format.String(), "teams", v.Teams, "verified", len(v.Verified), "errors", len(v.Errors))
	}
}

// importPlayers maps the players export. Known players are updated in place, new ones are bulk inserted.
// A name repeated in the export updates the pending player instead of creating a second one
func (i *Importer) importPlayers(ctx context.Context, rows []record.Record, sum *Summary) error {
	if len(rows) == 0 {
		return nil
	}
	file := i.Options.Files.Players
	var local writer.Tally
	var pending []store.Player
	pendingByKey := make(map[string]int)

	for n, r := range rows {
		rowKey := fmt.Sprintf("%s row %d", file, n+1)
		pr, err := normalize.MapPlayer(r)
		if err != nil {
			i.Logger.Warn("skipping player row", "file", file, "row", n+1, "error", err)
			local.Fail(rowKey, err)
			continue
		}
		stats.Player(&pr)
		p := pr.Player

		key := resolve.Key(p.Name)
		if idx, dup := pendingByKey[key]; dup {
			p.ID, p.Name, p.FirstName, p.LastName = pending[idx].ID, pending[idx].Name, pending[idx].FirstName, pending[idx].LastName
			pending[idx] = p
			local.Updated++
			continue
		}

		existing, found, err := i.resolver.LookupPlayer(ctx, p.Name)
		if err != nil {
			return err
		}
		if found {
			p.ID, p.Name = existing.ID, existing.Name
			before := local.Updated
			if err := i.Writer.UpdatePlayer(ctx, p, &local); err != nil {
				return err
			}
			if local.Updated > before {
				i.resolver.Remember(p)
			}
			continue
		}

		p.ID = primitive.NewObjectID()
		pendingByKey[key] = len(pending)
		pending = append(pending, p)
	}

	before := len(local.Errors)
	if err := i.Writer.InsertPlayers(ctx, pending, &local); err != nil {
		return err
	}
	rejected := make(map[string]bool)
	for _, e := range local.Errors[before:] {
		rejected[e.Key] = true
	}
	for _, p := range pending {
		if !rejected[p.Name] {
			i.resolver.Remember(p)
		}
	}

	sum.Players.Add(local)
	i.Logger.Info("players imported", "file", file, "created", local.Created, "updated", local.Updated, "failed", local.Failed)
	return nil
}

// importSource imports the team rows of one tournament source: a per-tournament file or one group of the aggregate
// scores export.
// Postconditions: The source is checkpointed when its rows were processed. A source whose tournament already exists is
// skipped unless reimporting, a source whose tournament cannot be stored is left unchecked so a later run retries it
func (i *Importer) importSource(ctx context.Context, name string, tour store.Tournament, rows []record.Record, sum *Summary) error {
	log := i.Logger.With("source", name, "bod_number", tour.BodNumber, "format", store.LongFormat(tour.Format))

	if !i.Options.Reimport {
		c, done, err := i.Writer.Checkpointed(ctx, name)
		if err != nil {
			return err
		}
		if done {
			log.Info("source already imported, skipping", "completed_at", c.CompletedAt, "previous_run", c.RunID)
			sum.FilesSkipped++
			return nil
		}
	}

	existing, found, err := i.resolver.Tournament(ctx, tour.BodNumber)
	if err != nil {
		return err
	}
	switch {
	case found && !i.Options.Reimport:
		log.Info("tournament already exists, skipping source", "tournament_date", existing.Date.Format("2006-01-02"))
		sum.FilesSkipped++
		sum.Tournaments.Skipped++
		return i.Writer.Checkpoint(ctx, name, i.runID, writer.Tally{}, true)
	case found:
		tour = mergeMetadata(existing, tour)
		if tour != existing {
			if err := i.Writer.UpdateTournament(ctx, name, tour, &sum.Tournaments); err != nil {
				return err
			}
		}
	default:
		tour.ID = primitive.NewObjectID()
		stored, err := i.Writer.InsertTournament(ctx, name, tour, &sum.Tournaments)
		if err != nil {
			return err
		}
		if !stored {
			log.Warn("tournament rejected, skipping its rows", "rows", len(rows))
			return nil
		}
	}

	var local writer.Tally
	var inserts []writer.Item[store.TournamentResult]
	teams := make(map[string]teamSlot)

	for n, r := range rows {
		key := fmt.Sprintf("%s row %d", name, n+1)
		if skip, reason := normalize.Excluded(r); skip {
			sum.RowsExcluded++
			log.Debug("excluding row", "row", n+1, "reason", reason)
			continue
		}

		row, err := normalize.MapResultRow(r)
		if err != nil {
			log.Warn("skipping team row", "row", n+1, "error", err)
			local.Fail(key, err)
			continue
		}
		key = fmt.Sprintf("%s: %s", name, row.Label())
		stats.Result(&row)

		ids, created, err := i.resolver.Team(ctx, row.Players)
		sum.Players.Created += created
		if err != nil {
			if errors.Is(err, resolve.ErrPlayerNotFound) {
				sum.PlayersNotFound++
			} else if writer.Fatal(err) {
				return err
			}
			log.Warn("dropping team row", "team", row.Label(), "error", err)
			local.Fail(key, err)
			continue
		}

		res := row.Result
		res.TournamentID = tour.ID
		res.Players = ids

		teamKey := store.TeamKey(tour.ID, ids)
		if slot, dup := teams[teamKey]; dup {
			log.Warn("team appears more than once, updating its earlier row", "team", row.Label(), "row", n+1)
			res.ID = slot.id
			if slot.insert >= 0 {
				inserts[slot.insert] = writer.Item[store.TournamentResult]{Key: key, Doc: res}
				local.Updated++
				continue
			}
			if err := i.Writer.UpdateResult(ctx, writer.Item[store.TournamentResult]{Key: key, Doc: res}, &local); err != nil {
				return err
			}
			continue
		}

		if found {
			prev, exists, err := i.resolver.Result(ctx, tour.ID, ids)
			if err != nil {
				return err
			}
			if exists {
				res.ID = prev.ID
				teams[teamKey] = teamSlot{id: res.ID, insert: -1}
				if err := i.Writer.UpdateResult(ctx, writer.Item[store.TournamentResult]{Key: key, Doc: res}, &local); err != nil {
					return err
				}
				continue
			}
		}
		res.ID = primitive.NewObjectID()
		teams[teamKey] = teamSlot{id: res.ID, insert: len(inserts)}
		inserts = append(inserts, writer.Item[store.TournamentResult]{Key: key, Doc: res})
	}

	if err := i.Writer.InsertResults(ctx, inserts, &local); err != nil {
		return err
	}
	sum.Results.Add(local)
	log.Info("source imported", "created", local.Created, "updated", local.Updated, "failed", local.Failed)
	return i.Writer.Checkpoint(ctx, name, i.runID, local, false)
}

// teamSlot remembers where a team's result went earlier in the same source. insert is its index in the pending
// inserts, or -1 when it updated a stored result
type teamSlot struct {
	id     primitive.ObjectID
	insert int
}

// mergeMetadata fills the existing tournament's empty metadata fields from an incoming one
func mergeMetadata(existing store.Tournament, incoming store.Tournament) store.Tournament {
	out := existing
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&out.Location, incoming.Location)
	fill(&out.AdvancementCriteria, incoming.AdvancementCriteria)
	fill(&out.Notes, incoming.Notes)
	fill(&out.PhotoAlbums, incoming.PhotoAlbums)
	return out
}

// applyChampions copies champions metadata onto tournaments that exist. Rows for unknown tournaments are skipped
func (i *Importer) applyChampions(ctx context.Context, rows []record.Record, sum *Summary) error {
	if len(rows) == 0 {
		return nil
	}
	file := i.Options.Files.Champions
	tours, rowErrs := normalize.MapChampions(rows)
	for _, e := range rowErrs {
		i.Logger.Warn("skipping champions row", "file", file, "row", e.Row, "error", e.Err)
		sum.Tournaments.Fail(fmt.Sprintf("%s row %d", file, e.Row), e.Err)
	}

	for _, meta := range tours {
		existing, found, err := i.resolver.Tournament(ctx, meta.BodNumber)
		if err != nil {
			return err
		}
		if !found {
			i.Logger.Debug("no tournament for champions row", "bod_number", meta.BodNumber)
			sum.Tournaments.Skipped++
			continue
		}
		merged := mergeMetadata(existing, meta)
		if merged == existing {
			continue
		}
		key := fmt.Sprintf("%s: %d", file, meta.BodNumber)
		if err := i.Writer.UpdateTournament(ctx, key, merged, &sum.Tournaments); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTournament removes a tournament and every result that references it.
// Preconditions: Receives a context and the BOD number of the tournament
// Postconditions: Returns the number of results removed, or an error wrapping mongo.ErrNoDocuments if no tournament
// has that number
func (i *Importer) DeleteTournament(ctx context.Context, bodNumber int) (int64, error) {
	t, err := i.Store.FindTournamentByBodNumber(ctx, bodNumber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("tournament %d not found: %w", bodNumber, err)
		}
		return 0, fmt.Errorf("failed to look up tournament %d: %w", bodNumber, err)
	}
	removed, err := i.Store.DeleteTournament(ctx, t.ID)
	if err != nil {
		return removed, fmt.Errorf("failed to delete tournament %d: %w", bodNumber, err)
	}
	i.Logger.Info("tournament deleted", "bod_number", bodNumber, "results_removed", removed)
	return removed, nil
}
