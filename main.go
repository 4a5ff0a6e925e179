/* main.go
 * The "main" method for the Bracket of Death importer. For configuration see config/config.go
 * Usage: go run . -mode=import -dir=./json
 *        go run . -mode=fix -dir=./json
 *        go run . -mode=delete -bod=202407
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bod-importer/config"
	"bod-importer/importer"
	"bod-importer/importer/fixer"
	"bod-importer/importer/source"
	"bod-importer/importer/store"
	"bod-importer/importer/writer"
	"bod-importer/logger"
	"bod-importer/notify"
)

// Exit codes
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// Modes accepted by -mode
const (
	modeImport = "import"
	modeFix    = "fix"
	modeDelete = "delete"
)

const connectTimeout = 15 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes one command and returns the process exit code
func run(args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	mode, bod, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logger.Init(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeFix:
		return runFix(cfg, log)
	case modeDelete:
		return runDelete(ctx, cfg, bod, log)
	default:
		return runImport(ctx, cfg, log)
	}
}

// parseFlags applies the command line over the environment configuration
// Preconditions: Receives the arguments without the program name and a loaded config
// Postconditions: Returns the mode and BOD number, or an error for unknown flags, modes or a delete without -bod
func parseFlags(args []string, cfg *config.Config, output io.Writer) (string, int, error) {
	fs := flag.NewFlagSet("bod-importer", flag.ContinueOnError)
	fs.SetOutput(output)

	mode := fs.String("mode", modeImport, "What to run: import, fix or delete")
	dir := fs.String("dir", cfg.DataDir, "Directory holding the JSON exports")
	bod := fs.Int("bod", 0, "BOD number of the tournament to delete (delete mode)")
	fs.BoolVar(&cfg.Force, "force", cfg.Force, "Ignore the completion marker")
	fs.BoolVar(&cfg.Reimport, "reimport", cfg.Reimport, "Process every source again and update existing results")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Import into memory only, nothing is written")
	fs.BoolVar(&cfg.FixBrackets, "fix-brackets", cfg.FixBrackets, "Fix bracket columns before importing")

	if err := fs.Parse(args); err != nil {
		return "", 0, err
	}
	if fs.NArg() > 0 {
		return "", 0, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg.SetDataDir(*dir)

	switch *mode {
	case modeImport, modeFix:
	case modeDelete:
		if *bod <= 0 {
			return "", 0, fmt.Errorf("delete mode requires -bod=<bodNumber>")
		}
	default:
		return "", 0, fmt.Errorf("invalid mode %q: must be import, fix or delete", *mode)
	}
	return *mode, *bod, nil
}

// openStore returns the in-memory store for dry runs and the MongoDB store otherwise
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Interface, error) {
	if cfg.DryRun {
		log.Info("dry run, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	if err := cfg.RequireMongo(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	s, err := store.NewStore(ctx, cfg.MongoDB, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, err
	}
	log.Info("connected to mongo", "database", cfg.MongoDB)
	return s, nil
}

func closeStore(s store.Interface, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.Warn("failed to disconnect from mongo", "error", err)
	}
}

func runImport(ctx context.Context, cfg *config.Config, log *slog.Logger) int {
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		return exitFatal
	}
	defer closeStore(s, log)

	var marker writer.Marker = writer.FileMarker{Path: cfg.MarkerPath}
	if cfg.DryRun {
		marker = &writer.MemoryMarker{}
	}

	files := source.Files{
		Players:   cfg.PlayersFile,
		Scores:    cfg.ScoresFile,
		Champions: cfg.ChampionsFile,
	}
	imp := importer.NewImporter(s, marker, importer.Options{
		Dir:           cfg.DataDir,
		Files:         files,
		Force:         cfg.Force,
		Reimport:      cfg.Reimport,
		CreatePlayers: cfg.CreatePlayers,
		FixBrackets:   cfg.FixBrackets,
		WriteRate:     cfg.WriteRate,
		DryRun:        cfg.DryRun,
	}, log)

	if cfg.NotifyEnabled() {
		webhook, err := notify.NewWebhook(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		if err != nil {
			log.Warn("notifications disabled", "error", err)
		} else {
			imp.Notifier = webhook
		}
	}

	sum, err := imp.Run(ctx)
	if err != nil {
		log.Error("import failed", "error", err)
		return exitFatal
	}
	if n := len(sum.Errors()); n > 0 {
		log.Warn("import finished with row errors", "errors", n)
	}
	return exitOK
}

func runDelete(ctx context.Context, cfg *config.Config, bod int, log *slog.Logger) int {
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		return exitFatal
	}
	defer closeStore(s, log)

	imp := importer.NewImporter(s, nil, importer.Options{Dir: cfg.DataDir}, log)
	if _, err := imp.DeleteTournament(ctx, bod); err != nil {
		log.Error("delete failed", "bod_number", bod, "error", err)
		return exitFatal
	}
	return exitOK
}

func runFix(cfg *config.Config, log *slog.Logger) int {
	report, err := fixer.FixDirectory(cfg.DataDir, log)
	if err != nil {
		log.Error("bracket fix failed", "error", err)
		return exitFatal
	}
	if len(report.Errors) > 0 {
		log.Warn("some matchups could not be verified", "errors", len(report.Errors))
	}
	return exitOK
}
