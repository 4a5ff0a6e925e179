/* directory.go
 * Contains FixDirectory, which runs the fixer over every tournament file in a data directory. Originals are copied to
 * backup/ and the fixed files are written to fixed/, the source files themselves are never modified
 */

package fixer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"bod-importer/importer/source"
)

const (
	BackupDir = "backup"
	FixedDir  = "fixed"
)

// Report totals a FixDirectory run
type Report struct {
	Files      int
	FixedFiles int
	Verified   int
	Errors     []string
	BackupDir  string
	FixedDir   string
}

// FixDirectory fixes every tournament file in dir.
// Preconditions: Receives the data directory
// Postconditions: backup/ holds a copy of every tournament file and fixed/ holds the fixed version. A file that cannot
// be read or parsed is reported in Report.Errors and does not stop the run. Returns an error only when the directory
// cannot be listed or the output directories cannot be created
func FixDirectory(dir string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{
		BackupDir: filepath.Join(dir, BackupDir),
		FixedDir:  filepath.Join(dir, FixedDir),
	}
	for _, d := range []string{report.BackupDir, report.FixedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := source.ParseTournamentFileName(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	report.Files = len(names)

	for _, name := range names {
		v, err := fixFile(dir, name, report)
		if err != nil {
			logger.Warn("could not fix tournament file", "file", name, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		for _, e := range v.Errors {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", name, e))
		}
		report.Verified += len(v.Verified)
		if len(v.Verified) > 0 {
			report.FixedFiles++
		}
		logger.Info("fixed tournament file", "file", name, "teams", v.Teams, "verified", len(v.Verified), "errors", len(v.Errors))
	}

	logger.Info("bracket fix complete",
		"files", report.Files,
		"fixed_files", report.FixedFiles,
		"verified_matches", report.Verified,
		"errors", len(report.Errors),
		"backup_dir", report.BackupDir,
		"fixed_dir", report.FixedDir,
	)
	return report, nil
}

func fixFile(dir string, name string, report *Report) (Validation, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return Validation{}, err
	}
	if err := os.WriteFile(filepath.Join(report.BackupDir, name), raw, 0o644); err != nil {
		return Validation{}, fmt.Errorf("backup failed: %w", err)
	}

	rows, err := source.Decode(raw)
	if err != nil {
		return Validation{}, err
	}
	fixed, _, v := Fix(rows)

	out, err := json.MarshalIndent(fixed, "", "  ")
	if err != nil {
		return Validation{}, fmt.Errorf("failed to encode fixed rows: %w", err)
	}
	if err := os.WriteFile(filepath.Join(report.FixedDir, name), out, 0o644); err != nil {
		return Validation{}, fmt.Errorf("failed to write fixed file: %w", err)
	}
	return v, nil
}
