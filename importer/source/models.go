/* models.go
 * This file contains the types produced by the source reader
 */

package source

import (
	"time"

	"bod-importer/importer/record"
)

// TournamentFile is one per-tournament export. Date and Token come from the file name, not the rows
type TournamentFile struct {
	Name    string
	Date    time.Time
	Token   string
	Records []record.Record
}

// Bundle holds every record list read from a data directory
type Bundle struct {
	Dir         string
	Tournaments []TournamentFile
	Players     []record.Record
	Scores      []record.Record
	Champions   []record.Record
}

// Files names the aggregate exports inside the data directory
type Files struct {
	Players   string
	Scores    string
	Champions string
}

// DefaultFiles are the aggregate export names used by the historical spreadsheets
var DefaultFiles = Files{
	Players:   "All Players.json",
	Scores:    "All Scores.json",
	Champions: "Champions.json",
}
