/* config.go
 * Contains the importer configuration. Values are read from the process environment after an optional .env file has
 * been loaded. Command line flags in main.go override the import switches
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when a variable is unset
const (
	DefaultDatabase      = "bracket_of_death"
	DefaultDataDir       = "./json"
	DefaultPlayersFile   = "All Players.json"
	DefaultScoresFile    = "All Scores.json"
	DefaultChampionsFile = "Champions.json"
	MarkerFileName       = ".import-complete"
)

type Config struct {
	MongoURI      string
	MongoDB       string
	DataDir       string
	PlayersFile   string
	ScoresFile    string
	ChampionsFile string
	MarkerPath    string

	Force         bool
	Reimport      bool
	CreatePlayers bool
	FixBrackets   bool
	DryRun        bool
	WriteRate     float64

	LogLevel string

	DiscordWebhookID    string
	DiscordWebhookToken string
}

// Load reads the configuration. A missing .env file is not an error.
// Preconditions: none
// Postconditions: Returns the configuration, or an error naming the first variable that could not be parsed
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", DefaultDatabase),
		DataDir:             getEnv("DATA_DIR", DefaultDataDir),
		PlayersFile:         getEnv("PLAYERS_FILE", DefaultPlayersFile),
		ScoresFile:          getEnv("SCORES_FILE", DefaultScoresFile),
		ChampionsFile:       getEnv("CHAMPIONS_FILE", DefaultChampionsFile),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
	}
	cfg.MarkerPath = getEnv("IMPORT_MARKER_PATH", filepath.Join(cfg.DataDir, MarkerFileName))

	var err error
	if cfg.Force, err = envBool("IMPORT_FORCE", false); err != nil {
		return nil, err
	}
	if cfg.Reimport, err = envBool("IMPORT_REIMPORT", false); err != nil {
		return nil, err
	}
	if cfg.CreatePlayers, err = envBool("IMPORT_CREATE_PLAYERS", true); err != nil {
		return nil, err
	}
	if cfg.FixBrackets, err = envBool("IMPORT_FIX_BRACKETS", false); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = envBool("IMPORT_DRY_RUN", false); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv("IMPORT_WRITE_RATE")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return nil, fmt.Errorf("invalid IMPORT_WRITE_RATE %q: must be a non-negative number", raw)
		}
		cfg.WriteRate = rate
	}
	return cfg, nil
}

// SetDataDir points the importer at dir. A marker path derived from the old data directory follows it
func (c *Config) SetDataDir(dir string) {
	if c.MarkerPath == filepath.Join(c.DataDir, MarkerFileName) {
		c.MarkerPath = filepath.Join(dir, MarkerFileName)
	}
	c.DataDir = dir
}

// RequireMongo returns an error when the store connection is needed but MONGO_URI is unset
func (c *Config) RequireMongo() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI environment variable is not set")
	}
	return nil
}

// NotifyEnabled reports whether both webhook credentials are configured
func (c *Config) NotifyEnabled() bool {
	return c.DiscordWebhookID != "" && c.DiscordWebhookToken != ""
}

func getEnv(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	b, err := ConvertStrToBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// ConvertStrToBool converts a string of true or false into a boolean
// Preconditions: Receives string containing either true or false (case insensitive)
// Postconditions: Returns boolean value or an error if the string is not true or false
func ConvertStrToBool(str string) (bool, error) {
	str = strings.TrimSpace(str)
	str = strings.ToLower(str)

	if str == "true" {
		return true, nil
	} else if str == "false" {
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string %q", str)
}
