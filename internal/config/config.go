// Package config parses the engine's startup configuration once, via kong,
// and hands callers an immutable Config value. Nothing downstream reads
// the environment again after construction.
package config

import (
	"runtime"
	"time"

	"github.com/alecthomas/kong"
)

// Config is the engine's full startup configuration, per spec.md §6's
// environment-variable surface.
type Config struct {
	Log         bool          `help:"Enable structured logging to the rotating log file." default:"true" env:"LOG"`
	LogPath     string        `help:"Log file path." default:"chessgraph.log" env:"LOG_PATH"`
	Timed       bool          `help:"Stop the search after TimedBudget has elapsed." default:"false" env:"TIMED"`
	TimedBudget time.Duration `help:"Search time budget, meaningful only when Timed is set." default:"0s" env:"TIMED_BUDGET"`
	Workers     int           `help:"Number of expansion/backprop worker pairs." default:"0" env:"WORKERS"`
	GraphShards int           `help:"Top-level Position Graph shard count." default:"64" env:"GRAPH_SHARDS"`
	MetricsAddr string        `help:"Address for the status/metrics HTTP server, empty disables it." default:":8080" env:"METRICS_ADDR"`
	BookPath    string        `help:"Path to a read-only opening-book/eval badger database, empty disables it." default:"" env:"BOOK_PATH"`
	FEN         string        `help:"Starting position, in FEN. Empty selects the standard starting position." default:"" env:"START_FEN"`
}

// Parse reads args (normally os.Args[1:]) plus the process environment into
// a Config, applying defaults and resolving Workers to GOMAXPROCS when left
// at zero.
func Parse(args []string) (Config, error) {
	var cfg Config
	parser, err := kong.New(&cfg, kong.Name("chessgraph"))
	if err != nil {
		return Config{}, err
	}
	if _, err := parser.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}
