// Package config parses command-line flags. Every flag falls back to a
// NAJDENO_* environment variable, which may come from a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/najdeno/internal/logging"
)

// Config holds the server settings.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
	LogLevel  slog.Level
	LogFormat string

	StoreTimeout  time.Duration
	NotifyWorkers int
	NotifyQueue   int

	// ClaimRate is the sustained number of claim submissions per minute
	// allowed for one user.
	ClaimRate float64
}

// Defaults.
const (
	DefaultDBPath        = "najdeno.sqlite3"
	DefaultAddr          = ":8080"
	DefaultAdminUser     = "Admin"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = logging.FormatText
	DefaultStoreTimeout  = 10 * time.Second
	DefaultNotifyWorkers = 2
	DefaultNotifyQueue   = 256
	DefaultClaimRate     = 5
)

const usage = `Usage: najdeno [flags]

Flags:
  -d, -db <path>            SQLite database path (default: najdeno.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -u, -user <name>          admin username created when none exists (default: Admin)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -log-level <level>        debug, info, warn or error (default: info)
  -log-format <fmt>         text or json (default: text)
  -store-timeout <dur>      timeout for each database interaction (default: 10s)
  -notify-workers <n>       notification delivery workers (default: 2)
  -notify-queue <n>         pending notification capacity (default: 256)
  -claim-rate <n>           claim submissions per user per minute (default: 5)
  -h, -help                 show this help and exit

Every flag can also be set with the matching NAJDENO_* environment variable
(NAJDENO_DB, NAJDENO_ADDR, ...) or in a .env file in the working directory.
`

// LoadEnvFile loads path into the environment when it exists. Variables that
// are already set win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load parses args on top of environment defaults. It returns flag.ErrHelp
// when help was requested.
func Load(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	fset := flag.NewFlagSet("najdeno", flag.ContinueOnError)
	fset.SetOutput(out)
	fset.Usage = func() { fmt.Fprint(out, usage) }

	dbPath := envString("NAJDENO_DB", DefaultDBPath)
	fset.StringVar(&cfg.DBPath, "db", dbPath, "")
	fset.StringVar(&cfg.DBPath, "d", dbPath, "")

	addr := envString("NAJDENO_ADDR", DefaultAddr)
	fset.StringVar(&cfg.Addr, "addr", addr, "")
	fset.StringVar(&cfg.Addr, "a", addr, "")

	adminUser := envString("NAJDENO_USER", DefaultAdminUser)
	fset.StringVar(&cfg.AdminUser, "user", adminUser, "")
	fset.StringVar(&cfg.AdminUser, "u", adminUser, "")

	logPath := envString("NAJDENO_LOG", "")
	fset.StringVar(&cfg.LogPath, "log", logPath, "")
	fset.StringVar(&cfg.LogPath, "l", logPath, "")

	var logLevel string
	fset.StringVar(&logLevel, "log-level", envString("NAJDENO_LOG_LEVEL", DefaultLogLevel), "")
	fset.StringVar(&cfg.LogFormat, "log-format", envString("NAJDENO_LOG_FORMAT", DefaultLogFormat), "")

	storeTimeout, err := envDuration("NAJDENO_STORE_TIMEOUT", DefaultStoreTimeout)
	if err != nil {
		return nil, err
	}
	fset.DurationVar(&cfg.StoreTimeout, "store-timeout", storeTimeout, "")

	workers, err := envInt("NAJDENO_NOTIFY_WORKERS", DefaultNotifyWorkers)
	if err != nil {
		return nil, err
	}
	fset.IntVar(&cfg.NotifyWorkers, "notify-workers", workers, "")

	queue, err := envInt("NAJDENO_NOTIFY_QUEUE", DefaultNotifyQueue)
	if err != nil {
		return nil, err
	}
	fset.IntVar(&cfg.NotifyQueue, "notify-queue", queue, "")

	claimRate, err := envFloat("NAJDENO_CLAIM_RATE", DefaultClaimRate)
	if err != nil {
		return nil, err
	}
	fset.Float64Var(&cfg.ClaimRate, "claim-rate", claimRate, "")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		fset.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	if cfg.LogLevel, err = logging.ParseLevel(logLevel); err != nil {
		return nil, err
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return nil, fmt.Errorf("log format must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("store timeout must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.NotifyWorkers <= 0 || cfg.NotifyQueue <= 0 {
		return nil, fmt.Errorf("notification workers and queue must be positive")
	}
	if cfg.ClaimRate <= 0 {
		return nil, fmt.Errorf("claim rate must be positive, got %v", cfg.ClaimRate)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := envString(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}
