package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/Dicklesworthstone/proctree/internal/reader"
)

// MinInterval is the shortest poll cadence accepted. A full enumeration
// walks every process, so polling faster mostly measures the poller.
const MinInterval = time.Second

// Config carries runtime options for proctree.
type Config struct {
	Interval  time.Duration `toml:"interval"`
	Timeout   time.Duration `toml:"timeout"`
	Backend   string        `toml:"backend"`
	ProcRoot  string        `toml:"proc_root"`
	Workers   int           `toml:"workers"`
	Listen    string        `toml:"listen"`
	Format    string        `toml:"format"`
	Pretty    bool          `toml:"pretty"`
	Remote    string        `toml:"remote"`
	LogLevel  string        `toml:"log_level"`
	LogFormat string        `toml:"log_format"`
}

func Default() Config {
	return Config{
		Interval:  10 * time.Second,
		Timeout:   5 * time.Second,
		Backend:   "gopsutil",
		ProcRoot:  "/proc",
		Workers:   0,
		Listen:    "127.0.0.1:9814",
		Format:    "json",
		Pretty:    false,
		Remote:    "",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// BindFlags registers every option on fs, defaulting to the values in cfg.
// It also registers --config, whose value is returned through path.
func BindFlags(fs *pflag.FlagSet, cfg *Config, path *string) {
	fs.StringVar(path, "config", "", "TOML config file")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "refresh interval for watch (minimum 1s)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "give up on one enumeration after this long")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "process reader: gopsutil|procfs")
	fs.StringVar(&cfg.ProcRoot, "proc-root", cfg.ProcRoot, "procfs mount point for the procfs backend")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent per-process reads (0 = 2x CPUs)")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address for serve")
	fs.StringVarP(&cfg.Format, "format", "o", cfg.Format, "output format: json|yaml")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "indent JSON output")
	fs.StringVar(&cfg.Remote, "remote", cfg.Remote, "base URL of a proctree serve instance to watch")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text|json")
}

// Resolve layers the config file and environment under the flags that were
// set explicitly on fs: defaults < file < environment < flags.
func Resolve(fs *pflag.FlagSet, cfg Config, path string) (Config, error) {
	out := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &out); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}
	if err := applyEnv(&out); err != nil {
		return Config{}, err
	}

	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		switch f.Name {
		case "interval":
			out.Interval = cfg.Interval
		case "timeout":
			out.Timeout = cfg.Timeout
		case "backend":
			out.Backend = cfg.Backend
		case "proc-root":
			out.ProcRoot = cfg.ProcRoot
		case "workers":
			out.Workers = cfg.Workers
		case "listen":
			out.Listen = cfg.Listen
		case "format":
			out.Format = cfg.Format
		case "pretty":
			out.Pretty = cfg.Pretty
		case "remote":
			out.Remote = cfg.Remote
		case "log-level":
			out.LogLevel = cfg.LogLevel
		case "log-format":
			out.LogFormat = cfg.LogFormat
		}
	})
	return out, out.Validate()
}

// FromFlags parses args and applies file and environment overrides.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	var path string
	fs := pflag.NewFlagSet("proctree", pflag.ContinueOnError)
	BindFlags(fs, &cfg, &path)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return Resolve(fs, cfg, path)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PROCTREE_INTERVAL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrap(err, "PROCTREE_INTERVAL")
		}
		cfg.Interval = d
	}
	if v := os.Getenv("PROCTREE_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrap(err, "PROCTREE_TIMEOUT")
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("PROCTREE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "PROCTREE_WORKERS")
		}
		cfg.Workers = n
	}
	if v := os.Getenv("PROCTREE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("PROCTREE_PROC_ROOT"); v != "" {
		cfg.ProcRoot = v
	}
	if v := os.Getenv("PROCTREE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PROCTREE_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("PROCTREE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds ("15").
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	return time.ParseDuration(v + "s")
}

// ReaderOptions selects the process reader backend described by c.
func (c Config) ReaderOptions() reader.Options {
	return reader.Options{
		Backend:  c.Backend,
		ProcRoot: c.ProcRoot,
		Workers:  c.Workers,
		Timeout:  c.Timeout,
	}
}

// Validate rejects option combinations the service cannot run with.
func (c Config) Validate() error {
	if c.Interval < MinInterval {
		return errors.Errorf("interval %s is below the minimum of %s", c.Interval, MinInterval)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Backend {
	case reader.BackendGopsutil, reader.BackendProcfs:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return errors.Errorf("unknown format %q", c.Format)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
