package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/tpctrack"
	"github.com/hupe1980/tpctrack/codec"
	"github.com/hupe1980/tpctrack/internal/compress"
)

// Config holds the replay settings. It is read from an optional JSON file
// (-config) and overridden by flags.
type Config struct {
	Input    string `json:"input"`
	Settings string `json:"settings"`
	Events   string `json:"events"`

	Archive  string `json:"archive"`
	DDBTable string `json:"ddb_table"`
	Catalog  string `json:"catalog"`

	Trackers        int     `json:"trackers"`
	Workers         int     `json:"workers"`
	Refit           bool    `json:"refit"`
	OutputSize      int     `json:"output_size"`
	Budget          string  `json:"budget"`
	Duplicates      string  `json:"duplicates"`
	LenientGeometry bool    `json:"lenient_geometry"`
	ZCut            float64 `json:"z_cut"`
	EventsPerSec    float64 `json:"events_per_sec"`
	IOLimit         int64   `json:"io_limit"`
	MemoryLimit     int64   `json:"memory_limit"`

	InputCompression  string `json:"input_compression"`
	ResultCompression string `json:"result_compression"`

	MetricsAddr string `json:"metrics_addr"`
	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Input:             ".",
		Settings:          "settings.txt",
		Events:            "events.txt",
		Trackers:          1,
		OutputSize:        4 << 20,
		Duplicates:        "last",
		InputCompression:  "zstd",
		ResultCompression: "lz4",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// loadConfig applies the config file named by -config, then the flags.
func loadConfig(args []string) (Config, error) {
	cfg := DefaultConfig()
	if path := configPath(args); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := codec.Default.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	fs := flag.NewFlagSet("tpcreplay", flag.ContinueOnError)
	fs.String("config", "", "JSON config file")
	fs.StringVar(&cfg.Input, "input", cfg.Input, "input store: dir, s3://bucket/prefix, minio://host/bucket/prefix, azure://container/prefix")
	fs.StringVar(&cfg.Settings, "settings", cfg.Settings, "settings blob in the input store")
	fs.StringVar(&cfg.Events, "events", cfg.Events, "events blob in the input store")
	fs.StringVar(&cfg.Archive, "archive", cfg.Archive, "archive store (same schemes as -input); empty disables archiving")
	fs.StringVar(&cfg.DDBTable, "ddb-table", cfg.DDBTable, "DynamoDB table for archive commits (s3 archives only)")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "SQLite catalog file; empty disables the catalog")
	fs.IntVar(&cfg.Trackers, "trackers", cfg.Trackers, "events processed concurrently")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "slices reconstructed concurrently per event (0: GOMAXPROCS)")
	fs.BoolVar(&cfg.Refit, "refit", cfg.Refit, "refit tracks after merging")
	fs.IntVar(&cfg.OutputSize, "output-size", cfg.OutputSize, "result buffer size per event in bytes")
	fs.StringVar(&cfg.Budget, "budget", cfg.Budget, "per-event time budget, e.g. 50ms")
	fs.StringVar(&cfg.Duplicates, "duplicates", cfg.Duplicates, "duplicate hit id policy: last, first, reject")
	fs.BoolVar(&cfg.LenientGeometry, "lenient-geometry", cfg.LenientGeometry, "log instead of failing on heterogeneous slice layouts")
	fs.Float64Var(&cfg.ZCut, "z-cut", cfg.ZCut, "drop hits with |z| above this value in cm (0: no cut)")
	fs.Float64Var(&cfg.EventsPerSec, "rate", cfg.EventsPerSec, "event admission rate (0: unlimited)")
	fs.Int64Var(&cfg.IOLimit, "io-limit", cfg.IOLimit, "archive IO limit in bytes/s (0: unlimited)")
	fs.Int64Var(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "scratch memory limit in bytes (0: unlimited)")
	fs.StringVar(&cfg.InputCompression, "input-compression", cfg.InputCompression, "archive compression of events: none, lz4, zstd")
	fs.StringVar(&cfg.ResultCompression, "result-compression", cfg.ResultCompression, "archive compression of results: none, lz4, zstd")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus listen address, e.g. :2112")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func configPath(args []string) string {
	for i, a := range args {
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if name != "config" || !strings.HasPrefix(a, "-") {
			continue
		}
		if hasVal {
			return val
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Trackers <= 0 {
		return fmt.Errorf("trackers must be positive, got %d", c.Trackers)
	}
	if c.ZCut < 0 {
		return fmt.Errorf("z cut must not be negative, got %g", c.ZCut)
	}
	if c.OutputSize <= 0 {
		return fmt.Errorf("output size must be positive, got %d", c.OutputSize)
	}
	if _, err := c.budget(); err != nil {
		return err
	}
	if _, err := c.duplicatePolicy(); err != nil {
		return err
	}
	if _, _, err := c.compression(); err != nil {
		return err
	}
	_, err := c.logLevel()
	return err
}

func (c *Config) budget() (time.Duration, error) {
	if c.Budget == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Budget)
	if err != nil {
		return 0, fmt.Errorf("budget: %w", err)
	}
	return d, nil
}

func (c *Config) duplicatePolicy() (tpctrack.DuplicatePolicy, error) {
	switch c.Duplicates {
	case "", "last":
		return tpctrack.LastWriteWins, nil
	case "first":
		return tpctrack.FirstWriteWins, nil
	case "reject":
		return tpctrack.RejectDuplicates, nil
	}
	return 0, fmt.Errorf("unknown duplicate policy %q", c.Duplicates)
}

func (c *Config) compression() (input, result compress.Codec, err error) {
	if input, err = compress.ParseCodec(c.InputCompression); err != nil {
		return
	}
	result, err = compress.ParseCodec(c.ResultCompression)
	return
}

func (c *Config) logLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func (c *Config) logger() *tpctrack.Logger {
	level, _ := c.logLevel()
	if c.LogFormat == "json" {
		return tpctrack.NewJSONLogger(level)
	}
	return tpctrack.NewTextLogger(level)
}
