package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	c "github.com/ximlor/inv-nbs/service/core"
	"github.com/ximlor/inv-nbs/service/tables"
)

const (
	EnvPrefix = "ROLLING"

	ModeRun   = "run"
	ModeServe = "serve"
)

// Config is read from ROLLING_* environment variables, then command line flags override it
type Config struct {
	InputPath      string   `envconfig:"INPUT_PATH"`
	OutputPath     string   `envconfig:"OUTPUT_PATH"`
	Sheet          string   `envconfig:"SHEET"`
	PeriodColumn   string   `envconfig:"PERIOD_COLUMN" default:"Year" validate:"required"`
	AssetColumns   []string `envconfig:"ASSET_COLUMNS"`
	Window         int      `envconfig:"WINDOW" default:"10" validate:"min=1"`
	PeriodsPerYear int      `envconfig:"PERIODS_PER_YEAR" default:"1" validate:"min=1"`
	Suffix         string   `envconfig:"SUFFIX"`
	Lenient        bool     `envconfig:"LENIENT"`
	SampleRows     int      `envconfig:"SAMPLE_ROWS" default:"15" validate:"min=0"`
	Workers        int      `envconfig:"WORKERS" default:"4" validate:"min=1"`

	Sink           string   `envconfig:"SINK" validate:"omitempty,oneof=csv xlsx postgres"`
	OutputTable    string   `envconfig:"OUTPUT_TABLE" default:"rolling_returns" validate:"required_if=Sink postgres"`
	DatabaseURL    string   `envconfig:"DATABASE_URL" validate:"required_if=Sink postgres"`
	ServerAddr     string   `envconfig:"SERVER_ADDR" default:":8080" validate:"required"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogPretty bool   `envconfig:"LOG_PRETTY"`
}

var validate = validator.New()

// Load decodes the environment, applies args as flag overrides and validates the result for mode
func Load(mode string, args []string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	// envconfig splits on commas but keeps the spaces around names
	cfg.AssetColumns = splitList(strings.Join(cfg.AssetColumns, ","))
	cfg.AllowedOrigins = splitList(strings.Join(cfg.AllowedOrigins, ","))

	fs := cfg.flagSet(mode)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) flagSet(mode string) *flag.FlagSet {
	fs := flag.NewFlagSet(mode, flag.ContinueOnError)

	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "input table, .csv or .xlsx")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "output table, .csv or .xlsx")
	fs.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "workbook sheet, first sheet when empty")
	fs.StringVar(&cfg.PeriodColumn, "period-column", cfg.PeriodColumn, "column holding the period")
	fs.Func("assets", "comma separated asset columns, every other column when empty", func(s string) error {
		cfg.AssetColumns = splitList(s)
		return nil
	})
	fs.IntVar(&cfg.Window, "window", cfg.Window, "window length in periods")
	fs.IntVar(&cfg.PeriodsPerYear, "periods-per-year", cfg.PeriodsPerYear, "periods per year of the input returns")
	fs.StringVar(&cfg.Suffix, "suffix", cfg.Suffix, "derived column suffix")
	fs.BoolVar(&cfg.Lenient, "lenient", cfg.Lenient, "treat malformed cells as missing instead of failing")
	fs.IntVar(&cfg.SampleRows, "sample-rows", cfg.SampleRows, "rows printed in the report")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "assets computed in parallel")
	fs.StringVar(&cfg.Sink, "sink", cfg.Sink, "csv, xlsx or postgres, inferred from the output extension when empty")
	fs.StringVar(&cfg.OutputTable, "output-table", cfg.OutputTable, "table name for the postgres sink")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres connection string")
	fs.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "listen address in serve mode")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human readable logs")

	return fs
}

// Validate checks field rules, then the inputs the mode needs
func (cfg *Config) Validate(mode string) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch mode {
	case ModeServe:
		return nil
	case ModeRun:
	default:
		return fmt.Errorf("unknown mode %q, expected %s or %s", mode, ModeRun, ModeServe)
	}

	var errs []error
	if cfg.InputPath == "" {
		errs = append(errs, errors.New("input path is required (ROLLING_INPUT_PATH or -input)"))
	}
	if cfg.SinkFormat() != tables.FormatPostgres && cfg.OutputPath == "" {
		errs = append(errs, errors.New("output path is required (ROLLING_OUTPUT_PATH or -output)"))
	}
	if cfg.InputPath != "" && cfg.InputPath == cfg.OutputPath {
		errs = append(errs, errors.New("output path must differ from input path"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// SinkFormat is the configured sink, or the one implied by the output extension
func (cfg *Config) SinkFormat() string {
	if cfg.Sink != "" {
		return cfg.Sink
	}
	return tables.FormatFromPath(cfg.OutputPath)
}

func (cfg *Config) RunSettings() c.Settings {
	return c.Settings{
		PeriodColumn:   cfg.PeriodColumn,
		Assets:         cfg.AssetColumns,
		Window:         cfg.Window,
		PeriodsPerYear: cfg.PeriodsPerYear,
		Suffix:         cfg.Suffix,
		Lenient:        cfg.Lenient,
		SampleRows:     cfg.SampleRows,
		Workers:        cfg.Workers,
	}
}

func (cfg *Config) ServerSettings() c.ServerSettings {
	return c.ServerSettings{
		Addr:           cfg.ServerAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		PeriodsPerYear: cfg.PeriodsPerYear,
	}
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
