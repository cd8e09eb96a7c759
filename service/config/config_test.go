package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/ximlor/inv-nbs/data/extensions"
	"github.com/ximlor/inv-nbs/service/tables"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROLLING_INPUT_PATH", "in/returns.csv")
	t.Setenv("ROLLING_OUTPUT_PATH", "out/returns.csv")

	cfg, err := Load(ModeRun, nil)
	require.NoError(t, err)

	ex.AssertAreEqual(t, "period column", "Year", cfg.PeriodColumn)
	ex.AssertAreEqual(t, "window", 10, cfg.Window)
	ex.AssertAreEqual(t, "periods per year", 1, cfg.PeriodsPerYear)
	ex.AssertAreEqual(t, "sample rows", 15, cfg.SampleRows)
	ex.AssertAreEqual(t, "workers", 4, cfg.Workers)
	ex.AssertAreEqual(t, "addr", ":8080", cfg.ServerAddr)
	ex.AssertAreEqual(t, "log level", "info", cfg.LogLevel)
	ex.AssertAreEqual(t, "sink", tables.FormatCSV, cfg.SinkFormat())
	assert.Empty(t, cfg.AssetColumns)
}

func TestLoadEnvironmentAndFlags(t *testing.T) {
	t.Setenv("ROLLING_INPUT_PATH", "in/returns.xlsx")
	t.Setenv("ROLLING_OUTPUT_PATH", "out/returns.xlsx")
	t.Setenv("ROLLING_ASSET_COLUMNS", "S&P 500, Gold*")
	t.Setenv("ROLLING_WINDOW", "5")
	t.Setenv("ROLLING_LENIENT", "true")

	cfg, err := Load(ModeRun, []string{"-window", "3", "-periods-per-year", "12", "-output", "out/monthly.csv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"S&P 500", "Gold*"}, cfg.AssetColumns)
	ex.AssertAreEqual(t, "window from flag", 3, cfg.Window)
	ex.AssertAreEqual(t, "lenient from env", true, cfg.Lenient)
	ex.AssertAreEqual(t, "output from flag", "out/monthly.csv", cfg.OutputPath)
	ex.AssertAreEqual(t, "sink", tables.FormatCSV, cfg.SinkFormat())

	settings := cfg.RunSettings()
	ex.AssertAreEqual(t, "settings window", 3, settings.Window)
	ex.AssertAreEqual(t, "settings periods per year", 12, settings.PeriodsPerYear)
	assert.Equal(t, cfg.AssetColumns, settings.Assets)

	cfg, err = Load(ModeRun, []string{"-assets", " Bonds ,,Cash"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonds", "Cash"}, cfg.AssetColumns)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		mode string
		args []string
	}{
		"missing input":         {env: map[string]string{"ROLLING_OUTPUT_PATH": "out.csv"}, mode: ModeRun},
		"missing output":        {env: map[string]string{"ROLLING_INPUT_PATH": "in.csv"}, mode: ModeRun},
		"same input and output": {args: []string{"-input", "a.csv", "-output", "a.csv"}, mode: ModeRun},
		"zero window":           {args: []string{"-input", "a.csv", "-output", "b.csv", "-window", "0"}, mode: ModeRun},
		"unknown sink":          {args: []string{"-input", "a.csv", "-output", "b.csv", "-sink", "parquet"}, mode: ModeRun},
		"postgres without url":  {args: []string{"-input", "a.csv", "-sink", "postgres"}, mode: ModeRun},
		"bad log level":         {args: []string{"-log-level", "loud"}, mode: ModeServe},
		"unknown mode":          {mode: "import"},
		"stray argument":        {args: []string{"extra"}, mode: ModeServe},
		"unknown flag":          {args: []string{"-nope"}, mode: ModeServe},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(tc.mode, tc.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadServeAndPostgres(t *testing.T) {
	cfg, err := Load(ModeServe, []string{"-addr", ":9090"})
	require.NoError(t, err)
	ex.AssertAreEqual(t, "addr", ":9090", cfg.ServerSettings().Addr)

	cfg, err = Load(ModeRun, []string{"-input", "a.csv", "-sink", "postgres", "-database-url", "postgres://localhost/db"})
	require.NoError(t, err)
	ex.AssertAreEqual(t, "sink", tables.FormatPostgres, cfg.SinkFormat())
	ex.AssertAreEqual(t, "table", "rolling_returns", cfg.OutputTable)
}
