package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	ex "github.com/ximlor/inv-nbs/data/extensions"
	sm "github.com/ximlor/inv-nbs/service/models"
	"github.com/ximlor/inv-nbs/service/tables"
)

const DefaultWorkers = 4

type Settings struct {
	PeriodColumn   string
	Assets         []string // empty means every column but the period column
	Window         int
	PeriodsPerYear int
	Suffix         string // empty means ColumnSuffix(Window, PeriodsPerYear)
	Lenient        bool
	SampleRows     int
	Workers        int
}

// ColumnSuffix is the configured suffix or the one derived from the window
func (s Settings) ColumnSuffix() string {
	if s.Suffix != "" {
		return s.Suffix
	}
	return ColumnSuffix(s.Window, s.PeriodsPerYear)
}

// Run loads the source, computes one rolling series per asset, writes the augmented table to the sink
// and returns what the console report needs. The sink is only written once every asset has succeeded.
func (sc *ServiceContext) Run(settings Settings) (*sm.RunReport, error) {
	start := time.Now()
	logger := log.Ctx(sc.Context)

	if settings.Window <= 0 {
		return nil, fmt.Errorf("%w: window must be at least 1, got %d", ErrInvalidArgument, settings.Window)
	}

	raw, err := sc.Source.Read(sc.Context)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", sc.Source.Name(), err)
	}

	rt, err := NewReturnTable(raw, settings.PeriodColumn, settings.Assets, settings.Lenient)
	if err != nil {
		return nil, fmt.Errorf("error preparing %s: %w", sc.Source.Name(), err)
	}

	logger.Info().
		Str("source", sc.Source.Name()).
		Int("rows", rt.Len()).
		Strs("assets", rt.Assets()).
		Int("window", settings.Window).
		Msg("computing rolling returns")

	results, err := sc.computeRollingReturns(rt, settings)
	if err != nil {
		return nil, err
	}

	augmented, err := rt.Augment(results)
	if err != nil {
		return nil, err
	}

	if err := sc.Sink.Write(sc.Context, augmented); err != nil {
		return nil, fmt.Errorf("error saving to %s: %w", sc.Sink.Name(), err)
	}

	logger.Info().
		Str("sink", sc.Sink.Name()).
		Int("rows", len(augmented.Rows)).
		Int("columns", len(augmented.Header)).
		Dur("elapsed", time.Since(start)).
		Msg("saved rolling returns")

	return buildRunReport(raw, augmented, rt.PeriodColumn(), sc.Sink.Name(), results, settings), nil
}

// computeRollingReturns runs one job per asset column, columns share nothing so each worker writes its own slot
func (sc *ServiceContext) computeRollingReturns(rt *ReturnTable, settings Settings) ([]*sm.RollingReturnSeries, error) {
	assets := rt.Assets()
	suffix := settings.ColumnSuffix()
	res := make([]*sm.RollingReturnSeries, len(assets))

	workers := settings.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	nWorkers := ex.Max(ex.Min(len(assets), workers), 1)

	jobsChannel := make(chan int, len(assets))
	for i := range assets {
		jobsChannel <- i
	}
	close(jobsChannel)

	// derived from the service context so a cancelled run stops the workers,
	// and one failing column cancels the rest
	g, ctx := errgroup.WithContext(sc.Context)

	for range nWorkers {
		g.Go(func() error {
			for i := range jobsChannel {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				asset := assets[i]
				series, err := rt.AssetSeries(asset)
				if err != nil {
					return err
				}

				values, err := CalculateRollingReturns(series, settings.Window)
				if err != nil {
					return fmt.Errorf("error computing rolling returns for %q: %w", asset, err)
				}

				res[i] = &sm.RollingReturnSeries{
					Asset:  asset,
					Column: asset + suffix,
					Window: settings.Window,
					Values: values,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

func buildRunReport(raw, augmented *tables.Table, periodColumn, output string, results []*sm.RollingReturnSeries, settings Settings) *sm.RunReport {
	sampleRows := settings.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}

	header := append([]string{periodColumn}, ex.Map(results, func(r *sm.RollingReturnSeries) string { return r.Column })...)
	idx := ex.Map(header, func(h string) int { return slices.Index(augmented.Header, h) })

	n := ex.Min(sampleRows, len(augmented.Rows))
	samples := make([][]string, n)
	for k := range n {
		samples[k] = ex.Map(idx, func(j int) string { return augmented.Rows[k][j] })
	}

	summaries := ex.Map(results, func(r *sm.RollingReturnSeries) sm.SummaryStatistics {
		return SummarizeRolling(r.Column, r.Values, r.Window, settings.PeriodsPerYear)
	})

	return &sm.RunReport{
		InputRows:    len(raw.Rows),
		InputColumns: len(raw.Header),
		Output:       output,
		Header:       header,
		SampleRows:   samples,
		Summaries:    summaries,
	}
}
