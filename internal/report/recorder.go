package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/scenario"
)

// RunRecorder stores the outcomes of one run and collects its metrics. It
// implements scenario.Recorder.
type RunRecorder struct {
	store       *Store
	run         *Run
	metrics     *Metrics
	metricsFile string
}

var _ scenario.Recorder = (*RunRecorder)(nil)

// StartRecording opens the ledger from cfg and starts a run. It returns nil,
// nil when reporting is disabled.
func StartRecording(ctx context.Context, cfg *config.Config) (*RunRecorder, error) {
	if !cfg.Report.Enabled {
		return nil, nil
	}
	store, err := Open(ctx, cfg.Report.Path)
	if err != nil {
		return nil, err
	}
	run, err := store.StartRun(ctx, cfg.Suite.Name, cfg.Browser.Engine, cfg.Target.BaseURL)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Info().Str("run", run.ID).Str("ledger", cfg.Report.Path).Msg("recording run")
	return &RunRecorder{
		store:       store,
		run:         run,
		metrics:     NewMetrics(cfg.Suite.Name),
		metricsFile: cfg.Report.MetricsFile,
	}, nil
}

func (r *RunRecorder) RunID() string { return r.run.ID }

func (r *RunRecorder) Record(o scenario.Outcome) error {
	r.metrics.Observe(o)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.store.AddResult(ctx, r.run.ID, o)
}

// Finish stamps the run, writes the metrics file when one is configured and
// closes the ledger.
func (r *RunRecorder) Finish(ctx context.Context) error {
	var errs []error
	if err := r.store.FinishRun(ctx, r.run.ID); err != nil {
		errs = append(errs, err)
	}
	if r.metricsFile != "" {
		if err := r.metrics.WriteFile(r.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close ledger: %w", err))
	}
	log.Info().Str("run", r.run.ID).Str("metrics", r.metricsFile).Msg("run recorded")
	return errors.Join(errs...)
}
