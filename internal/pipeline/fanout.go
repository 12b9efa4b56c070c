package pipeline

import (
	"context"
	"errors"
	"fmt"

	"firestige.xyz/chatsniff/internal/config"
	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/internal/metrics"
	"firestige.xyz/chatsniff/pkg/plugin"
)

// Fanout delivers each event to every configured reporter.
type Fanout struct {
	reporters []plugin.Reporter
}

// BuildReporters instantiates and initializes the reporters named in cfgs.
func BuildReporters(cfgs []config.ReporterConfig) (*Fanout, error) {
	f := &Fanout{reporters: make([]plugin.Reporter, 0, len(cfgs))}
	for _, rc := range cfgs {
		factory, err := plugin.GetReporterFactory(rc.Type)
		if err != nil {
			return nil, err
		}
		r := factory()
		if err := r.Init(rc.Options); err != nil {
			return nil, fmt.Errorf("init reporter %s: %w", rc.Type, err)
		}
		f.reporters = append(f.reporters, r)
	}
	return f, nil
}

// NewFanout wraps already initialized reporters.
func NewFanout(reporters ...plugin.Reporter) *Fanout {
	return &Fanout{reporters: reporters}
}

// Start starts every reporter. Reporters started before a failure are stopped.
func (f *Fanout) Start(ctx context.Context) error {
	for i, r := range f.reporters {
		if err := r.Start(ctx); err != nil {
			for _, started := range f.reporters[:i] {
				_ = started.Stop(ctx)
			}
			return fmt.Errorf("start reporter %s: %w", r.Name(), err)
		}
	}
	return nil
}

// Report sends evt to all reporters. A failing reporter does not prevent
// delivery to the others.
func (f *Fanout) Report(ctx context.Context, evt *core.BroadcastEvent) error {
	var errs []error
	for _, r := range f.reporters {
		if err := r.Report(ctx, evt); err != nil {
			metrics.ReporterErrorsTotal.WithLabelValues(r.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Stop flushes then stops every reporter, collecting all errors.
func (f *Fanout) Stop(ctx context.Context) error {
	var errs []error
	for _, r := range f.reporters {
		if err := r.Flush(ctx); err != nil {
			log.GetLogger().WithError(err).WithField("reporter", r.Name()).Error("reporter flush failed")
			errs = append(errs, err)
		}
		if err := r.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop reporter %s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}
