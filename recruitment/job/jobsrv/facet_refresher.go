package jobsrv

import (
	"context"
	"fmt"

	"github.com/growindia/jobs/pkg/logx"
	"github.com/robfig/cron/v3"
)

// FacetRefresher re-warms the facet cache on a cron schedule
type FacetRefresher struct {
	cron    *cron.Cron
	service *JobService
	spec    string // cron spec, e.g. "@every 10m"
}

// NewFacetRefresher creates a refresher firing on the cron spec
func NewFacetRefresher(service *JobService, spec string) *FacetRefresher {
	return &FacetRefresher{
		cron:    cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		service: service,
		spec:    spec,
	}
}

// Start registers the job, starts the scheduler and warms the cache once
// without waiting for the first tick
func (r *FacetRefresher) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	logx.Infof("facet refresher started, spec: %s", r.spec)

	go r.run(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish
func (r *FacetRefresher) Stop() {
	<-r.cron.Stop().Done()
	logx.Info("facet refresher stopped")
}

func (r *FacetRefresher) run(ctx context.Context) {
	if err := r.service.RefreshFacets(ctx); err != nil {
		logx.Warnf("facet refresh failed: %v", err)
		return
	}
	logx.Debug("facets refreshed")
}

// cronLogger routes cron's logs through logx
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logx.With(keysAndValues...).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logx.With(keysAndValues...).Errorw(msg, "error", err)
}
