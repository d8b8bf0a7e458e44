// Package refresh re-runs the dashboard bulk load on a cron schedule so
// long-lived consoles do not drift from the backend. It is opt-in via
// configuration and stops itself whenever no session is active.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"sge-console/config"
	"sge-console/core/gateway"
	"sge-console/core/state"
	"sge-console/core/utils"
)

type Refresher struct {
	schedule cron.Schedule
	bundle   *gateway.Bundle
	store    *state.Store
	logger   *utils.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg *config.AppConfig, bundle *gateway.Bundle, store *state.Store, logger *utils.Logger) (*Refresher, error) {
	if !cfg.Refresh.Enabled {
		return nil, nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sch, err := parser.Parse(cfg.Refresh.Cron)
	if err != nil {
		return nil, err
	}
	return &Refresher{schedule: sch, bundle: bundle, store: store, logger: logger}, nil
}

// Start launches the tick loop. Safe to call on a nil receiver so the
// disabled case needs no branching at the call site.
func (r *Refresher) Start(ctx context.Context) {
	if r == nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.run(ctx)
}

func (r *Refresher) Stop() {
	if r == nil || r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)
	for {
		next := r.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if r.store.Identity() == nil {
			continue
		}
		r.logger.Printf("scheduled dashboard refresh")
		r.bundle.LoadDashboard(ctx)
	}
}
