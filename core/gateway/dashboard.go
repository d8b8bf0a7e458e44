package gateway

import (
	"context"
	"sync"

	"sge-console/core/model"
	"sge-console/core/state"
)

type DashboardGateway struct {
	d      *deps
	bundle *Bundle
}

func (g *DashboardGateway) Stats(ctx context.Context) error {
	if err := g.d.refreshStats(ctx); err != nil {
		return g.d.fail(ctx, err)
	}
	return nil
}

// Load is the dashboard bulk load: stats, events and logs are fetched
// concurrently and each result replaces only its own cache slot, so the
// completions need no ordering. Failures are logged, never fatal.
func (g *DashboardGateway) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		g.d.quietFail(g.d.refreshStats(ctx), "dashboard stats")
	}()
	go func() {
		defer wg.Done()
		var events []model.Event
		if err := g.d.client.GetJSON(ctx, "/api/events", nil, &events); err != nil {
			g.d.quietFail(err, "dashboard events")
			return
		}
		g.d.store.Dispatch(state.EventsLoaded{Events: events})
	}()
	go func() {
		defer wg.Done()
		var logs []model.LogEntry
		if err := g.d.client.GetJSON(ctx, "/api/logs", nil, &logs); err != nil {
			g.d.quietFail(err, "dashboard logs")
			return
		}
		g.d.store.Dispatch(state.LogsLoaded{Logs: logs})
	}()
	wg.Wait()
}

func (d *deps) refreshStats(ctx context.Context) error {
	var stats model.DashboardStats
	if err := d.client.GetJSON(ctx, "/api/dashboard/stats", nil, &stats); err != nil {
		return err
	}
	d.store.Dispatch(state.StatsLoaded{Stats: stats})
	return nil
}
