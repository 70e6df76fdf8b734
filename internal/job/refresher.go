package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Fragments is the subset of the dashboard controller the refresher
// drives. History is selection-driven and not part of the tick.
type Fragments interface {
	RefreshAll(ctx context.Context)
}

// Refresher re-fetches the timer-driven fragments on a fixed period.
// Each tick is independent; the next tick is the only retry mechanism.
type Refresher struct {
	tracer    trace.Tracer
	dashboard Fragments
	interval  time.Duration
}

func NewRefresher(tracer trace.Tracer, dashboard Fragments, intervalSecs int) *Refresher {
	return &Refresher{
		tracer:    tracer,
		dashboard: dashboard,
		interval:  time.Duration(intervalSecs) * time.Second,
	}
}

// Start blocks until ctx is cancelled, refreshing once immediately and
// then once per interval.
func (r *Refresher) Start(ctx context.Context) {
	log.Println("Dashboard refresher starting...")

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dashboard refresher stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	ctx, span := r.tracer.Start(ctx, "refresher.tick")
	defer span.End()
	r.dashboard.RefreshAll(ctx)
}
