package resolver

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the resolver sweep on a fixed interval. The interval is a
// pacing knob, not a correctness parameter; every sweep is idempotent.
type Scheduler struct {
	UseCase  UseCase
	Interval time.Duration
}

func (s Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.UseCase.ResolveDue(ctx)
			if err != nil {
				log.Printf("battle resolver sweep: %v", err)
				continue
			}
			if report.Scanned > 0 {
				log.Printf("battle resolver: scanned=%d resolved=%d skipped=%d failed=%d",
					report.Scanned, report.Resolved, report.Skipped, report.Failed)
			}
		}
	}
}
