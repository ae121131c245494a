package sim

import (
	"context"
	"log/slog"
)

// Run calls Update until ctx is done, maxTicks more ticks have run
// (0 = unlimited) or the run halts. The last update is shortened so the run
// stops exactly at the limit. Reaching maxTicks and cancellation are not
// errors.
func (s *Sim) Run(ctx context.Context, maxTicks uint64) error {
	end := s.tick + maxTicks
	for {
		select {
		case <-ctx.Done():
			slog.Info("run stopped", "tick", s.tick, "reason", ctx.Err())
			return nil
		default:
		}

		n := s.stepsPerUpdate
		if maxTicks > 0 {
			n = int(min(uint64(n), end-s.tick))
		}
		if err := s.update(n); err != nil {
			return err
		}

		if maxTicks > 0 && s.tick >= end {
			slog.Info("max ticks reached", "tick", s.tick, "ran", maxTicks)
			return nil
		}
	}
}
