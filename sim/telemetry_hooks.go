package sim

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/sph/telemetry"
)

// flushTelemetry closes the current stats window.
func (s *Sim) flushTelemetry() {
	s.particles = s.solver.Store().CopyTo(s.particles)
	stats := s.collector.Flush(int64(s.tick), s.particles, s.foam, s.solver.Params().Mass)
	perfStats := s.perfCollector.Stats()
	s.lastStats = stats
	s.warned = false

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "tick", s.tick, slog.Any("perf", perfStats))
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// SaveSnapshot writes the current state to the snapshot directory, falling
// back to <output-dir>/snapshots.
func (s *Sim) SaveSnapshot() (string, error) {
	dir := s.snapshotDir
	if dir == "" {
		dir = s.outputManager.SnapshotDir()
	}
	if dir == "" {
		return "", errors.New("no snapshot directory configured")
	}

	snapshot := telemetry.NewSnapshot(s.tick, s.solver.Params(), s.solver.Store().CopyTo(nil))
	path, err := telemetry.SaveSnapshot(snapshot, dir)
	if err != nil {
		return "", err
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
	return path, nil
}
