package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/game"
	"github.com/pthm-cable/sph/sim"
	"github.com/pthm-cable/sph/term"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Named parameter preset (default, zero_gravity; empty = config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	terminal := flag.Bool("terminal", false, "Render in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in simulated seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot", "", "Directory for state snapshots; headless runs save one on exit")
	resume := flag.String("resume", "", "Resume from a snapshot file")
	seed := flag.Int64("seed", 0, "Lattice jitter seed (0 = use config)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks of this run, resumed ticks not counted (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal view
	// owns stdout, so it logs to a file in the output directory or nowhere.
	var logOut io.Writer = os.Stdout
	if *terminal {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "run.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	cfg, err := config.LoadPreset(*configPath, *preset)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Grid.Seed = *seed
		if err := cfg.Recompute(); err != nil {
			slog.Error("invalid config", "error", err)
			os.Exit(1)
		}
	}
	config.Set(cfg)

	opts := sim.Options{
		Config:         cfg,
		Resume:         *resume,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		SnapshotDir:    *snapshotDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	s, err := sim.New(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	var runErr error
	switch {
	case *headless:
		runErr = runHeadless(s, *maxTicks, *snapshotDir != "")
	case *terminal:
		runErr = runTerminal(s, cfg)
	default:
		runGraphical(s, cfg, *maxTicks)
	}

	if err := s.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// runHeadless steps until max ticks, a signal or a halt.
func runHeadless(s *sim.Sim, maxTicks uint64, snapshot bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation",
		"particles", s.Len(),
		"max_ticks", maxTicks,
		"steps_per_update", s.StepsPerUpdate(),
	)

	err := s.Run(ctx, maxTicks)
	if errors.Is(err, sim.ErrHalted) {
		slog.Error("simulation halted", "tick", s.Tick(), "error", err)
	} else if err != nil {
		slog.Error("simulation failed", "error", err)
	}

	if snapshot {
		if path, serr := s.SaveSnapshot(); serr != nil {
			slog.Error("failed to save snapshot", "error", serr)
		} else {
			slog.Info("snapshot saved", "path", path, "tick", s.Tick())
		}
	}

	slog.Info("headless run finished", "tick", s.Tick(), "sim_time", s.SimTime(),
		"degenerate", s.Diagnostics().Degenerate)
	return err
}

// runTerminal draws into the controlling terminal until quit or signal.
func runTerminal(s *sim.Sim, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to open terminal", "error", err)
		return err
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to init terminal", "error", err)
		return err
	}
	defer screen.Fini()

	app := term.NewApp(screen, s, cfg)
	return app.Run(ctx, cfg.Screen.TargetFPS)
}

// runGraphical opens a raylib window.
func runGraphical(s *sim.Sim, cfg *config.Config, maxTicks uint64) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGame(s, cfg)
	start := g.Tick()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && g.Tick()-start >= maxTicks {
			break
		}
	}
}
