// Command agvportvis runs an AGV port simulation in a live Gio viewer.
package main

import (
	"context"
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/agv-port/internal/config"
	"github.com/elektrokombinacija/agv-port/internal/logging"
	"github.com/elektrokombinacija/agv-port/internal/sim"
	"github.com/elektrokombinacija/agv-port/internal/vis"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

var (
	configPath string
	paused     bool

	rootCmd = &cobra.Command{
		Use:          "agvportvis",
		Short:        "Watch an AGV port simulation live",
		SilenceUsage: true,
		RunE:         runViewer,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Scenario file (.yaml, .yml or .toml); defaults to $AGVPORT_CONFIG or the built-in port")
	rootCmd.Flags().BoolVar(&paused, "paused", false, "Start paused; press Space to play")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	scenario, err := cfg.Scenario()
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	playback := state.NewPlayback()
	if paused {
		playback.Pause()
	}

	var st *state.State
	s, err := sim.NewSimulator(sim.SimulationConfig{
		Scenario: scenario,
		Clock:    playback.Clock(sim.NewRealClock(cfg.TimeUnit)),
		Observer: sim.Observers{
			sim.ObserverFunc(func(e sim.Event) { st.Observe(e) }),
			&sim.LogObserver{Logger: logger},
		},
		Consistency: cfg.ConsistencyLevel(),
		MaxReplans:  cfg.MaxReplans,
		Audit:       true,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	st = state.New(scenario, s.RunID().String(), cfg.Consistency)
	st.Playback = playback

	ctx, cancel := context.WithCancel(context.Background())

	window := new(app.Window)
	window.Option(
		app.Title(fmt.Sprintf("AGV Port %dx%d", cfg.Port.Rows, cfg.Port.Cols)),
		app.Size(unit.Dp(1400), unit.Dp(900)),
	)
	st.SetOnChange(window.Invalidate)

	go func() {
		report, err := s.Run(ctx)
		if report != nil && len(report.AuditConflicts) > 0 {
			logger.Warn("trajectory audit found conflicts", "count", len(report.AuditConflicts))
		}
		st.Finish(err)
	}()

	go func() {
		err := vis.NewApp(st).Run(window)
		cancel()
		if err != nil {
			logger.Error("viewer stopped", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}
