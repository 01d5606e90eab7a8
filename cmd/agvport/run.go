package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/agv-port/internal/config"
	"github.com/elektrokombinacija/agv-port/internal/logging"
	"github.com/elektrokombinacija/agv-port/internal/sim"
)

type runOptions struct {
	logLevel    string
	logFormat   string
	timeUnit    string
	consistency string
	maxReplans  int
	seed        int64
	reportPath  string
	audit       bool
	quiet       bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation until every AGV has visited its targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}
			return runSimulation(cmd, cfg, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	f.StringVar(&opts.timeUnit, "time-unit", "", "Wall-clock length of one time unit, e.g. 100ms")
	f.StringVar(&opts.consistency, "consistency", "", "Check-then-lock consistency (relaxed, locked)")
	f.IntVar(&opts.maxReplans, "max-replans", 0, "Consecutive replans on one step before failing; 0 is unlimited")
	f.Int64Var(&opts.seed, "seed", 0, "Seed for target assignment")
	f.StringVar(&opts.reportPath, "report", "", "Write a JSON report to this file")
	f.BoolVar(&opts.audit, "audit", false, "Check recorded trajectories for vertex and swap conflicts")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Skip banner and summary")
	return cmd
}

// loadConfig loads the scenario and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if f.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if f.Changed("time-unit") {
		if err := cfg.SetTimeUnit(opts.timeUnit); err != nil {
			return nil, err
		}
	}
	if f.Changed("consistency") {
		cfg.Consistency = opts.consistency
	}
	if f.Changed("max-replans") {
		cfg.MaxReplans = opts.maxReplans
	}
	if f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, cfg *config.Config, opts *runOptions) error {
	out := cmd.OutOrStdout()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	scenario, err := cfg.Scenario()
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	observer := &sim.LogObserver{Logger: logger}
	s, err := sim.NewSimulator(sim.SimulationConfig{
		Scenario:    scenario,
		Clock:       sim.NewRealClock(cfg.TimeUnit),
		Observer:    observer,
		Consistency: cfg.ConsistencyLevel(),
		MaxReplans:  cfg.MaxReplans,
		Audit:       opts.audit,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	observer.Port = s.Port()

	if !opts.quiet {
		printBanner(out, cfg, s.RunID().String())
	}

	report, runErr := s.Run(cmd.Context())

	if !opts.quiet && report != nil {
		printSummary(out, report)
	}
	if opts.reportPath != "" && report != nil {
		if err := report.Export(opts.reportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", "path", opts.reportPath)
	}
	return runErr
}

func printBanner(w io.Writer, cfg *config.Config, runID string) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Fprint(w, banner)
	gray.Fprintf(w, "    version: %s\n\n", version)

	source := configPath
	if source == "" {
		source = os.Getenv(config.EnvPath)
	}
	if source == "" {
		source = "(built-in)"
	}
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Config:      %s\n", source)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Port:        %dx%d, %d AGVs, %d tasks\n", cfg.Port.Rows, cfg.Port.Cols, cfg.Agents, cfg.Tasks)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Time unit:   %s\n", cfg.TimeUnit)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Consistency: %s\n", cfg.Consistency)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Run:         %s\n\n", runID)
}

func printSummary(w io.Writer, r *sim.Report) {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGV\tSTEPS\tDISTANCE\tCONFLICTS\tREPLANS\tLOADS\tFINISHED")
	for _, a := range r.Agents {
		finished := "-"
		if a.FinishedAt > 0 {
			finished = fmt.Sprintf("%.2f", a.FinishedAt)
		}
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%d\t%d\t%d\t%s\n", a.Agent, a.Steps, a.Distance, a.Conflicts, a.Replans, a.Loads, finished)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nelapsed %.2f time units (%s)\n", r.SimTime, r.Elapsed)
	if len(r.AuditConflicts) > 0 {
		yellow := color.New(color.FgYellow)
		yellow.Fprintf(w, "audit: %d trajectory conflicts\n", len(r.AuditConflicts))
		for _, c := range r.AuditConflicts {
			kind := "vertex"
			if c.IsEdge {
				kind = "swap"
			}
			fmt.Fprintf(w, "  %s AGV %d / AGV %d at %v, t=%.2f..%.2f\n", kind, c.Agent1, c.Agent2, c.Cell, c.Time, c.EndTime)
		}
	}
	if r.Failed {
		color.New(color.FgRed, color.Bold).Fprintf(w, "run failed: %s\n", r.Error)
	} else {
		color.New(color.FgGreen).Fprintln(w, "all targets visited")
	}
}
