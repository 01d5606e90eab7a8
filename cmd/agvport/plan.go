package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/agv-port/internal/config"
	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/logging"
	"github.com/elektrokombinacija/agv-port/internal/sim"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print every AGV's route on the empty port without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			scenario, err := cfg.Scenario()
			if err != nil {
				return fmt.Errorf("building scenario: %w", err)
			}
			s, err := sim.NewSimulator(sim.SimulationConfig{
				Scenario: scenario,
				Logger:   logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}

			routes, planErr := s.Plan()
			printRoutes(cmd.OutOrStdout(), scenario, routes)
			return planErr
		},
	}
}

func printRoutes(w io.Writer, scenario *core.Scenario, routes map[core.AgentID]core.Path) {
	fmt.Fprintln(w, scenario.Terrain.String())

	ids := make([]core.AgentID, 0, len(routes))
	for id := range routes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bold := color.New(color.Bold)
	for _, id := range ids {
		agent := scenario.AgentByID(id)
		route := routes[id]
		bold.Fprintf(w, "AGV %d", id)
		fmt.Fprintf(w, " targets %v, %d steps, distance %.2f\n", agent.Targets, len(route)-1, route.Length())
		fmt.Fprintf(w, "  %v\n", route)
	}
}
