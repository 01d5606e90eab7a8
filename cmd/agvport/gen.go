package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/agv-port/internal/config"
)

func newGenCmd() *cobra.Command {
	p := config.DefaultGenParams()
	var (
		outputDir string
		format    string
		scaling   bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate random port scenario files",
		Long: `Generates deterministic scenario files: targets on the quay rows, random
yard obstacles and agents parked on the middle row. With --scaling a sweep of
growing ports is written instead of a single file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "toml" {
				return fmt.Errorf("format must be yaml or toml, got %q", format)
			}
			params := []config.GenParams{p}
			if scaling {
				params = config.ScalingParams(p.Seed, p.ObstacleDensity)
			}
			for _, gp := range params {
				cfg, err := config.Generate(gp)
				if err != nil {
					return fmt.Errorf("%s: %w", gp.Name(), err)
				}
				path := filepath.Join(outputDir, gp.Name()+"."+format)
				if err := cfg.Save(path); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&p.Seed, "seed", p.Seed, "Random seed for deterministic generation")
	f.IntVar(&p.Rows, "rows", p.Rows, "Port rows")
	f.IntVar(&p.Cols, "cols", p.Cols, "Port columns")
	f.IntVar(&p.Agents, "agents", p.Agents, "Number of AGVs")
	f.IntVar(&p.Tasks, "tasks", p.Tasks, "Number of tasks, spread evenly over the AGVs")
	f.IntVar(&p.Targets, "targets", p.Targets, "Size of the target pool")
	f.Float64Var(&p.ObstacleDensity, "obstacles", p.ObstacleDensity, "Fraction of yard cells blocked (0-1)")
	f.StringVar(&p.Consistency, "consistency", p.Consistency, "Consistency written to the files (relaxed, locked)")
	f.StringVarP(&outputDir, "output", "o", "testdata", "Output directory")
	f.StringVar(&format, "format", "yaml", "File format (yaml, toml)")
	f.BoolVar(&scaling, "scaling", false, "Generate a sweep of growing ports")
	return cmd
}
