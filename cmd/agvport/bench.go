package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/agv-port/internal/bench"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

func newBenchCmd() *cobra.Command {
	var (
		inputDir   string
		outputPath string
		modes      string
		opts       bench.Options
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run every scenario in a directory under each consistency mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			for _, m := range strings.Split(modes, ",") {
				level, err := port.ParseConsistency(strings.TrimSpace(m))
				if err != nil {
					return err
				}
				opts.Modes = append(opts.Modes, level)
			}

			cases, err := bench.LoadCases(inputDir)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				return fmt.Errorf("no scenario files in %s; run 'agvport gen --scaling -o %s' first", inputDir, inputDir)
			}
			fmt.Fprintf(out, "Running benchmarks: %d scenarios x %d modes = %d runs\n\n",
				len(cases), len(opts.Modes), len(cases)*len(opts.Modes))

			opts.Progress = func(done, total int, r bench.Result) {
				if !verbose {
					fmt.Fprintf(out, "\r[%d/%d] Running...", done, total)
					return
				}
				status := "OK"
				if !r.Success {
					status = "FAILED: " + r.Error
				}
				fmt.Fprintf(out, "[%d/%d] %s / %s: %s (%.2fms, %d conflicts)\n",
					done, total, r.Scenario, r.Consistency, status, r.WallMs, r.Conflicts)
			}

			results, runErr := bench.Run(cmd.Context(), cases, opts)
			fmt.Fprintln(out)

			if err := bench.WriteFile(outputPath, results); err != nil {
				return fmt.Errorf("writing results: %w", err)
			}
			fmt.Fprintf(out, "Results written to: %s\n\n", outputPath)
			bench.PrintSummary(out, bench.Summarize(results))
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputDir, "input", "i", "testdata", "Directory of scenario files")
	f.StringVarP(&outputPath, "output", "o", "evidence/benchmark_results.csv", "Output file (.csv or .json)")
	f.StringVar(&modes, "modes", "relaxed,locked", "Comma-separated consistency modes")
	f.DurationVar(&opts.TimeUnit, "time-unit", time.Millisecond, "Time unit for every run")
	f.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "Timeout per run")
	f.IntVar(&opts.MaxReplans, "max-replans", 0, "Replan bound for scenarios that leave it unlimited")
	f.IntVar(&opts.Parallel, "parallel", 0, "Concurrent runs; GOMAXPROCS when 0")
	f.BoolVarP(&verbose, "verbose", "v", false, "Print every run")
	return cmd
}
