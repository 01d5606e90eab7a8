// Package bench runs batches of port scenarios under each consistency mode
// and collects comparable metrics.
package bench

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/agv-port/internal/config"
	"github.com/elektrokombinacija/agv-port/internal/port"
	"github.com/elektrokombinacija/agv-port/internal/sim"
)

// Case is one scenario to benchmark.
type Case struct {
	Name   string
	Config *config.Config
}

// Result stores the outcome of a single run.
type Result struct {
	Timestamp   string  `json:"timestamp"`
	Revision    string  `json:"revision"`
	GoVersion   string  `json:"go_version"`
	OS          string  `json:"os"`
	Arch        string  `json:"arch"`
	Scenario    string  `json:"scenario"`
	GridSize    string  `json:"grid_size"`
	Agents      int     `json:"agents"`
	Tasks       int     `json:"tasks"`
	Consistency string  `json:"consistency"`
	RunID       string  `json:"run_id"`
	WallMs      float64 `json:"wall_ms"`
	SimTime     float64 `json:"sim_time"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
	Steps       int     `json:"steps"`
	Conflicts   int     `json:"conflicts"`
	Replans     int     `json:"replans"`
	Loads       int     `json:"loads"`
	Distance    float64 `json:"distance"`
	Audit       int     `json:"audit_conflicts"`
}

// Options control a benchmark batch.
type Options struct {
	// Modes to run every case under; both when empty.
	Modes []port.Consistency
	// TimeUnit overrides each case's time unit when positive.
	TimeUnit time.Duration
	// Timeout per run; zero means none.
	Timeout time.Duration
	// MaxReplans applies to cases that leave it unlimited.
	MaxReplans int
	// Parallel bounds concurrent runs; GOMAXPROCS when zero.
	Parallel int
	Logger   *slog.Logger
	// Progress is called after each run, serialized.
	Progress func(done, total int, r Result)
}

// Run executes every case under every mode. Failed runs are recorded in
// their Result; the returned error is only set when ctx ends the batch.
// Results are ordered by case, then mode.
func Run(ctx context.Context, cases []Case, opts Options) ([]Result, error) {
	modes := opts.Modes
	if len(modes) == 0 {
		modes = []port.Consistency{port.ConsistencyRelaxed, port.ConsistencyLocked}
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	total := len(cases) * len(modes)
	results := make([]Result, total)
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, c := range cases {
		for j, mode := range modes {
			idx := i*len(modes) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r := runOne(gctx, c, mode, opts, logger)
				results[idx] = r

				mu.Lock()
				done++
				if opts.Progress != nil {
					opts.Progress(done, total, r)
				}
				mu.Unlock()
				return ctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(ctx context.Context, c Case, mode port.Consistency, opts Options, logger *slog.Logger) Result {
	cfg := c.Config
	r := Result{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Revision:    revision(),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Scenario:    c.Name,
		GridSize:    fmt.Sprintf("%dx%d", cfg.Port.Rows, cfg.Port.Cols),
		Agents:      cfg.Agents,
		Tasks:       cfg.Tasks,
		Consistency: mode.String(),
	}

	scenario, err := cfg.Scenario()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	unit := cfg.TimeUnit
	if opts.TimeUnit > 0 {
		unit = opts.TimeUnit
	}
	maxReplans := cfg.MaxReplans
	if maxReplans == 0 {
		maxReplans = opts.MaxReplans
	}

	s, err := sim.NewSimulator(sim.SimulationConfig{
		Scenario:    scenario,
		Clock:       sim.NewRealClock(unit),
		Consistency: mode,
		MaxReplans:  maxReplans,
		Audit:       true,
		Logger:      logger.With("scenario", c.Name),
	})
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.RunID = s.RunID().String()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	report, err := s.Run(ctx)
	if report != nil {
		r.WallMs = float64(report.Elapsed.Microseconds()) / 1000.0
		r.SimTime = report.SimTime
		r.Steps = report.TotalSteps
		r.Conflicts = report.TotalConflicts
		r.Replans = report.TotalReplans
		r.Loads = report.TotalLoads
		r.Distance = report.TotalDistance
		r.Audit = len(report.AuditConflicts)
	}
	switch {
	case err == nil:
		r.Success = true
	case errors.Is(err, context.DeadlineExceeded):
		r.Error = "timeout"
	default:
		r.Error = err.Error()
	}
	return r
}

var (
	revisionOnce sync.Once
	revisionStr  = "unknown"
)

func revision() string {
	revisionOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				revisionStr = s.Value[:7]
			}
		}
	})
	return revisionStr
}

// LoadCases loads every scenario file (.yaml, .yml, .toml) in dir, sorted by name.
func LoadCases(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory: %w", err)
	}
	var cases []Case
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".toml") {
			continue
		}
		cfg, err := config.Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		cases = append(cases, Case{Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), Config: cfg})
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

var csvHeader = []string{
	"timestamp", "revision", "go_version", "os", "arch",
	"scenario", "grid_size", "agents", "tasks", "consistency", "run_id",
	"wall_ms", "sim_time", "success", "error",
	"steps", "conflicts", "replans", "loads", "distance", "audit_conflicts",
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.Revision, r.GoVersion, r.OS, r.Arch,
			r.Scenario, r.GridSize, strconv.Itoa(r.Agents), strconv.Itoa(r.Tasks), r.Consistency, r.RunID,
			fmt.Sprintf("%.3f", r.WallMs), fmt.Sprintf("%.3f", r.SimTime), strconv.FormatBool(r.Success), r.Error,
			strconv.Itoa(r.Steps), strconv.Itoa(r.Conflicts), strconv.Itoa(r.Replans), strconv.Itoa(r.Loads),
			fmt.Sprintf("%.3f", r.Distance), strconv.Itoa(r.Audit),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes results to path as CSV or, for .json, as an indented array.
func WriteFile(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, strings.EqualFold(filepath.Ext(path), ".json"), results)
}

// writeAndClose encodes results into wc and closes it. A close failure is
// returned when encoding succeeded, since buffered data may be lost.
func writeAndClose(wc io.WriteCloser, asJSON bool, results []Result) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing results: %w", cerr)
		}
	}()

	if asJSON {
		enc := json.NewEncoder(wc)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return WriteCSV(wc, results)
}

// Summary aggregates results per consistency mode.
type Summary struct {
	Consistency   string
	Runs          int
	Successes     int
	AvgWallMs     float64 // Over successful runs
	AvgSimTime    float64 // Over successful runs
	Conflicts     int
	Replans       int
	AuditFindings int
}

// Summarize aggregates results by consistency mode, sorted by mode name.
func Summarize(results []Result) []Summary {
	byMode := make(map[string]*Summary)
	for _, r := range results {
		m, ok := byMode[r.Consistency]
		if !ok {
			m = &Summary{Consistency: r.Consistency}
			byMode[r.Consistency] = m
		}
		m.Runs++
		m.Conflicts += r.Conflicts
		m.Replans += r.Replans
		m.AuditFindings += r.Audit
		if r.Success {
			m.Successes++
			m.AvgWallMs += r.WallMs
			m.AvgSimTime += r.SimTime
		}
	}

	out := make([]Summary, 0, len(byMode))
	for _, m := range byMode {
		if m.Successes > 0 {
			m.AvgWallMs /= float64(m.Successes)
			m.AvgSimTime /= float64(m.Successes)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Consistency < out[j].Consistency })
	return out
}

// PrintSummary renders summaries as a table.
func PrintSummary(w io.Writer, summaries []Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONSISTENCY\tRUNS\tSUCCESS\tAVG WALL(ms)\tAVG SIM\tCONFLICTS\tREPLANS\tAUDIT")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%d\t%d\t%d\n",
			s.Consistency, s.Runs, s.Successes, s.AvgWallMs, s.AvgSimTime, s.Conflicts, s.Replans, s.AuditFindings)
	}
	tw.Flush()
}
