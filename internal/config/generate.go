package config

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/agv-port/internal/algo"
	"github.com/elektrokombinacija/agv-port/internal/core"
)

// maxGenerateAttempts bounds how many obstacle layouts are drawn before
// Generate gives up on finding a connected one.
const maxGenerateAttempts = 100

// GenParams defines parameters for scenario generation.
type GenParams struct {
	Seed    int64
	Rows    int
	Cols    int
	Agents  int
	Tasks   int
	Targets int // Size of the target pool, drawn from the quay rows
	// Fraction of yard cells (not on the quay or parking rows) that are blocked.
	ObstacleDensity float64
	Consistency     string
}

// DefaultGenParams mirrors the stock port.
func DefaultGenParams() GenParams {
	return GenParams{Seed: 42, Rows: 5, Cols: 10, Agents: 5, Tasks: 5, Targets: 6, Consistency: "relaxed"}
}

// Name returns a file-friendly scenario name.
func (p GenParams) Name() string {
	return fmt.Sprintf("port_%dx%d_a%d_t%d_s%d", p.Rows, p.Cols, p.Agents, p.Tasks, p.Seed)
}

// ScalingParams returns a sweep of growing ports with proportional fleets,
// all sharing the same seed and obstacle density.
func ScalingParams(seed int64, density float64) []GenParams {
	sizes := []struct{ rows, cols, agents int }{
		{5, 10, 3}, {5, 10, 5}, {9, 20, 8}, {15, 40, 16}, {25, 80, 32},
	}
	out := make([]GenParams, len(sizes))
	for i, s := range sizes {
		out[i] = GenParams{
			Seed:            seed,
			Rows:            s.rows,
			Cols:            s.cols,
			Agents:          s.agents,
			Tasks:           2 * s.agents,
			Targets:         s.cols,
			ObstacleDensity: density,
			Consistency:     "locked",
		}
	}
	return out
}

// Generate draws a random port: targets along the top and bottom quay rows,
// obstacles scattered over the yard in between, agents parked on the middle
// row. Layouts where some target or start is cut off are redrawn. The same
// params always produce the same config.
func Generate(p GenParams) (*Config, error) {
	if p.Rows < 3 || p.Cols < 2 {
		return nil, fmt.Errorf("port must be at least 3x2, got %dx%d", p.Rows, p.Cols)
	}
	if p.ObstacleDensity < 0 || p.ObstacleDensity >= 1 {
		return nil, fmt.Errorf("obstacle density must be in [0, 1), got %g", p.ObstacleDensity)
	}
	if p.Agents <= 0 || p.Cols/(p.Agents+1) == 0 {
		return nil, fmt.Errorf("%d agents do not fit on a row of %d cells", p.Agents, p.Cols)
	}

	quay := make([]core.Cell, 0, 2*p.Cols)
	for c := 0; c < p.Cols; c++ {
		quay = append(quay, core.C(0, c), core.C(p.Rows-1, c))
	}
	if p.Targets <= 0 || p.Targets > len(quay) {
		return nil, fmt.Errorf("target pool must be in [1, %d], got %d", len(quay), p.Targets)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	targets, err := core.SampleTargets(rng, quay, p.Targets)
	if err != nil {
		return nil, err
	}
	starts := make([]core.Cell, p.Agents)
	for i := range starts {
		starts[i] = core.InitialCell(p.Rows, p.Cols, i, p.Agents)
	}
	parking := p.Rows / 2

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		grid := core.NewGrid(p.Rows, p.Cols)
		for r := 1; r < p.Rows-1; r++ {
			if r == parking {
				continue
			}
			for c := 0; c < p.Cols; c++ {
				if rng.Float64() < p.ObstacleDensity {
					grid.Block(core.C(r, c))
				}
			}
		}
		if !connected(grid, starts, targets) {
			continue
		}

		cfg := Default()
		cfg.Port = PortConfig{Rows: p.Rows, Cols: p.Cols}
		if grid.FreeCells() < p.Rows*p.Cols {
			cfg.Port.Terrain = strings.Split(grid.String(), "\n")
		}
		cfg.Targets = make([][]int, len(targets))
		for i, t := range targets {
			cfg.Targets[i] = []int{t.Row, t.Col}
		}
		cfg.Agents = p.Agents
		cfg.Tasks = p.Tasks
		cfg.Seed = p.Seed
		if p.Consistency != "" {
			cfg.Consistency = p.Consistency
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("no connected layout after %d attempts at density %g", maxGenerateAttempts, p.ObstacleDensity)
}

// connected reports whether every start reaches every target and every
// other start.
func connected(grid core.Grid, starts, targets []core.Cell) bool {
	from := starts[0]
	for _, c := range append(append([]core.Cell{}, starts[1:]...), targets...) {
		if _, ok := algo.Search(grid, from, c); !ok {
			return false
		}
	}
	return true
}

// Save writes the config as YAML or TOML, chosen by extension.
func (c *Config) Save(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		data = out
	case ".toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(c); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		data = []byte(b.String())
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
