package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	s, err := cfg.Scenario()
	if err != nil {
		t.Fatalf("Scenario() error = %v", err)
	}
	if len(s.Agents) != 5 {
		t.Fatalf("got %d agents, want 5", len(s.Agents))
	}
	for i, a := range s.Agents {
		want := core.C(2, i+1)
		if a.Start != want {
			t.Errorf("agent %d start = %v, want %v", a.ID, a.Start, want)
		}
		// One sampled target plus the return to start.
		if len(a.Targets) != 2 || a.Targets[1] != a.Start {
			t.Errorf("agent %d targets = %v", a.ID, a.Targets)
		}
		if a.LoadDuration != 3 {
			t.Errorf("agent %d load = %g, want 3", a.ID, a.LoadDuration)
		}
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "port.yaml", `
port:
  rows: 3
  cols: 6
  terrain:
    - "..#..."
    - "......"
    - "......"
targets: [[0, 0], [2, 5]]
agents: 2
tasks: 2
load_duration: 0
time_unit: "250ms"
consistency: locked
max_replans: 8
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port.Rows != 3 || cfg.Port.Cols != 6 {
		t.Errorf("Port = %dx%d, want 3x6", cfg.Port.Rows, cfg.Port.Cols)
	}
	if cfg.TimeUnit != 250*time.Millisecond {
		t.Errorf("TimeUnit = %v, want 250ms", cfg.TimeUnit)
	}
	if cfg.ConsistencyLevel() != port.ConsistencyLocked {
		t.Errorf("ConsistencyLevel() = %v, want locked", cfg.ConsistencyLevel())
	}
	if cfg.MaxReplans != 8 {
		t.Errorf("MaxReplans = %d, want 8", cfg.MaxReplans)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Seed != 42 || cfg.Speed != 1 {
		t.Errorf("Seed, Speed = %d, %g; want defaults 42, 1", cfg.Seed, cfg.Speed)
	}

	terrain, err := cfg.Terrain()
	if err != nil {
		t.Fatalf("Terrain() error = %v", err)
	}
	if !terrain.IsBlocked(core.C(0, 2)) {
		t.Error("expected (0,2) blocked")
	}

	s, err := cfg.Scenario()
	if err != nil {
		t.Fatalf("Scenario() error = %v", err)
	}
	for _, a := range s.Agents {
		if a.LoadDuration != 0 {
			t.Errorf("agent %d load = %g, want 0", a.ID, a.LoadDuration)
		}
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "port.toml", `
targets = [[0, 1], [4, 8]]
agents = 2
tasks = 4
seed = 7
time_unit = "10ms"

[port]
rows = 5
cols = 10

[logging]
level = "warn"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agents != 2 || cfg.Tasks != 4 || cfg.Seed != 7 {
		t.Errorf("Agents, Tasks, Seed = %d, %d, %d", cfg.Agents, cfg.Tasks, cfg.Seed)
	}
	if cfg.TimeUnit != 10*time.Millisecond {
		t.Errorf("TimeUnit = %v, want 10ms", cfg.TimeUnit)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(layout.Targets) != 2 || layout.Targets[1] != core.C(4, 8) {
		t.Errorf("Targets = %v", layout.Targets)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("AGV_COUNT", "3")
	t.Setenv("AGV_MODE", "locked")
	path := writeConfig(t, "port.yml", `
agents: ${AGV_COUNT}
consistency: "${AGV_MODE}"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agents != 3 {
		t.Errorf("Agents = %d, want 3", cfg.Agents)
	}
	if cfg.Consistency != "locked" {
		t.Errorf("Consistency = %q, want locked", cfg.Consistency)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "port.json", `{}`, "unsupported config format"},
		{"bad yaml", "port.yaml", "agents: [", "parsing config file"},
		{"bad duration", "port.yaml", `time_unit: "soon"`, "time_unit"},
		{"zero agents", "port.yaml", "agents: 0", "agents must be positive"},
		{"crowded row", "port.yaml", "agents: 10", "do not fit"},
		{"target outside", "port.yaml", "targets: [[9, 9]]", "targets[0]"},
		{"target shape", "port.yaml", "targets: [[1]]", "[row, col]"},
		{"too many tasks", "port.yaml", "tasks: 50", "exceeds"},
		{"bad consistency", "port.yaml", "consistency: eventual", "consistency"},
		{"negative replans", "port.yaml", "max_replans: -1", "max_replans"},
		{"bad level", "port.yaml", "logging:\n  level: loud", "logging.level"},
		{"bad terrain size", "port.yaml", "port:\n  rows: 5\n  cols: 10\n  terrain: [\"...\"]", "port.terrain"},
		{"blocked target", "port.yaml", "port:\n  rows: 1\n  cols: 4\n  terrain: [\"#...\"]\nagents: 1\ntasks: 1\ntargets: [[0, 0]]", "blocked terrain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatalf("Load() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestSetTimeUnit(t *testing.T) {
	cfg := Default()
	if err := cfg.SetTimeUnit("5ms"); err != nil {
		t.Fatalf("SetTimeUnit() error = %v", err)
	}
	if cfg.TimeUnit != 5*time.Millisecond {
		t.Errorf("TimeUnit = %v", cfg.TimeUnit)
	}
	if err := cfg.SetTimeUnit("fast"); err == nil {
		t.Error("SetTimeUnit(fast) error = nil")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Agents != 5 {
		t.Errorf("Agents = %d, want default 5", cfg.Agents)
	}

	t.Setenv(EnvPath, writeConfig(t, "env.yaml", "agents: 2"))
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Agents != 2 {
		t.Errorf("Agents = %d, want 2 from %s", cfg.Agents, EnvPath)
	}
}
