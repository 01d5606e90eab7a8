package sim

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/agv-port/internal/algo"
	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

// AgentReport is one agent's row in a Report.
type AgentReport struct {
	Agent core.AgentID `json:"agent"`
	AgentStats
}

// Report summarizes a run.
type Report struct {
	RunID       string        `json:"run_id"`
	Consistency string        `json:"consistency"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	SimTime     float64       `json:"sim_time"` // Time units

	Agents []AgentReport `json:"agents"`

	TotalSteps     int     `json:"total_steps"`
	TotalConflicts int     `json:"total_conflicts"`
	TotalReplans   int     `json:"total_replans"`
	TotalLoads     int     `json:"total_loads"`
	TotalDistance  float64 `json:"total_distance"`

	// Trajectory audit, only filled when requested
	AuditConflicts []*algo.Conflict `json:"audit_conflicts,omitempty"`

	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

func newReport(id uuid.UUID, c port.Consistency, start, end time.Time, clock Clock) *Report {
	return &Report{
		RunID:       id.String(),
		Consistency: c.String(),
		StartTime:   start,
		EndTime:     end,
		Elapsed:     end.Sub(start),
		SimTime:     clock.Units(end.Sub(start)),
	}
}

func (r *Report) addAgent(id core.AgentID, st AgentStats) {
	r.Agents = append(r.Agents, AgentReport{Agent: id, AgentStats: st})
	sort.Slice(r.Agents, func(i, j int) bool { return r.Agents[i].Agent < r.Agents[j].Agent })

	r.TotalSteps += st.Steps
	r.TotalConflicts += st.Conflicts
	r.TotalReplans += st.Replans
	r.TotalLoads += st.Loads
	r.TotalDistance += st.Distance
}

// Agent returns the row for id, if present.
func (r *Report) Agent(id core.AgentID) (AgentReport, bool) {
	for _, a := range r.Agents {
		if a.Agent == id {
			return a, true
		}
	}
	return AgentReport{}, false
}

// Export writes the report to a JSON file.
func (r *Report) Export(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
