package core

import (
	"fmt"
	"math/rand"
)

// InitialCell returns the start cell of the i-th agent (0-based) out of n,
// evenly spaced along the middle row.
func InitialCell(rows, cols, i, n int) Cell {
	return Cell{Row: rows / 2, Col: (i + 1) * (cols / (n + 1))}
}

// SampleTargets draws k distinct targets from pool.
func SampleTargets(rng *rand.Rand, pool []Cell, k int) ([]Cell, error) {
	if k < 0 || k > len(pool) {
		return nil, fmt.Errorf("cannot sample %d targets from a pool of %d", k, len(pool))
	}
	perm := rng.Perm(len(pool))
	out := make([]Cell, k)
	for i := 0; i < k; i++ {
		out[i] = pool[perm[i]]
	}
	return out, nil
}

// AssignTargets gives each of n agents tasks/n sampled targets, bookended by a
// return to its start cell. The same seed always yields the same queues.
func AssignTargets(starts []Cell, pool []Cell, tasks int, seed int64) ([][]Cell, error) {
	n := len(starts)
	if n == 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(seed))
	perAgent := tasks / n
	queues := make([][]Cell, n)
	for i, start := range starts {
		sampled, err := SampleTargets(rng, pool, perAgent)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i+1, err)
		}
		queues[i] = append(sampled, start)
	}
	return queues, nil
}
