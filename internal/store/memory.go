package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sabbivikas/mi-amore/internal/errors"
)

// Memory keeps results in process. It is used when no Redis address is
// configured and in tests.
type Memory struct {
	mu      sync.Mutex
	keep    int
	results []Result
}

// NewMemory retains at most keep results; keep <= 0 uses MaxRecentLimit.
func NewMemory(keep int) *Memory {
	if keep <= 0 {
		keep = MaxRecentLimit
	}
	return &Memory{keep: keep}
}

func (m *Memory) Record(_ context.Context, result Result) error {
	if result.MatchID == "" {
		return errors.InvalidArgument(errMatchIDEmpty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = append(m.results, result)
	sort.SliceStable(m.results, func(i, j int) bool {
		return m.results[i].EndedAt.After(m.results[j].EndedAt)
	})
	if len(m.results) > m.keep {
		m.results = m.results[:m.keep]
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := min(clampLimit(limit), len(m.results))
	out := make([]Result, n)
	copy(out, m.results[:n])
	return out, nil
}
