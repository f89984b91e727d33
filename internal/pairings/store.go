// Package pairings stores the match a user chose for each search target.
//
// Pairings are keyed by target: saving a target again replaces its earlier
// selection. Two stores are provided, an in-memory one that forgets
// everything on restart and a bbolt-backed one that persists to a file.
package pairings

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/agentstation/leimap/pkg/entities"
)

// Store persists pairings.
type Store interface {
	// Save records every valid pairing, skipping entries without a target or
	// selection, and returns the total number of stored pairings.
	Save(ctx context.Context, pairings []entities.Pairing) (int, error)
	// List returns stored pairings ordered by target.
	List(ctx context.Context) ([]entities.Pairing, error)
	// Reset removes every pairing.
	Reset(ctx context.Context) error
	// Close releases any underlying resources.
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entities.Match
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]entities.Match)}
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, pairings []entities.Pairing) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairings {
		if !p.Valid() {
			continue
		}
		m.items[p.Target] = *p.Selected
	}
	return len(m.items), nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]entities.Pairing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entities.Pairing, 0, len(m.items))
	for target, match := range m.items {
		out = append(out, entities.Pairing{Target: target, Selected: &match})
	}
	sortByTarget(out)
	return out, nil
}

// Reset implements Store.
func (m *Memory) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	clear(m.items)
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

func sortByTarget(p []entities.Pairing) {
	slices.SortFunc(p, func(a, b entities.Pairing) int {
		return cmp.Compare(a.Target, b.Target)
	})
}
