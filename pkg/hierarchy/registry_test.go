package hierarchy_test

import (
	"context"
	"sync"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
)

// fakeRegistry is an in-memory Registry with per-LEI failure injection.
type fakeRegistry struct {
	mu sync.Mutex

	records  map[string]*entities.Record
	parents  map[string]string
	children map[string][]string
	ultimate map[string][]entities.Ref

	entityErr   map[string]error
	parentErr   map[string]error
	childrenErr map[string]error
	ultimateErr error

	entityCalls   map[string]int
	childrenCalls map[string]int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		records:       map[string]*entities.Record{},
		parents:       map[string]string{},
		children:      map[string][]string{},
		ultimate:      map[string][]entities.Ref{},
		entityErr:     map[string]error{},
		parentErr:     map[string]error{},
		childrenErr:   map[string]error{},
		entityCalls:   map[string]int{},
		childrenCalls: map[string]int{},
	}
}

// entity registers a record named "<lei> Inc" headquartered in country.
func (f *fakeRegistry) entity(lei, country string) *fakeRegistry {
	f.records[lei] = &entities.Record{
		LEI:                 lei,
		LegalName:           lei + " Inc",
		HeadquartersAddress: entities.Address{Country: country},
		SPGlobalIDs:         []string{"sp-" + lei},
	}
	return f
}

// link records parent as the direct parent of every child and lists the
// children under parent in order.
func (f *fakeRegistry) link(parent string, children ...string) *fakeRegistry {
	for _, c := range children {
		f.parents[c] = parent
	}
	f.children[parent] = append(f.children[parent], children...)
	return f
}

func (f *fakeRegistry) Entity(_ context.Context, lei string) (*entities.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entityCalls[lei]++
	if err := f.entityErr[lei]; err != nil {
		return nil, err
	}
	rec, ok := f.records[lei]
	if !ok {
		return nil, errors.NewNotFoundError("entity", lei)
	}
	return rec, nil
}

func (f *fakeRegistry) DirectParent(_ context.Context, lei string) (*entities.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.parentErr[lei]; err != nil {
		return nil, err
	}
	p, ok := f.parents[lei]
	if !ok {
		return nil, nil
	}
	return &entities.Ref{LEI: p, Name: p + " Inc"}, nil
}

func (f *fakeRegistry) DirectChildren(_ context.Context, lei string) ([]entities.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.childrenCalls[lei]++
	if err := f.childrenErr[lei]; err != nil {
		return nil, err
	}
	var out []entities.Ref
	for _, c := range f.children[lei] {
		out = append(out, entities.Ref{LEI: c, Name: c + " Inc"})
	}
	return out, nil
}

func (f *fakeRegistry) UltimateChildren(_ context.Context, lei string) ([]entities.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ultimateErr != nil {
		return nil, f.ultimateErr
	}
	return f.ultimate[lei], nil
}

func (f *fakeRegistry) entityCallCount(lei string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entityCalls[lei]
}

var errUpstream = errors.NewAPIError("gleif", 503, "service unavailable")
