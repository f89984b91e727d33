package testhelper

import (
	"context"
	"strings"
	"sync"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
)

// Memory is an in-memory registry for tests above the HTTP layer.
// Populate it with Add, Link, Ultimate and Suggest before use; lookups are
// safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	records     map[string]*entities.Record
	parents     map[string]string
	children    map[string][]string
	ultimate    map[string][]entities.Ref
	suggestions map[string][]string
	completions map[string][]entities.Completion

	calls map[string]int
}

// NewMemory returns an empty registry.
func NewMemory() *Memory {
	return &Memory{
		records:     map[string]*entities.Record{},
		parents:     map[string]string{},
		children:    map[string][]string{},
		ultimate:    map[string][]entities.Ref{},
		suggestions: map[string][]string{},
		completions: map[string][]entities.Completion{},
		calls:       map[string]int{},
	}
}

// Add registers a record with the given name and headquarters country.
func (m *Memory) Add(lei, name, country string) *Memory {
	addr := entities.Address{Lines: []string{"1 Main Street"}, City: "Springfield", Country: country}
	m.records[lei] = &entities.Record{
		LEI:                 lei,
		LegalName:           name,
		Status:              "ACTIVE",
		Jurisdiction:        country,
		LegalAddress:        addr,
		HeadquartersAddress: addr,
		SPGlobalIDs:         []string{"sp-" + lei},
	}
	return m
}

// Link makes parent the direct parent of each child.
func (m *Memory) Link(parent string, children ...string) *Memory {
	for _, c := range children {
		m.parents[c] = parent
	}
	m.children[parent] = append(m.children[parent], children...)
	return m
}

// Ultimate sets the ultimate-children listing of root.
func (m *Memory) Ultimate(root string, leis ...string) *Memory {
	refs := make([]entities.Ref, len(leis))
	for i, lei := range leis {
		refs[i] = entities.Ref{LEI: lei}
		if rec, ok := m.records[lei]; ok {
			refs[i].Name = rec.LegalName
		}
	}
	m.ultimate[root] = refs
	return m
}

// Suggest sets the autocompletions for query, in order, and links each
// suggested name to the LEI given in leis. Names without an LEI stay
// unresolved.
func (m *Memory) Suggest(query string, leis map[string]string, names ...string) *Memory {
	m.suggestions[query] = names
	for _, name := range names {
		m.completions[name] = []entities.Completion{{Value: name, LEI: leis[name]}}
	}
	return m
}

// Calls returns how often method was called with key.
func (m *Memory) Calls(method, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method+":"+key]
}

func (m *Memory) count(method, key string) {
	m.mu.Lock()
	m.calls[method+":"+key]++
	m.mu.Unlock()
}

// Entity returns the registered record for lei.
func (m *Memory) Entity(_ context.Context, lei string) (*entities.Record, error) {
	m.count("entity", lei)
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[lei]
	if !ok {
		return nil, errors.NewNotFoundError("LEI record", lei)
	}
	return rec, nil
}

// DirectParent returns the linked parent of lei, if any.
func (m *Memory) DirectParent(_ context.Context, lei string) (*entities.Ref, error) {
	m.count("parent", lei)
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, ok := m.parents[lei]
	if !ok {
		return nil, nil
	}
	return &entities.Ref{LEI: parent}, nil
}

// DirectChildren returns the children linked under lei, in link order.
func (m *Memory) DirectChildren(_ context.Context, lei string) ([]entities.Ref, error) {
	m.count("children", lei)
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]entities.Ref, 0, len(m.children[lei]))
	for _, c := range m.children[lei] {
		refs = append(refs, entities.Ref{LEI: c})
	}
	return refs, nil
}

// UltimateChildren returns the listing set with Ultimate.
func (m *Memory) UltimateChildren(_ context.Context, lei string) ([]entities.Ref, error) {
	m.count("ultimate", lei)
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Ref(nil), m.ultimate[lei]...), nil
}

// Autocomplete returns the suggestions set with Suggest. Queries match
// case-insensitively.
func (m *Memory) Autocomplete(_ context.Context, query string) ([]string, error) {
	m.count("autocomplete", query)
	m.mu.Lock()
	defer m.mu.Unlock()
	for q, names := range m.suggestions {
		if strings.EqualFold(q, query) {
			return append([]string(nil), names...), nil
		}
	}
	return []string{}, nil
}

// FuzzyComplete returns the completion linked to a suggested name.
func (m *Memory) FuzzyComplete(_ context.Context, query string) ([]entities.Completion, error) {
	m.count("fuzzy", query)
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Completion(nil), m.completions[query]...), nil
}
