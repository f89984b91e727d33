// Package appcontext provides a test double for application.Application.
package appcontext

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/leimap"
	"github.com/agentstation/leimap/cmd/application"
	"github.com/agentstation/leimap/internal/pairings"
)

var _ application.Application = (*Mock)(nil)

// Mock provides a mock implementation of application.Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ClientFunc       func(...leimap.Option) (leimap.Client, error)
	PairingsFunc     func() (pairings.Store, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string

	once  sync.Once
	store pairings.Store
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(opts ...leimap.Option) (leimap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return nil, nil
}

// Pairings returns a store using the mock function or a shared in-memory store.
func (m *Mock) Pairings() (pairings.Store, error) {
	if m.PairingsFunc != nil {
		return m.PairingsFunc()
	}
	m.once.Do(func() { m.store = pairings.NewMemory() })
	return m.store, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
