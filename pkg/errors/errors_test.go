package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/leimap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "entity",
			ID:       "5493001KJTIIGC8Y1R12",
		}
		assert.Equal(t, "entity with ID 5493001KJTIIGC8Y1R12 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("direct-parent", "X")
		wrapped := fmt.Errorf("lookup: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("lei", "", "must not be blank")
		assert.Equal(t, "validation failed for field lei: must not be blank", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "too many targets"}
		assert.Equal(t, "validation failed: too many targets", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		notFound    bool
		rateLimited bool
		unavailable bool
	}{
		{"not found", 404, true, false, false},
		{"rate limited", 429, false, true, false},
		{"server error", 503, false, false, true},
		{"bad request", 400, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("gleif", tt.status, "boom")
			assert.Equal(t, tt.notFound, pkgerrors.IsNotFound(err))
			assert.Equal(t, tt.rateLimited, pkgerrors.IsRateLimited(err))
			assert.Equal(t, tt.unavailable, pkgerrors.IsProviderUnavailable(err))
			assert.Contains(t, err.Error(), "gleif")
		})
	}

	t.Run("unwrap", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapAPI("gleif", 0, base)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "API error from gleif: connection reset", err.Error())
	})
}

func TestCycleError(t *testing.T) {
	err := pkgerrors.NewCycleError("A", "B")
	assert.Equal(t, "parent chain from A loops back at B", err.Error())
	assert.True(t, pkgerrors.IsCycle(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", pkgerrors.NewNotFoundError("entity", "X"), false},
		{"validation", pkgerrors.NewValidationError("lei", "", "blank"), false},
		{"rate limited", pkgerrors.NewAPIError("gleif", 429, "slow down"), true},
		{"unavailable", pkgerrors.NewAPIError("gleif", 502, "bad gateway"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"parse", pkgerrors.WrapParse("json", "response", errors.New("eof")), false},
		{"transport", pkgerrors.WrapResource("fetch", "request", "GET /x", errors.New("dial")), true},
		{"plain", errors.New("mystery"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.IsTransient(tt.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
		assert.NoError(t, pkgerrors.WrapResource("fetch", "entity", "x", nil))
		assert.NoError(t, pkgerrors.WrapParse("json", "x", nil))
		assert.NoError(t, pkgerrors.WrapAPI("gleif", 500, nil))
		assert.NoError(t, pkgerrors.WrapValidation("lei", nil))
	})

	t.Run("io", func(t *testing.T) {
		base := errors.New("disk full")
		err := pkgerrors.WrapIO("write", "/tmp/pairings.db", base)
		var ioErr *pkgerrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "write", ioErr.Operation)
		assert.ErrorIs(t, err, base)
	})

	t.Run("resource", func(t *testing.T) {
		err := pkgerrors.WrapResource("save", "pairings", "", errors.New("closed"))
		assert.Equal(t, "failed to save pairings: closed", err.Error())
	})

	t.Run("parse", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "response", errors.New("unexpected EOF"))
		assert.Equal(t, "json parse error in response: unexpected EOF", err.Error())
	})
}

func TestAuthenticationError(t *testing.T) {
	err := pkgerrors.NewAuthenticationError("genai", "api_key", "GEMINI_API_KEY not set", nil)
	assert.True(t, errors.Is(err, pkgerrors.ErrAPIKeyRequired))
	assert.Contains(t, err.Error(), "genai")
}

func TestConfigAndTimeoutErrors(t *testing.T) {
	cfg := pkgerrors.NewConfigError("ranker", "unknown ranker \"x\"", nil)
	assert.Equal(t, "configuration error in ranker: unknown ranker \"x\"", cfg.Error())

	to := pkgerrors.NewTimeoutError("hierarchy", "5m0s", "deadline reached")
	assert.True(t, pkgerrors.IsTimeout(to))
}
