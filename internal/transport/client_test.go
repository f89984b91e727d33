package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/leimap/internal/transport"
	"github.com/agentstation/leimap/pkg/errors"
)

func TestClientGet(t *testing.T) {
	var gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"value":"x"}`))
		case "/missing":
			http.NotFound(w, r)
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/slow-down":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/garbage":
			_, _ = w.Write([]byte(`{not json`))
		}
	}))
	defer srv.Close()

	var mu sync.Mutex
	observed := map[string]int{}
	c := transport.New(
		transport.WithAccept("application/vnd.api+json"),
		transport.WithAuth(&transport.BearerAuth{Token: "t"}),
		transport.WithService("gleif"),
		transport.WithRateLimit(0, 0),
		transport.WithObserver(func(endpoint string, status int, _ time.Duration, _ error) {
			mu.Lock()
			defer mu.Unlock()
			observed[endpoint] = status
		}),
	)
	ctx := context.Background()

	t.Run("decodes body and sets headers", func(t *testing.T) {
		var out struct{ Value string }
		require.NoError(t, c.Get(ctx, srv.URL+"/ok", "ok", &out))
		assert.Equal(t, "x", out.Value)
		assert.Equal(t, "application/vnd.api+json", gotAccept)
		assert.Equal(t, "Bearer t", gotAuth)
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := c.Get(ctx, srv.URL+"/missing", "missing", &struct{}{})
		assert.True(t, errors.IsNotFound(err))
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "gleif", apiErr.Service)
	})

	t.Run("503 is unavailable", func(t *testing.T) {
		err := c.Get(ctx, srv.URL+"/down", "down", &struct{}{})
		assert.True(t, errors.IsProviderUnavailable(err))
		assert.True(t, errors.IsTransient(err))
	})

	t.Run("429 is rate limited", func(t *testing.T) {
		err := c.Get(ctx, srv.URL+"/slow-down", "slow", &struct{}{})
		assert.True(t, errors.IsRateLimited(err))
	})

	t.Run("bad json is a parse error", func(t *testing.T) {
		err := c.Get(ctx, srv.URL+"/garbage", "garbage", &struct{}{})
		var pe *errors.ParseError
		assert.ErrorAs(t, err, &pe)
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.StatusOK, observed["ok"])
	assert.Equal(t, http.StatusNotFound, observed["missing"])
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := transport.New(transport.WithRateLimit(0.001, 1))
	require.NoError(t, c.Get(context.Background(), srv.URL, "first", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, srv.URL, "second", nil)
	require.Error(t, err)
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := transport.New(transport.WithRateLimit(0, 0)).Get(context.Background(), url, "closed", nil)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
