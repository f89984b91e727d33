package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	leiErrors "github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// TestSuccess tests the Success helper function.
func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"message": "success"})

	if resp.Data == nil {
		t.Error("expected Data to be set")
	}
	if resp.Error != nil {
		t.Error("expected Error to be nil")
	}
}

// TestFail tests the Fail helper function.
func TestFail(t *testing.T) {
	resp := Fail("TEST_ERROR", "Test error message", "Additional details")

	if resp.Data != nil {
		t.Error("expected Data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("expected Error to be set")
	}
	if resp.Error.Code != "TEST_ERROR" || resp.Error.Message != "Test error message" || resp.Error.Details != "Additional details" {
		t.Errorf("unexpected error body: %+v", resp.Error)
	}
}

// TestOK tests that OK writes the success envelope.
func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, []string{"LUZQVYP4VS22CLWDAR65"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type=application/json, got %s", ct)
	}
	resp := decode(t, w)
	if resp.Error != nil {
		t.Errorf("expected no error, got %+v", resp.Error)
	}
	if data, ok := resp.Data.([]any); !ok || len(data) != 1 {
		t.Errorf("expected one-element data array, got %#v", resp.Data)
	}
}

// TestErrorHelpers tests each error helper's status and code.
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, *http.Request)
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { Unauthorized(w, r, "no key") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { RateLimited(w, r, 0, "slow down") }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", InternalError, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { ServiceUnavailable(w, r, "down") }, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := decode(t, w)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %+v", tt.wantCode, resp.Error)
			}
		})
	}
}

// TestProblemEchoesRequestID tests that error bodies carry the request id.
func TestProblemEchoesRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy/X", nil)
	r = r.WithContext(logging.WithRequestID(r.Context(), "req-42"))
	w := httptest.NewRecorder()

	ErrorFromType(w, r, leiErrors.NewValidationError("lei", "X", "is not a valid LEI"))

	resp := decode(t, w)
	if resp.Error.RequestID != "req-42" {
		t.Errorf("expected request id req-42, got %q", resp.Error.RequestID)
	}
	if resp.Error.Field != "lei" {
		t.Errorf("expected field lei, got %q", resp.Error.Field)
	}
}

// TestRateLimitedRetryAfter tests the Retry-After header.
func TestRateLimitedRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	RateLimited(w, nil, 90*time.Second, "")
	if got := w.Header().Get("Retry-After"); got != "90" {
		t.Errorf("expected Retry-After 90, got %q", got)
	}

	w = httptest.NewRecorder()
	RateLimited(w, nil, 0, "")
	if got := w.Header().Get("Retry-After"); got != "" {
		t.Errorf("expected no Retry-After, got %q", got)
	}
}

// TestInternalErrorHidesCause tests that the underlying error is never exposed.
func TestInternalErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	ErrorFromType(w, r, errors.New("database password is hunter2"))

	body := w.Body.String()
	if strings.Contains(body, "hunter2") {
		t.Error("internal error leaked its cause")
	}
}

// TestErrorFromType tests the mapping of typed errors to HTTP status codes.
func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        leiErrors.NewValidationError("match", 11, "choose a match between 1 and 10"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("select: %w", leiErrors.NewNotFoundError("lei", "Acme")),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "timeout",
			err:        leiErrors.NewTimeoutError("hierarchy", "30s", "deadline exceeded"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
		},
		{
			name:       "registry rate limit",
			err:        leiErrors.NewAPIError("gleif", http.StatusTooManyRequests, "too many requests"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "registry 404",
			err:        leiErrors.NewAPIError("gleif", http.StatusNotFound, "no such record"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "registry 500",
			err:        leiErrors.NewAPIError("gleif", http.StatusInternalServerError, "boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:       "canceled",
			err:        context.Canceled,
			wantStatus: 499,
			wantCode:   "CANCELED",
		},
		{
			name:       "unknown",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)

			ErrorFromType(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := decode(t, w)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %+v", tt.wantCode, resp.Error)
			}
		})
	}
}
