// Package response provides the JSON envelope every API endpoint returns:
// a data field for successful responses and an error field for failures.
// Error bodies echo the request id so clients can quote it in reports.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/logging"
)

// StatusClientClosedRequest is written when the caller went away mid-request.
const StatusClientClosedRequest = 499

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error. Field names the offending parameter of a
// validation failure.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure can only be dropped.
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Problem writes an error envelope tagged with the request id of r.
func Problem(w http.ResponseWriter, r *http.Request, status int, e Error) {
	if r != nil {
		e.RequestID = logging.RequestID(r.Context())
	}
	JSON(w, status, Response{Error: &e})
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, r *http.Request, details string) {
	Problem(w, r, http.StatusUnauthorized, Error{Code: "UNAUTHORIZED", Message: "Invalid or missing API key", Details: details})
}

// RateLimited writes a 429 error response asking the client to wait retryAfter.
func RateLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration, details string) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
	}
	Problem(w, r, http.StatusTooManyRequests, Error{Code: "RATE_LIMITED", Message: "Rate limit exceeded", Details: details})
}

// InternalError writes a 500 error response. The cause is never exposed.
func InternalError(w http.ResponseWriter, r *http.Request) {
	Problem(w, r, http.StatusInternalServerError, Error{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Details: "An unexpected error occurred",
	})
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, details string) {
	Problem(w, r, http.StatusServiceUnavailable, Error{Code: "SERVICE_UNAVAILABLE", Message: "Service unavailable", Details: details})
}

// ErrorFromType maps typed errors to HTTP responses:
//
//	ValidationError          400 BAD_REQUEST
//	NotFoundError, API 404   404 NOT_FOUND
//	timeout                  504 TIMEOUT
//	registry 429             429 RATE_LIMITED
//	other APIError           502 UPSTREAM_ERROR
//	canceled                 499 CANCELED
//	anything else            500 INTERNAL_ERROR (logged)
func ErrorFromType(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *errors.ValidationError
		notFound   *errors.NotFoundError
		api        *errors.APIError
	)
	switch {
	case errors.As(err, &validation):
		Problem(w, r, http.StatusBadRequest, Error{Code: "BAD_REQUEST", Message: validation.Error(), Field: validation.Field})
	case errors.As(err, &notFound):
		Problem(w, r, http.StatusNotFound, Error{Code: "NOT_FOUND", Message: notFound.Error()})
	case errors.IsTimeout(err):
		Problem(w, r, http.StatusGatewayTimeout, Error{Code: "TIMEOUT", Message: "Request timed out", Details: err.Error()})
	case errors.IsRateLimited(err):
		RateLimited(w, r, 0, "Registry rate limit reached, try again later")
	case errors.As(err, &api) && api.StatusCode == http.StatusNotFound:
		Problem(w, r, http.StatusNotFound, Error{Code: "NOT_FOUND", Message: api.Error()})
	case api != nil:
		Problem(w, r, http.StatusBadGateway, Error{Code: "UPSTREAM_ERROR", Message: "Registry request failed", Details: api.Error()})
	case errors.IsCanceled(err):
		// The client is gone; nobody reads this.
		Problem(w, r, StatusClientClosedRequest, Error{Code: "CANCELED", Message: "Request canceled"})
	default:
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled request error")
		InternalError(w, r)
	}
}
