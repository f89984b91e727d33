package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		config      CORSConfig
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantStatus  int
		wantMethods bool
	}{
		{
			name:       "allow all",
			config:     CORSConfig{AllowAll: true},
			origin:     "https://app.example.com",
			wantOrigin: "*",
			wantStatus: http.StatusOK,
		},
		{
			name:       "listed origin echoed",
			config:     CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
			origin:     "https://app.example.com",
			wantOrigin: "https://app.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unlisted origin",
			config:     CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
			origin:     "https://evil.example.com",
			wantOrigin: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "subdomain pattern",
			config:     CORSConfig{AllowedOrigins: []string{"https://*.example.com"}},
			origin:     "https://dash.eu.example.com",
			wantOrigin: "https://dash.eu.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "subdomain pattern checks scheme",
			config:     CORSConfig{AllowedOrigins: []string{"https://*.example.com"}},
			origin:     "http://dash.example.com",
			wantOrigin: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "subdomain pattern is not a suffix match",
			config:     CORSConfig{AllowedOrigins: []string{"https://*.example.com"}},
			origin:     "https://notexample.com",
			wantOrigin: "",
			wantStatus: http.StatusOK,
		},
		{
			name:        "preflight short circuits",
			config:      DefaultCORSConfig(),
			method:      http.MethodOptions,
			preflight:   true,
			origin:      "https://app.example.com",
			wantOrigin:  "https://app.example.com",
			wantStatus:  http.StatusNoContent,
			wantMethods: true,
		},
		{
			name:       "plain OPTIONS reaches handler",
			config:     DefaultCORSConfig(),
			method:     http.MethodOptions,
			origin:     "https://app.example.com",
			wantOrigin: "https://app.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight from unlisted origin",
			config:     CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
			method:     http.MethodOptions,
			preflight:  true,
			origin:     "https://evil.example.com",
			wantOrigin: "",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/api/v1/search", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			CORS(tt.config)(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods") != ""; got != tt.wantMethods {
				t.Errorf("Allow-Methods set = %v, want %v", got, tt.wantMethods)
			}
			if tt.wantMethods && w.Header().Get("Access-Control-Max-Age") != "86400" {
				t.Errorf("Max-Age = %q, want 86400", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
