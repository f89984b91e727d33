// Package handlers provides the HTTP request handlers of the leimap API.
//
// Handlers are organized by domain:
//
//   - search.go: name search and bulk search
//   - hierarchy.go: ownership trees by name or LEI
//   - company.go: company details
//   - pairings.go: saved target/match pairings
//   - health.go: health and readiness checks
//   - realtime.go: WebSocket and SSE updates
//
// Handlers validate input, consult the cache where results are cacheable,
// call the leimap client, and write the standard response envelope.
package handlers
