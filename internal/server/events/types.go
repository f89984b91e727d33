// Package events fans hierarchy and pairing events out to real-time
// transports.
//
// Client hooks publish to a Broker; transport adapters (WebSocket, SSE)
// subscribe to it and forward every event to their connected clients.
package events

import (
	"time"

	"github.com/agentstation/leimap/pkg/hierarchy"
)

// EventType names an event.
type EventType string

// Event types.
const (
	// HierarchyBuilt is published after every successful hierarchy build.
	HierarchyBuilt EventType = "hierarchy.built"
	// HierarchyReconciled is published for each node the reconciliation pass adds.
	HierarchyReconciled EventType = "hierarchy.reconciled"

	PairingsSaved EventType = "pairings.saved"
	PairingsReset EventType = "pairings.reset"

	// ClientConnected is sent by transports when a client connects.
	ClientConnected EventType = "client.connected"
)

// Event is a typed, timestamped payload. Seq increases by one per published
// event and lets reconnecting clients detect gaps.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// HierarchyBuiltData summarizes a finished build.
type HierarchyBuiltData struct {
	Root          string `json:"root"`
	RootName      string `json:"root_name"`
	QueryLEI      string `json:"query_lei"`
	TotalEntities int    `json:"total_entities"`
	Reconciled    int    `json:"reconciled"`
}

// NewHierarchyBuiltData summarizes tree.
func NewHierarchyBuiltData(tree *hierarchy.Tree) HierarchyBuiltData {
	return HierarchyBuiltData{
		Root:          tree.UltimateParent(),
		RootName:      tree.Root.Name,
		QueryLEI:      tree.QueryLEI,
		TotalEntities: tree.Count(),
		Reconciled:    len(tree.Reconciled),
	}
}

// PairingsData accompanies PairingsSaved and PairingsReset. Count is the
// number of pairings stored afterwards.
type PairingsData struct {
	Received int `json:"received"`
	Count    int `json:"count"`
}
