package entities

import "github.com/agentstation/leimap/pkg/constants"

// LEINotFound is the LEI of a ranked name that could not be resolved.
const LEINotFound = constants.LEINotFound

// Match is one ranked candidate for a free-text search.
type Match struct {
	Entity string  `json:"entity" yaml:"entity"`
	LEI    string  `json:"lei" yaml:"lei"`
	Score  float64 `json:"score" yaml:"score"`
}

// Resolved reports whether the match carries a usable LEI.
func (m Match) Resolved() bool {
	return m.LEI != "" && m.LEI != LEINotFound
}

// BulkResult holds the ranked matches for one target of a bulk search.
type BulkResult struct {
	Target  string  `json:"target" yaml:"target"`
	Matches []Match `json:"matches" yaml:"matches"`
}

// Pairing records the match a user chose for a search target.
type Pairing struct {
	Target   string `json:"target" yaml:"target"`
	Selected *Match `json:"selected" yaml:"selected"`
}

// Valid reports whether the pairing names a target and a selection.
func (p Pairing) Valid() bool {
	return p.Target != "" && p.Selected != nil
}

// Completion is a registry name suggestion, optionally linked to an LEI.
type Completion struct {
	Value string `json:"value" yaml:"value"`
	LEI   string `json:"lei,omitempty" yaml:"lei,omitempty"`
}
