package entities

import (
	"strings"

	"github.com/agentstation/leimap/pkg/constants"
)

// Unknown is the display value of any attribute the registry did not report.
const Unknown = constants.Unknown

// Ref is the minimal identity of an entity as returned in parent and children listings.
type Ref struct {
	LEI  string `json:"lei" yaml:"lei"`
	Name string `json:"name" yaml:"name"`
}

// Address is a postal address as registered for an entity.
type Address struct {
	Lines      []string `json:"address_lines,omitempty" yaml:"address_lines,omitempty"`
	City       string   `json:"city" yaml:"city"`
	Region     string   `json:"region" yaml:"region"`
	Country    string   `json:"country" yaml:"country"`
	PostalCode string   `json:"postal_code" yaml:"postal_code"`
}

// FirstLine returns the first address line or Unknown.
func (a Address) FirstLine() string {
	if len(a.Lines) == 0 || strings.TrimSpace(a.Lines[0]) == "" {
		return Unknown
	}
	return a.Lines[0]
}

// Registration holds the LEI registration lifecycle data.
type Registration struct {
	InitialDate string `json:"initial_date" yaml:"initial_date"`
	LastUpdate  string `json:"last_update" yaml:"last_update"`
	NextRenewal string `json:"next_renewal" yaml:"next_renewal"`
	Status      string `json:"status" yaml:"status"`
	ManagingLOU string `json:"managing_lou" yaml:"managing_lou"`
}

// Record is an entity as fetched from the registry. It is immutable once built.
type Record struct {
	LEI                 string       `json:"lei" yaml:"lei"`
	LegalName           string       `json:"legal_name" yaml:"legal_name"`
	Status              string       `json:"status" yaml:"status"`
	LegalForm           string       `json:"legal_form" yaml:"legal_form"`
	Jurisdiction        string       `json:"jurisdiction" yaml:"jurisdiction"`
	CreationDate        string       `json:"creation_date" yaml:"creation_date"`
	LegalAddress        Address      `json:"legal_address" yaml:"legal_address"`
	HeadquartersAddress Address      `json:"headquarters_address" yaml:"headquarters_address"`
	Registration        Registration `json:"registration" yaml:"registration"`
	SPGlobalIDs         []string     `json:"spglobal_ids,omitempty" yaml:"spglobal_ids,omitempty"`
}

// Name returns the legal name, falling back to the LEI.
func (r *Record) Name() string {
	if r == nil {
		return ""
	}
	if r.LegalName == "" || r.LegalName == Unknown {
		return r.LEI
	}
	return r.LegalName
}

// AltID returns the first S&P Global market-intelligence identifier or Unknown.
func (r *Record) AltID() string {
	if r == nil || len(r.SPGlobalIDs) == 0 || r.SPGlobalIDs[0] == "" {
		return Unknown
	}
	return r.SPGlobalIDs[0]
}

// Country returns the headquarters country code or Unknown.
func (r *Record) Country() string {
	if r == nil {
		return Unknown
	}
	return OrUnknown(r.HeadquartersAddress.Country)
}

// Ref returns the record's identity.
func (r *Record) Ref() Ref {
	return Ref{LEI: r.LEI, Name: r.Name()}
}

// OrUnknown returns s, or Unknown when s is blank.
func OrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

// NormalizeLEI trims surrounding space and upper-cases an identifier.
// Registry LEIs are 20 upper-case alphanumerics but no format check is applied;
// the only rejected input is a blank one.
func NormalizeLEI(lei string) string {
	return strings.ToUpper(strings.TrimSpace(lei))
}

// IsBlank reports whether lei carries no identifier at all.
func IsBlank(lei string) bool {
	return strings.TrimSpace(lei) == ""
}
