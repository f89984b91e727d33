package output

import (
	"strconv"

	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

// tabular wraps domain values in their Tabular adapters.
func tabular(data any) any {
	switch v := data.(type) {
	case []entities.Match:
		return Matches(v)
	case []entities.BulkResult:
		return Comparison(v)
	case entities.Company:
		return Company(v)
	case *hierarchy.Tree:
		return Hierarchy{v}
	default:
		return data
	}
}

// Matches is a ranked search result.
type Matches []entities.Match

// TableData implements Tabular.
func (m Matches) TableData() Data {
	rows := make([][]string, 0, len(m))
	for i, match := range m {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			match.Entity,
			match.LEI,
			strconv.FormatFloat(match.Score, 'f', 3, 64),
		})
	}
	return Data{
		Headers:         []string{"#", "Entity", "LEI", "Score"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight},
	}
}

// Comparison is a bulk search shown side by side, one row per target and rank.
type Comparison []entities.BulkResult

// TableData implements Tabular.
func (c Comparison) TableData() Data {
	var rows [][]string
	for _, result := range c {
		if len(result.Matches) == 0 {
			rows = append(rows, []string{result.Target, "-", "no matches", "", ""})
			continue
		}
		for i, match := range result.Matches {
			rows = append(rows, []string{
				result.Target,
				strconv.Itoa(i + 1),
				match.Entity,
				match.LEI,
				strconv.FormatFloat(match.Score, 'f', 3, 64),
			})
		}
	}
	return Data{
		Headers:         []string{"Target", "#", "Entity", "LEI", "Score"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignRight},
	}
}

// Company is a company details view.
type Company entities.Company

// TableData implements Tabular.
func (c Company) TableData() Data {
	addr := func(a entities.CompanyAddress) string {
		return a.FirstAddressLine + ", " + a.City + ", " + a.Region + ", " + a.Country + " " + a.PostalCode
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"LEI", c.LEI},
			{"Legal Name", c.LegalName},
			{"Status", c.Status},
			{"Legal Form", c.LegalForm},
			{"Registration Country", c.Registration.Country},
			{"Registration Date", c.Registration.Date},
			{"Registration Status", c.Registration.Status},
			{"Legal Address", addr(c.Addresses.Legal)},
			{"Headquarters", addr(c.Addresses.Headquarters)},
			{"Creation Date", c.CreationDate},
			{"LEI Initial Registration", c.LEIRegistration.InitialDate},
			{"LEI Last Update", c.LEIRegistration.LastUpdate},
			{"LEI Next Renewal", c.LEIRegistration.NextRenewal},
			{"Managing LOU", c.LEIRegistration.ManagingLOU},
			{"S&P Global ID", c.AltID},
		},
	}
}

// Hierarchy is a tree flattened to one row per entity.
type Hierarchy struct {
	*hierarchy.Tree
}

// TableData implements Tabular.
func (h Hierarchy) TableData() Data {
	var rows [][]string
	for line := range h.Lines() {
		role := ""
		if line.Role != hierarchy.RolePlain {
			role = line.Role.String()
		}
		if line.Reconciled {
			role += " (reconciled)"
		}
		rows = append(rows, []string{
			strconv.Itoa(line.Depth),
			line.Prefix() + line.Name,
			line.LEI,
			line.AltID,
			line.Country,
			role,
		})
	}
	return Data{
		Headers: []string{"Depth", "Entity", "LEI", "S&P ID", "Country", "Role"},
		Rows:    rows,
		Footer:  "Total entities: " + strconv.Itoa(h.Count()),
	}
}
