package gleif

import (
	"strings"

	"github.com/agentstation/leimap/pkg/entities"
)

// toRecord converts a registry record into the shared entity model.
func toRecord(r leiRecord) *entities.Record {
	a := r.Attributes
	lei := a.LEI
	if lei == "" {
		lei = r.ID
	}
	return &entities.Record{
		LEI:                 entities.NormalizeLEI(lei),
		LegalName:           strings.TrimSpace(a.Entity.LegalName.Name),
		Status:              a.Entity.Status,
		LegalForm:           legalFormName(a.Entity.LegalForm),
		Jurisdiction:        a.Entity.Jurisdiction,
		CreationDate:        a.Entity.CreationDate,
		LegalAddress:        toAddress(a.Entity.LegalAddress),
		HeadquartersAddress: toAddress(a.Entity.HeadquartersAddress),
		Registration: entities.Registration{
			InitialDate: a.Registration.InitialRegistrationDate,
			LastUpdate:  a.Registration.LastUpdateDate,
			NextRenewal: a.Registration.NextRenewalDate,
			Status:      a.Registration.Status,
			ManagingLOU: a.Registration.ManagingLou,
		},
		SPGlobalIDs: a.SPGlobal,
	}
}

// toRef keeps only identity from a record listing item.
func toRef(r leiRecord) entities.Ref {
	rec := toRecord(r)
	return entities.Ref{LEI: rec.LEI, Name: rec.LegalName}
}

func toAddress(a address) entities.Address {
	return entities.Address{
		Lines:      a.AddressLines,
		City:       a.City,
		Region:     a.Region,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
}

// legalFormName prefers the free-text form, then the ELF code.
func legalFormName(f legalForm) string {
	if f.Other != "" {
		return f.Other
	}
	return f.ID
}
