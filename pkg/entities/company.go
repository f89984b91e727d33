package entities

// Company is the details view of a single entity.
type Company struct {
	LEI             string           `json:"lei" yaml:"lei"`
	LegalName       string           `json:"legal_name" yaml:"legal_name"`
	Status          string           `json:"status" yaml:"status"`
	LegalForm       string           `json:"legal_form" yaml:"legal_form"`
	Registration    CompanyReg       `json:"registration" yaml:"registration"`
	Addresses       CompanyAddresses `json:"addresses" yaml:"addresses"`
	CreationDate    string           `json:"creation_date" yaml:"creation_date"`
	LEIRegistration LEIRegistration  `json:"lei_registration" yaml:"lei_registration"`
	AltID           string           `json:"spglobal_id" yaml:"spglobal_id"`
}

// CompanyReg summarizes where and when an entity was registered.
type CompanyReg struct {
	Country string `json:"country" yaml:"country"`
	Date    string `json:"date" yaml:"date"`
	Status  string `json:"status" yaml:"status"`
}

// CompanyAddresses groups the legal and headquarters addresses.
type CompanyAddresses struct {
	Legal        CompanyAddress `json:"legal" yaml:"legal"`
	Headquarters CompanyAddress `json:"headquarters" yaml:"headquarters"`
}

// CompanyAddress is a flattened address with the first street line only.
type CompanyAddress struct {
	FirstAddressLine string `json:"first_address_line" yaml:"first_address_line"`
	City             string `json:"city" yaml:"city"`
	Region           string `json:"region" yaml:"region"`
	Country          string `json:"country" yaml:"country"`
	PostalCode       string `json:"postal_code" yaml:"postal_code"`
}

// LEIRegistration is the registration lifecycle as shown to users.
type LEIRegistration struct {
	InitialDate string `json:"initial_date" yaml:"initial_date"`
	LastUpdate  string `json:"last_update" yaml:"last_update"`
	NextRenewal string `json:"next_renewal" yaml:"next_renewal"`
	ManagingLOU string `json:"managing_lou" yaml:"managing_lou"`
}

// NewCompany builds the details view, substituting Unknown for every absent field.
func NewCompany(r *Record) Company {
	return Company{
		LEI:       r.LEI,
		LegalName: OrUnknown(r.LegalName),
		Status:    OrUnknown(r.Status),
		LegalForm: OrUnknown(r.LegalForm),
		Registration: CompanyReg{
			Country: OrUnknown(r.Jurisdiction),
			Date:    OrUnknown(r.Registration.InitialDate),
			Status:  OrUnknown(r.Registration.Status),
		},
		Addresses: CompanyAddresses{
			Legal:        newCompanyAddress(r.LegalAddress),
			Headquarters: newCompanyAddress(r.HeadquartersAddress),
		},
		CreationDate: OrUnknown(r.CreationDate),
		LEIRegistration: LEIRegistration{
			InitialDate: OrUnknown(r.Registration.InitialDate),
			LastUpdate:  OrUnknown(r.Registration.LastUpdate),
			NextRenewal: OrUnknown(r.Registration.NextRenewal),
			ManagingLOU: OrUnknown(r.Registration.ManagingLOU),
		},
		AltID: r.AltID(),
	}
}

func newCompanyAddress(a Address) CompanyAddress {
	return CompanyAddress{
		FirstAddressLine: a.FirstLine(),
		City:             OrUnknown(a.City),
		Region:           OrUnknown(a.Region),
		Country:          OrUnknown(a.Country),
		PostalCode:       OrUnknown(a.PostalCode),
	}
}
