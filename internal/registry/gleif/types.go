package gleif

// document is a JSON:API top-level response.
type document[T any] struct {
	Data  T     `json:"data"`
	Links links `json:"links"`
}

type links struct {
	First string `json:"first"`
	Next  string `json:"next"`
	Last  string `json:"last"`
}

type leiRecord struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes recordAttributes `json:"attributes"`
}

type recordAttributes struct {
	LEI          string                 `json:"lei"`
	Entity       entityAttributes       `json:"entity"`
	Registration registrationAttributes `json:"registration"`
	SPGlobal     []string               `json:"spglobal"`
}

type entityAttributes struct {
	LegalName           localizedName `json:"legalName"`
	LegalAddress        address       `json:"legalAddress"`
	HeadquartersAddress address       `json:"headquartersAddress"`
	Jurisdiction        string        `json:"jurisdiction"`
	LegalForm           legalForm     `json:"legalForm"`
	Status              string        `json:"status"`
	CreationDate        string        `json:"creationDate"`
}

type localizedName struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

type address struct {
	AddressLines []string `json:"addressLines"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	PostalCode   string   `json:"postalCode"`
}

type legalForm struct {
	ID    string `json:"id"`
	Other string `json:"other"`
}

type registrationAttributes struct {
	InitialRegistrationDate string `json:"initialRegistrationDate"`
	LastUpdateDate          string `json:"lastUpdateDate"`
	Status                  string `json:"status"`
	NextRenewalDate         string `json:"nextRenewalDate"`
	ManagingLou             string `json:"managingLou"`
}

// completion is an item of the autocompletions and fuzzycompletions endpoints.
type completion struct {
	Type       string `json:"type"`
	Attributes struct {
		Value string `json:"value"`
	} `json:"attributes"`
	Relationships struct {
		LEIRecords *struct {
			Data *struct {
				Type string `json:"type"`
				ID   string `json:"id"`
			} `json:"data"`
		} `json:"lei-records"`
	} `json:"relationships"`
}

// relatedLEI returns the LEI the completion links to, or "".
func (c completion) relatedLEI() string {
	if c.Relationships.LEIRecords == nil || c.Relationships.LEIRecords.Data == nil {
		return ""
	}
	return c.Relationships.LEIRecords.Data.ID
}
