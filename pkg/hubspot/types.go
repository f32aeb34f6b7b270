package hubspot

// Deal is one CRM deal as returned by search and batch-read endpoints.
// Property values arrive as strings; nulls decode to "".
type Deal struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Note is one CRM note with the properties the summary views need.
type Note struct {
	ID         string
	Body       string
	Timestamp  string
	CreateDate string
	OwnerID    string
}

// PropertyOption is one selectable value of an enumerated deal property.
type PropertyOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DateSearch describes a deal search constrained by pipeline, stage,
// vehicle state and a date property. Exactly one of EqMS or the
// StartMS/EndMS pair should be set.
type DateSearch struct {
	PipelineID   string
	StageID      string
	StateValue   string
	DateProperty string
	EqMS         *int64
	StartMS      *int64
	EndMS        *int64
	Properties   []string
}

// filter is one condition inside a search filter group.
type filter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	Values       []string `json:"values,omitempty"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type searchPayload struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type searchResponse struct {
	Results []Deal `json:"results"`
	Paging  struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

type batchInput struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties,omitempty"`
}

type batchReadPayload struct {
	Properties   []string     `json:"properties"`
	Inputs       []batchInput `json:"inputs"`
	Associations []string     `json:"associations,omitempty"`
}

type batchUpdatePayload struct {
	Inputs []batchInput `json:"inputs"`
}

type associationRef struct {
	ID string `json:"id"`
}

type batchReadResponse struct {
	Results []struct {
		ID           string                      `json:"id"`
		Properties   map[string]string           `json:"properties"`
		Associations map[string][]associationRef `json:"associations"`
	} `json:"results"`
}

type associationListResponse struct {
	Results []struct {
		ToObjectID int64  `json:"toObjectId"`
		ID         string `json:"id"`
	} `json:"results"`
}

type ownerResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type propertyResponse struct {
	Options []struct {
		Label        string `json:"label"`
		DisplayValue string `json:"displayValue"`
		Value        string `json:"value"`
	} `json:"options"`
}
