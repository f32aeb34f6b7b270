package model

// VehicleDetail is one car attached to a deduplicated customer.
type VehicleDetail struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    string `json:"year"`
	Colour  string `json:"colour"`
	URL     string `json:"url"`
	StageID string `json:"stage_id"`
}

// Identity is one customer after deduplication: every deal sharing the
// same phone/email key collapsed into a single row ready for drafting.
type Identity struct {
	Key          string
	CustomerName string
	Phone        string
	Email        string

	// Cars holds one "make model" entry per deal with a vehicle.
	Cars []string
	// DealsCount counts deals that actually carried a vehicle.
	DealsCount int

	// WhenExact is "02 Jan 2006 15:04" style; WhenRel is the relative
	// phrasing used in SMS copy ("tomorrow at 10:30").
	WhenExact string
	WhenRel   string

	StageLabels []string
	// StageHint is the most advanced stage present across the group:
	// conducted > booked > enquiry > unknown.
	StageHint string

	DealIDs        []string
	AppointmentIDs []string
	VideoURLs      []string
	Vehicles       []VehicleDetail

	// Assignee fields are filled by round-robin assignment.
	AssigneeName  string
	AssigneeEmail string
}

// FirstName returns the leading word of the customer name, for SMS copy.
func (id Identity) FirstName() string {
	for i := 0; i < len(id.CustomerName); i++ {
		if id.CustomerName[i] == ' ' {
			return id.CustomerName[:i]
		}
	}
	return id.CustomerName
}

// Message is a drafted SMS ready for dispatch.
type Message struct {
	Identity Identity
	Body     string
	// Fallback marks drafts produced by a deterministic template after
	// the LLM failed or refused.
	Fallback bool
}

// Skipped records a customer the drafter could not produce a safe
// message for, with the reason.
type Skipped struct {
	Identity Identity
	Reason   string
}

// DispatchResult is the outcome of sending one message.
type DispatchResult struct {
	Phone  string `csv:"phone"`
	Name   string `csv:"name"`
	Body   string `csv:"body"`
	Sent   bool   `csv:"sent"`
	Error  string `csv:"error"`
	DealID string `csv:"deal_id"`
}
