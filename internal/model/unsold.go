package model

// UnsoldRecord is one customer row in the unsold test-drive summary:
// their primary deal, every vehicle they looked at, the consolidated
// CRM notes, and the LLM read on why the sale did not happen.
type UnsoldRecord struct {
	DealID        string `csv:"deal_id"`
	CustomerName  string `csv:"customer_name"`
	Phone         string `csv:"phone"`
	Email         string `csv:"email"`
	Vehicles      string `csv:"vehicles"`
	DealCount     int    `csv:"deal_count"`
	ConductedDate string `csv:"conducted_date"`
	Notes         string `csv:"notes"`
	Summary       string `csv:"summary"`
	Category      string `csv:"category"`
	NextSteps     string `csv:"next_steps"`
}
