package model

// ChildSupportRequest is the body of POST /child-support.
type ChildSupportRequest struct {
	PayorIncome         float64 `json:"payor_income"`
	PayeeIncome         float64 `json:"payee_income"`
	NumberOfChildren    int     `json:"number_of_children"`
	PlacementPercentage float64 `json:"placement_percentage"`
	HealthInsuranceCost float64 `json:"health_insurance_cost"`
	ChildcareCost       float64 `json:"childcare_cost"`
}

type PlayerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	County         string        `json:"county"`
	CaseNumber     string        `json:"case_number,omitempty"`
	MarriageDate   Date          `json:"marriage_date"`
	SeparationDate *Date         `json:"separation_date,omitempty"`
	PartyA         PlayerRequest `json:"party_a"`
	PartyB         PlayerRequest `json:"party_b"`
	Children       []Child       `json:"children"`
	Incomes        Incomes       `json:"incomes"`
}

type ActionKind string

const (
	ActionPlay     ActionKind = "play"
	ActionAccept   ActionKind = "accept"
	ActionReject   ActionKind = "reject"
	ActionModify   ActionKind = "modify"
	ActionCounter  ActionKind = "counter"
	ActionUndo     ActionKind = "undo"
	ActionFinalize ActionKind = "finalize"
)

// ActionRequest is one party action. Values holds raw JSON scalars keyed by
// field id; they are typed against the card definition when applied.
type ActionRequest struct {
	Action  ActionKind     `json:"action"`
	Actor   PartyID        `json:"actor"`
	CardID  string         `json:"card_id,omitempty"`
	Values  map[string]any `json:"values,omitempty"`
	Message string         `json:"message,omitempty"`
}
