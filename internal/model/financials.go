package model

// PartyFinancials is one party's share of the settlement. Monetary fields
// are totals, except the support fields which are monthly amounts.
type PartyFinancials struct {
	PartyID   PartyID `json:"party_id"`
	PartyName string  `json:"party_name,omitempty"`

	CashAssets            float64 `json:"cash_assets"`
	PropertyValue         float64 `json:"property_value"`
	InvestmentValue       float64 `json:"investment_value"`
	BusinessValue         float64 `json:"business_value"`
	PersonalPropertyValue float64 `json:"personal_property_value"`
	OtherAssets           float64 `json:"other_assets"`

	MortgageDebt    float64 `json:"mortgage_debt"`
	ConsumerDebt    float64 `json:"consumer_debt"`
	StudentLoanDebt float64 `json:"student_loan_debt"`
	BusinessDebt    float64 `json:"business_debt"`
	OtherDebts      float64 `json:"other_debts"`

	ChildSupportPayable      float64 `json:"child_support_payable"`
	ChildSupportReceivable   float64 `json:"child_support_receivable"`
	SpousalSupportPayable    float64 `json:"spousal_support_payable"`
	SpousalSupportReceivable float64 `json:"spousal_support_receivable"`

	ParentingTimePercentage float64  `json:"parenting_time_percentage"`
	HasLegalCustody         bool     `json:"has_legal_custody"`
	FinalDecisionAuthority  []string `json:"final_decision_authority"`
}

type SettlementState struct {
	PartyA PartyFinancials `json:"party_a"`
	PartyB PartyFinancials `json:"party_b"`

	TotalMaritalAssets float64 `json:"total_marital_assets"`
	TotalMaritalDebts  float64 `json:"total_marital_debts"`
	NetMaritalEstate   float64 `json:"net_marital_estate"`

	NumberOfChildren int   `json:"number_of_children"`
	ChildrenAges     []int `json:"children_ages"`

	AgreementPointsA int      `json:"agreement_points_a"`
	AgreementPointsB int      `json:"agreement_points_b"`
	AcceptedCards    []string `json:"accepted_cards"`
}

// Party returns a pointer to the financials of id, or nil for unknown ids.
func (s *SettlementState) Party(id PartyID) *PartyFinancials {
	switch id {
	case PartyA:
		return &s.PartyA
	case PartyB:
		return &s.PartyB
	default:
		return nil
	}
}

type EquityAnalysis struct {
	PartyAAssets   float64 `json:"party_a_assets"`
	PartyBAssets   float64 `json:"party_b_assets"`
	PartyADebts    float64 `json:"party_a_debts"`
	PartyBDebts    float64 `json:"party_b_debts"`
	PartyANetWorth float64 `json:"party_a_net_worth"`
	PartyBNetWorth float64 `json:"party_b_net_worth"`

	PartyAPercentage float64 `json:"party_a_percentage"`
	PartyBPercentage float64 `json:"party_b_percentage"`

	EquityScore        float64 `json:"equity_score"`
	DeviationFromEqual float64 `json:"deviation_from_equal"`

	IsCompliant bool     `json:"is_compliant"`
	Warnings    []string `json:"warnings"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

type MonthlyObligations struct {
	TotalPayable    float64  `json:"total_payable"`
	TotalReceivable float64  `json:"total_receivable"`
	NetObligation   float64  `json:"net_obligation"`
	Breakdown       []string `json:"breakdown"`
}

type ChildSupportCalculation struct {
	PayorIncome         float64 `json:"payor_income"`
	PayeeIncome         float64 `json:"payee_income"`
	NumberOfChildren    int     `json:"number_of_children"`
	PlacementPercentage float64 `json:"placement_percentage"`

	GuidelinePercentage float64 `json:"guideline_percentage"`
	GuidelineAmount     float64 `json:"guideline_amount"`

	SharedPlacementCredit float64 `json:"shared_placement_credit"`
	HealthInsuranceCost   float64 `json:"health_insurance_cost"`
	ChildcareCost         float64 `json:"childcare_cost"`
	PayorAddOnShare       float64 `json:"payor_add_on_share"`

	FinalAmount float64 `json:"final_amount"`

	IsDeviation            bool   `json:"is_deviation"`
	DeviationJustification string `json:"deviation_justification,omitempty"`
}
