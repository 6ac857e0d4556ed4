package model

type AnalyzeResponse struct {
	Analysis     EquityAnalysis     `json:"analysis"`
	ObligationsA MonthlyObligations `json:"obligations_a"`
	ObligationsB MonthlyObligations `json:"obligations_b"`
	Summary      string             `json:"summary"`
}

type ActionResponse struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
}

type EquityResponse struct {
	State    SettlementState `json:"state"`
	Analysis EquityAnalysis  `json:"analysis"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
