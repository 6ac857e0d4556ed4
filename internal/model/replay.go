package model

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// ReplayRequest scripts a whole negotiation: a session setup followed by
// party actions applied in order.
type ReplayRequest struct {
	Setup   CreateSessionRequest `json:"setup"`
	Actions []ActionRequest      `json:"actions"`
}

type ReplayResponse struct {
	Metadata ReplayMetadata `json:"replay_metadata"`
	Result   ReplayResult   `json:"replay_result"`
}

type ReplayMetadata struct {
	ReplayID    string `json:"replay_id"`
	StartedAt   string `json:"replay_started_at"`
	CompletedAt string `json:"replay_completed_at"`
	DurationMs  int64  `json:"replay_duration_ms"`
	Outcome     string `json:"replay_outcome"`
}

// IndexedMessage is a Message numbered by its position in the replay.
type IndexedMessage struct {
	ID int `json:"id"`
	Message
}

type ProcessedAction struct {
	Action         ActionRequest `json:"action"`
	TurnNumber     int           `json:"turn_number"`
	MessageIndexes []int         `json:"message_indexes"`
}

type ReplayResult struct {
	Messages       []IndexedMessage  `json:"messages"`
	Actions        []ProcessedAction `json:"actions"`
	InitialSession Session           `json:"initial_session"`
	EndSession     Session           `json:"end_session"`
	// LastActionIndex is the index of the last applied action, -1 when none
	// was applied.
	LastActionIndex int                         `json:"last_action_index"`
	Agreement       *MaritalSettlementAgreement `json:"agreement,omitempty"`
}
