// Package engine replays scripted negotiations against the state machine.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/tbcolby/settlement-game/internal/model"
	"github.com/tbcolby/settlement-game/internal/negotiation"
)

type Engine struct {
	machine *negotiation.Machine
	version string
	now     func() time.Time
	newID   func() string
}

func New(machine *negotiation.Machine, version string) *Engine {
	return &Engine{
		machine: machine,
		version: version,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Process creates the session described by req.Setup and applies its actions
// in order. The first refused action stops the replay with outcome FAILURE;
// the end session is then the state after the last applied action. A replay
// that completes the session carries the generated agreement.
func (e *Engine) Process(req *model.ReplayRequest) *model.ReplayResponse {
	start := e.now()

	session := e.machine.NewSession(req.Setup)
	initial := session

	allMessages := []model.IndexedMessage{}
	processed := make([]model.ProcessedAction, 0, len(req.Actions))
	outcome := model.OutcomeSuccess
	lastIndex := -1

	for i, action := range req.Actions {
		next, msgs, err := e.machine.Apply(session, action)

		msgIndexes := []int{}
		for _, m := range msgs {
			id := len(allMessages)
			allMessages = append(allMessages, model.IndexedMessage{ID: id, Message: m})
			msgIndexes = append(msgIndexes, id)
		}
		processed = append(processed, model.ProcessedAction{
			Action:         action,
			TurnNumber:     session.TurnNumber,
			MessageIndexes: msgIndexes,
		})

		if err != nil {
			outcome = model.OutcomeFailure
			break
		}
		session = next
		lastIndex = i
	}

	result := model.ReplayResult{
		Messages:        allMessages,
		Actions:         processed,
		InitialSession:  initial,
		EndSession:      session,
		LastActionIndex: lastIndex,
	}
	if session.Status == model.SessionCompleted {
		msa := e.machine.BuildAgreement(session, e.version)
		result.Agreement = &msa
	}

	completed := e.now()
	return &model.ReplayResponse{
		Metadata: model.ReplayMetadata{
			ReplayID:    e.newID(),
			StartedAt:   start.Format(time.RFC3339),
			CompletedAt: completed.Format(time.RFC3339),
			DurationMs:  completed.Sub(start).Milliseconds(),
			Outcome:     outcome,
		},
		Result: result,
	}
}
