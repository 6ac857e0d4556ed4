// Package negotiation is the turn-based proposal protocol. Every transition
// is a pure function from a session and an action to a new session; the
// input session is never modified.
package negotiation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/model"
)

var (
	ErrNotPlaying        = errors.New("session is not in play")
	ErrUnknownAction     = errors.New("unknown action")
	ErrUnknownActor      = errors.New("actor must be A or B")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrProposalPending   = errors.New("a proposal is already pending")
	ErrNoPendingProposal = errors.New("no pending proposal")
	ErrMetaCard          = errors.New("card cannot be played")
	ErrCannotFinalize    = errors.New("both parties must reach 100 agreement points")
)

// Machine applies party actions to sessions.
type Machine struct {
	cards *catalog.Catalog
	newID func() string
	now   func() time.Time
}

type Option func(*Machine)

// WithCatalog replaces the embedded card catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(m *Machine) { m.cards = c }
}

// WithClock sets the time source used for timestamps and children's ages.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDs sets the generator for session, card, proposal and move ids.
func WithIDs(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

func New(opts ...Option) *Machine {
	m := &Machine{
		cards: catalog.Default(),
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the catalog cards are resolved against.
func (m *Machine) Catalog() *catalog.Catalog { return m.cards }

// NewSession starts a game in play with Party A to move.
func (m *Machine) NewSession(req model.CreateSessionRequest) model.Session {
	now := m.now()
	children := append([]model.Child{}, req.Children...)

	s := model.Session{
		ID:             m.newID(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         model.SessionPlaying,
		County:         strings.TrimSpace(req.County),
		CaseNumber:     strings.TrimSpace(req.CaseNumber),
		MarriageDate:   req.MarriageDate,
		SeparationDate: req.SeparationDate,
		PartyA:         player(model.PartyA, req.PartyA, "Party A"),
		PartyB:         player(model.PartyB, req.PartyB, "Party B"),
		Children:       children,
		Incomes:        req.Incomes,
		CurrentTurn:    model.PartyA,
		TurnNumber:     1,
		AcceptedCards:  []model.PlayedCard{},
		Moves:          []model.Move{},
	}
	return s
}

func player(id model.PartyID, req model.PlayerRequest, fallback string) model.Player {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fallback
	}
	return model.Player{ID: id, Name: name, Email: strings.TrimSpace(req.Email)}
}

// Apply validates action against session and returns the resulting session
// with the notifications the action produced. When the action is refused the
// original session is returned unchanged together with a CRITICAL message
// and the error.
func (m *Machine) Apply(session model.Session, action model.ActionRequest) (model.Session, []model.Message, error) {
	t, ok := transitions[action.Action]
	if !ok {
		return m.refuse(session, fmt.Errorf("%w: %q", ErrUnknownAction, action.Action))
	}
	if session.Status != model.SessionPlaying {
		return m.refuse(session, ErrNotPlaying)
	}
	if !action.Actor.Valid() {
		return m.refuse(session, ErrUnknownActor)
	}
	if err := t.Validate(m, &session, &action); err != nil {
		return m.refuse(session, err)
	}

	next := session.Clone()
	msgs, err := t.Apply(m, &next, &action)
	if err != nil {
		return m.refuse(session, err)
	}
	if len(next.Moves) != len(session.Moves) {
		next.UpdatedAt = m.now()
	}
	return next, msgs, nil
}

func (m *Machine) refuse(session model.Session, err error) (model.Session, []model.Message, error) {
	return session, []model.Message{{
		Level:   model.LevelCritical,
		Code:    codeFor(err),
		Message: messageFor(err),
	}}, err
}

func codeFor(err error) string {
	var missing *catalog.MissingFieldsError
	var invalid *catalog.InvalidFieldError
	switch {
	case errors.As(err, &missing):
		return "MISSING_REQUIRED_FIELDS"
	case errors.As(err, &invalid):
		return "INVALID_FIELD_VALUE"
	case errors.Is(err, catalog.ErrCardNotFound):
		return "CARD_NOT_FOUND"
	case errors.Is(err, ErrNotPlaying):
		return "SESSION_NOT_IN_PLAY"
	case errors.Is(err, ErrUnknownAction):
		return "UNKNOWN_ACTION"
	case errors.Is(err, ErrUnknownActor):
		return "UNKNOWN_ACTOR"
	case errors.Is(err, ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, ErrProposalPending):
		return "PROPOSAL_PENDING"
	case errors.Is(err, ErrNoPendingProposal):
		return "NO_PENDING_PROPOSAL"
	case errors.Is(err, ErrMetaCard):
		return "CARD_NOT_PLAYABLE"
	case errors.Is(err, ErrCannotFinalize):
		return "CANNOT_FINALIZE"
	default:
		return "ACTION_FAILED"
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, catalog.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, ErrCannotFinalize):
		return "Both parties must reach 100 agreement points to finalize"
	default:
		return err.Error()
	}
}
