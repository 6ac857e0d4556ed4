package negotiation

import (
	"fmt"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/equity"
	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/jsonpatch"
	"github.com/tbcolby/settlement-game/internal/model"
)

// transition is one kind of party action. Validate checks the protocol
// preconditions against the current session; Apply mutates a private copy.
type transition interface {
	Validate(m *Machine, s *model.Session, a *model.ActionRequest) error
	Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error)
}

var transitions = map[model.ActionKind]transition{
	model.ActionPlay:     playCard{},
	model.ActionAccept:   acceptProposal{},
	model.ActionReject:   rejectProposal{},
	model.ActionModify:   modifyProposal{},
	model.ActionCounter:  counterPropose{},
	model.ActionUndo:     undoMove{},
	model.ActionFinalize: finalize{},
}

func info(code, msg string) model.Message {
	return model.Message{Level: model.LevelInfo, Code: code, Message: msg}
}

// pass hands the turn to the other party.
func pass(s *model.Session) {
	s.CurrentTurn = s.CurrentTurn.Other()
	s.TurnNumber++
}

func onTurn(s *model.Session, a *model.ActionRequest) error {
	if a.Actor != s.CurrentTurn {
		return fmt.Errorf("%w: party %s to move", ErrNotYourTurn, s.CurrentTurn)
	}
	return nil
}

// responding checks that a proposal is outstanding and that the actor is
// the party it awaits.
func responding(s *model.Session, a *model.ActionRequest) error {
	if s.PendingProposal == nil {
		return ErrNoPendingProposal
	}
	return onTurn(s, a)
}

// playable resolves a card and types its raw values against the card's
// field specs.
func (m *Machine) playable(cardID string, raw map[string]any) (model.CardDefinition, fieldvalue.Values, error) {
	def, err := m.cards.Lookup(cardID)
	if err != nil {
		return model.CardDefinition{}, nil, err
	}
	if def.Category == model.CategoryMeta {
		return model.CardDefinition{}, nil, fmt.Errorf("%w: %s", ErrMetaCard, def.ID)
	}
	values, err := catalog.ValidateValues(def, raw)
	if err != nil {
		return model.CardDefinition{}, nil, err
	}
	return def, values, nil
}

func (m *Machine) analyze(s *model.Session) (model.SettlementState, model.EquityAnalysis) {
	state := equity.StateFor(*s, m.now())
	return state, equity.Analyze(state)
}

// propose puts card on the table as the pending proposal of actor.
func (m *Machine) propose(s *model.Session, actor model.PartyID, def model.CardDefinition, values fieldvalue.Values) model.Message {
	now := m.now()
	_, before := m.analyze(s)

	proposal := &model.Proposal{
		ID: m.newID(),
		Card: model.PlayedCard{
			ID:           m.newID(),
			CardID:       def.ID,
			PlayedBy:     actor,
			PlayedAt:     now,
			CustomValues: values,
			Status:       model.CardPending,
		},
		ProposedBy: actor,
		ProposedAt: now,
		Status:     model.ProposalPending,
	}
	s.PendingProposal = proposal
	s.Moves = append(s.Moves, model.Move{
		ID:           m.newID(),
		Type:         model.MovePlayCard,
		Player:       actor,
		Timestamp:    now,
		Data:         model.MoveData{CardID: def.ID, ProposalID: proposal.ID, Values: values},
		EquityBefore: &before,
	})
	pass(s)
	return info("CARD_PROPOSED", def.Name+" proposed. Waiting for response...")
}

func (m *Machine) pendingCard(s *model.Session) (model.CardDefinition, error) {
	return m.cards.Lookup(s.PendingProposal.Card.CardID)
}

type playCard struct{}

func (playCard) Validate(_ *Machine, s *model.Session, a *model.ActionRequest) error {
	if err := onTurn(s, a); err != nil {
		return err
	}
	if s.PendingProposal != nil {
		return ErrProposalPending
	}
	return nil
}

func (playCard) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	def, values, err := m.playable(a.CardID, a.Values)
	if err != nil {
		return nil, err
	}
	return []model.Message{m.propose(s, a.Actor, def, values)}, nil
}

type acceptProposal struct{}

func (acceptProposal) Validate(_ *Machine, s *model.Session, a *model.ActionRequest) error {
	return responding(s, a)
}

func (acceptProposal) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	def, err := m.pendingCard(s)
	if err != nil {
		return nil, err
	}
	now := m.now()
	beforeState, before := m.analyze(s)

	proposal := s.PendingProposal
	card := proposal.Card
	card.Status = model.CardAccepted
	card.AcceptedBy = a.Actor
	card.AcceptedAt = &now
	s.AcceptedCards = append(s.AcceptedCards, card)

	// Points go to the accepting party.
	switch a.Actor {
	case model.PartyA:
		s.AgreementPointsA = min(s.AgreementPointsA+def.AgreementPoints, model.MaxAgreementPoints)
	case model.PartyB:
		s.AgreementPointsB = min(s.AgreementPointsB+def.AgreementPoints, model.MaxAgreementPoints)
	}

	afterState, after := m.analyze(s)
	patch, err := jsonpatch.Between(beforeState, afterState)
	if err != nil {
		return nil, fmt.Errorf("diff settlement: %w", err)
	}

	s.Moves = append(s.Moves, model.Move{
		ID:             m.newID(),
		Type:           model.MoveAcceptCard,
		Player:         a.Actor,
		Timestamp:      now,
		Data:           model.MoveData{CardID: card.CardID, ProposalID: proposal.ID, Message: a.Message},
		EquityBefore:   &before,
		EquityAfter:    &after,
		FinancialPatch: patch,
	})
	s.PendingProposal = nil
	pass(s)
	return []model.Message{info("CARD_ACCEPTED", def.Name+" accepted!")}, nil
}

type rejectProposal struct{}

func (rejectProposal) Validate(_ *Machine, s *model.Session, a *model.ActionRequest) error {
	return responding(s, a)
}

func (rejectProposal) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	def, err := m.pendingCard(s)
	if err != nil {
		return nil, err
	}
	s.Moves = append(s.Moves, model.Move{
		ID:        m.newID(),
		Type:      model.MoveRejectCard,
		Player:    a.Actor,
		Timestamp: m.now(),
		Data:      model.MoveData{CardID: def.ID, ProposalID: s.PendingProposal.ID, Message: a.Message},
	})
	s.PendingProposal = nil
	pass(s)
	return []model.Message{info("CARD_REJECTED", def.Name+" rejected")}, nil
}

type modifyProposal struct{}

func (modifyProposal) Validate(_ *Machine, s *model.Session, a *model.ActionRequest) error {
	return responding(s, a)
}

// Apply overlays the new values on the proposed ones, so a modification may
// name only the fields it changes.
func (modifyProposal) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	def, err := m.pendingCard(s)
	if err != nil {
		return nil, err
	}

	proposal := *s.PendingProposal
	raw := make(map[string]any, len(proposal.Card.CustomValues)+len(a.Values))
	for id, v := range proposal.Card.CustomValues {
		raw[id] = v
	}
	for id, v := range a.Values {
		raw[id] = v
	}
	values, err := catalog.ValidateValues(def, raw)
	if err != nil {
		return nil, err
	}

	now := m.now()
	proposal.Card.CustomValues = values
	proposal.Status = model.ProposalModified
	proposal.Response = &model.ProposalResponse{
		Action:         model.ProposalModify,
		RespondedBy:    a.Actor,
		RespondedAt:    now,
		ModifiedValues: values,
		Message:        a.Message,
	}
	s.PendingProposal = &proposal
	s.Moves = append(s.Moves, model.Move{
		ID:        m.newID(),
		Type:      model.MoveModifyCard,
		Player:    a.Actor,
		Timestamp: now,
		Data:      model.MoveData{CardID: def.ID, ProposalID: proposal.ID, Values: values, Message: a.Message},
	})
	pass(s)
	return []model.Message{info("CARD_MODIFIED", def.Name+" modified and returned")}, nil
}

const counterMessage = "Counter-proposed alternative"

type counterPropose struct{}

func (counterPropose) Validate(_ *Machine, s *model.Session, a *model.ActionRequest) error {
	return responding(s, a)
}

// Apply declines the pending proposal and puts the actor's alternative on
// the table in one step. The other party responds next.
func (counterPropose) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	old, err := m.pendingCard(s)
	if err != nil {
		return nil, err
	}
	def, values, err := m.playable(a.CardID, a.Values)
	if err != nil {
		return nil, err
	}

	note := a.Message
	if note == "" {
		note = counterMessage
	}
	s.Moves = append(s.Moves, model.Move{
		ID:        m.newID(),
		Type:      model.MoveCounterPropose,
		Player:    a.Actor,
		Timestamp: m.now(),
		Data:      model.MoveData{CardID: def.ID, ProposalID: s.PendingProposal.ID, Values: values, Message: note},
	})
	s.PendingProposal = nil
	s.TurnNumber++

	return []model.Message{
		info("CARD_REJECTED", old.Name+" rejected"),
		m.propose(s, a.Actor, def, values),
	}, nil
}

type undoMove struct{}

func (undoMove) Validate(*Machine, *model.Session, *model.ActionRequest) error { return nil }

func (undoMove) Apply(*Machine, *model.Session, *model.ActionRequest) ([]model.Message, error) {
	return []model.Message{{
		Level:   model.LevelWarning,
		Code:    "UNDO_REQUIRES_AGREEMENT",
		Message: "Undo requires mutual agreement. Contact your attorney to modify the agreement.",
	}}, nil
}

type finalize struct{}

func (finalize) Validate(_ *Machine, s *model.Session, _ *model.ActionRequest) error {
	if !s.CanFinalize() {
		return ErrCannotFinalize
	}
	if s.PendingProposal != nil {
		return ErrProposalPending
	}
	return nil
}

func (finalize) Apply(m *Machine, s *model.Session, a *model.ActionRequest) ([]model.Message, error) {
	s.Status = model.SessionCompleted
	s.Moves = append(s.Moves, model.Move{
		ID:        m.newID(),
		Type:      model.MoveFinalize,
		Player:    a.Actor,
		Timestamp: m.now(),
		Data:      model.MoveData{Message: a.Message},
	})
	return []model.Message{info("AGREEMENT_FINALIZED", "Agreement finalized! Generating document...")}, nil
}
