package model

import (
	"time"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
)

type SessionStatus string

const (
	SessionSetup     SessionStatus = "setup"
	SessionPlaying   SessionStatus = "playing"
	SessionCompleted SessionStatus = "completed"
)

// MaxAgreementPoints is the per-party points needed to finalize.
const MaxAgreementPoints = 100

type Player struct {
	ID    PartyID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
}

type Incomes struct {
	PartyA float64 `json:"party_a"`
	PartyB float64 `json:"party_b"`
}

type MoveType string

const (
	MovePlayCard       MoveType = "play-card"
	MoveAcceptCard     MoveType = "accept-card"
	MoveRejectCard     MoveType = "reject-card"
	MoveModifyCard     MoveType = "modify-card"
	MoveCounterPropose MoveType = "counter-propose"
	MoveUndo           MoveType = "undo"
	MoveMessage        MoveType = "message"
	MoveFinalize       MoveType = "finalize"
)

type MoveData struct {
	CardID     string            `json:"card_id,omitempty"`
	ProposalID string            `json:"proposal_id,omitempty"`
	Values     fieldvalue.Values `json:"values,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// PatchOp is one RFC 6902 operation.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

type Move struct {
	ID             string          `json:"id"`
	Type           MoveType        `json:"type"`
	Player         PartyID         `json:"player"`
	Timestamp      time.Time       `json:"timestamp"`
	Data           MoveData        `json:"data"`
	EquityBefore   *EquityAnalysis `json:"equity_before,omitempty"`
	EquityAfter    *EquityAnalysis `json:"equity_after,omitempty"`
	FinancialPatch []PatchOp       `json:"financial_patch,omitempty"`
}

// Session is one negotiation game. Transitions never mutate a Session in
// place; they return a new value.
type Session struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Status    SessionStatus `json:"status"`

	County         string `json:"county"`
	CaseNumber     string `json:"case_number,omitempty"`
	MarriageDate   Date   `json:"marriage_date"`
	SeparationDate *Date  `json:"separation_date,omitempty"`

	PartyA   Player  `json:"party_a"`
	PartyB   Player  `json:"party_b"`
	Children []Child `json:"children"`
	Incomes  Incomes `json:"incomes"`

	CurrentTurn PartyID `json:"current_turn"`
	TurnNumber  int     `json:"turn_number"`

	AgreementPointsA int `json:"agreement_points_a"`
	AgreementPointsB int `json:"agreement_points_b"`

	AcceptedCards   []PlayedCard `json:"accepted_cards"`
	PendingProposal *Proposal    `json:"pending_proposal,omitempty"`
	Moves           []Move       `json:"move_history"`
}

// CanFinalize reports whether both parties reached the points threshold.
func (s Session) CanFinalize() bool {
	return s.AgreementPointsA >= MaxAgreementPoints && s.AgreementPointsB >= MaxAgreementPoints
}

// Player returns the player record for id.
func (s Session) Player(id PartyID) Player {
	if id == PartyB {
		return s.PartyB
	}
	return s.PartyA
}

// Clone copies every slice and pointer the transitions append to or replace.
func (s Session) Clone() Session {
	out := s
	out.Children = append([]Child(nil), s.Children...)
	out.AcceptedCards = append([]PlayedCard(nil), s.AcceptedCards...)
	out.Moves = append([]Move(nil), s.Moves...)
	if s.SeparationDate != nil {
		d := *s.SeparationDate
		out.SeparationDate = &d
	}
	if s.PendingProposal != nil {
		p := *s.PendingProposal
		out.PendingProposal = &p
	}
	return out
}
