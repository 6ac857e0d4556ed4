package negotiation

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

var testNow = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

func newMachine() *Machine {
	n := 0
	return New(
		WithClock(func() time.Time { return testNow }),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func newSession(m *Machine) model.Session {
	return m.NewSession(model.CreateSessionRequest{
		County:       "Milwaukee",
		MarriageDate: model.NewDate(2015, time.June, 15),
		PartyA:       model.PlayerRequest{Name: "Alex"},
		PartyB:       model.PlayerRequest{Name: "Blair"},
		Children:     []model.Child{{Name: "Sam", Birthdate: model.NewDate(2017, time.August, 22)}},
	})
}

func keepHouse() map[string]any {
	return map[string]any{
		"keepingParty":      "A",
		"address":           "123 Main Street",
		"buyoutAmount":      100000.0,
		"refinanceTimeline": "180 days",
	}
}

func act(kind model.ActionKind, actor model.PartyID, cardID string, values map[string]any) model.ActionRequest {
	return model.ActionRequest{Action: kind, Actor: actor, CardID: cardID, Values: values}
}

func mustApply(t *testing.T, m *Machine, s model.Session, a model.ActionRequest) (model.Session, []model.Message) {
	t.Helper()
	next, msgs, err := m.Apply(s, a)
	if err != nil {
		t.Fatalf("%s by %s: %v", a.Action, a.Actor, err)
	}
	return next, msgs
}

func TestNewSessionDefaults(t *testing.T) {
	m := newMachine()
	s := m.NewSession(model.CreateSessionRequest{County: " Dane "})

	if s.Status != model.SessionPlaying || s.CurrentTurn != model.PartyA || s.TurnNumber != 1 {
		t.Fatalf("unexpected initial state %+v", s)
	}
	if s.PartyA.Name != "Party A" || s.PartyB.Name != "Party B" {
		t.Fatalf("expected default names, got %q/%q", s.PartyA.Name, s.PartyB.Name)
	}
	if s.County != "Dane" || s.ID != "id-1" || !s.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected session metadata %+v", s)
	}
	if s.AcceptedCards == nil || s.Moves == nil || s.Children == nil {
		t.Fatal("expected empty, non-nil collections")
	}
}

func TestPlayAndAccept(t *testing.T) {
	m := newMachine()
	s := newSession(m)

	played, msgs := mustApply(t, m, s, act(model.ActionPlay, model.PartyA, "keep-house", keepHouse()))
	if msgs[0].Message != "Keep the House proposed. Waiting for response..." {
		t.Fatalf("unexpected message %q", msgs[0].Message)
	}
	if played.CurrentTurn != model.PartyB || played.TurnNumber != 2 || played.PendingProposal == nil {
		t.Fatalf("unexpected state after play %+v", played)
	}
	if s.PendingProposal != nil || len(s.Moves) != 0 {
		t.Fatal("input session was modified")
	}
	if played.Moves[0].EquityBefore == nil {
		t.Fatal("expected equity snapshot on play")
	}
	if v, _ := played.PendingProposal.Card.CustomValues.Get("buyoutAmount"); v.Kind() != fieldvalue.KindCurrency {
		t.Fatalf("expected typed currency value, got %s", v.Kind())
	}

	accepted, msgs := mustApply(t, m, played, act(model.ActionAccept, model.PartyB, "", nil))
	if msgs[0].Message != "Keep the House accepted!" {
		t.Fatalf("unexpected message %q", msgs[0].Message)
	}
	if accepted.AgreementPointsB != 20 || accepted.AgreementPointsA != 0 {
		t.Fatalf("expected points for the accepting party, got %d/%d", accepted.AgreementPointsA, accepted.AgreementPointsB)
	}
	if accepted.PendingProposal != nil || accepted.CurrentTurn != model.PartyA || accepted.TurnNumber != 3 {
		t.Fatalf("unexpected state after accept %+v", accepted)
	}
	if len(accepted.AcceptedCards) != 1 || accepted.AcceptedCards[0].AcceptedBy != model.PartyB ||
		accepted.AcceptedCards[0].Status != model.CardAccepted {
		t.Fatalf("unexpected accepted cards %+v", accepted.AcceptedCards)
	}

	move := accepted.Moves[len(accepted.Moves)-1]
	if move.Type != model.MoveAcceptCard || move.EquityAfter == nil || move.EquityAfter.PartyBAssets != 100000 {
		t.Fatalf("unexpected accept move %+v", move)
	}
	var sawCash bool
	for _, op := range move.FinancialPatch {
		if op.Path == "/party_b/cash_assets" && op.Value == float64(100000) {
			sawCash = true
		}
	}
	if !sawCash {
		t.Fatalf("expected cash transfer in patch, got %+v", move.FinancialPatch)
	}
}

func TestPlayRefusals(t *testing.T) {
	m := newMachine()
	s := newSession(m)

	cases := []struct {
		name   string
		action model.ActionRequest
		target error
		code   string
	}{
		{"wrong turn", act(model.ActionPlay, model.PartyB, "name-change", nil), ErrNotYourTurn, "NOT_YOUR_TURN"},
		{"unknown card", act(model.ActionPlay, model.PartyA, "no-such-card", nil), catalog.ErrCardNotFound, "CARD_NOT_FOUND"},
		{"meta card", act(model.ActionPlay, model.PartyA, "equity-check", nil), ErrMetaCard, "CARD_NOT_PLAYABLE"},
		{"no proposal", act(model.ActionAccept, model.PartyA, "", nil), ErrNoPendingProposal, "NO_PENDING_PROPOSAL"},
		{"bad actor", act(model.ActionPlay, "C", "name-change", nil), ErrUnknownActor, "UNKNOWN_ACTOR"},
		{"bad action", act("shuffle", model.PartyA, "", nil), ErrUnknownAction, "UNKNOWN_ACTION"},
		{"early finalize", act(model.ActionFinalize, model.PartyA, "", nil), ErrCannotFinalize, "CANNOT_FINALIZE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, msgs, err := m.Apply(s, tc.action)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			if len(msgs) != 1 || msgs[0].Level != model.LevelCritical || msgs[0].Code != tc.code {
				t.Fatalf("unexpected messages %+v", msgs)
			}
			if next.TurnNumber != s.TurnNumber || len(next.Moves) != 0 {
				t.Fatal("refused action changed the session")
			}
		})
	}

	_, msgs, _ := m.Apply(s, act(model.ActionFinalize, model.PartyA, "", nil))
	if msgs[0].Message != "Both parties must reach 100 agreement points to finalize" {
		t.Fatalf("unexpected finalize message %q", msgs[0].Message)
	}
	_, msgs, _ = m.Apply(s, act(model.ActionPlay, model.PartyA, "no-such-card", nil))
	if msgs[0].Message != "Card not found" {
		t.Fatalf("unexpected card message %q", msgs[0].Message)
	}
}

func TestPlayMissingFields(t *testing.T) {
	m := newMachine()
	s := newSession(m)

	values := keepHouse()
	delete(values, "address")
	delete(values, "refinanceTimeline")

	next, msgs, err := m.Apply(s, act(model.ActionPlay, model.PartyA, "keep-house", values))
	var missing *catalog.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if msgs[0].Message != "Missing required fields: Property Address, Refinance Deadline" {
		t.Fatalf("unexpected message %q", msgs[0].Message)
	}
	if next.PendingProposal != nil || next.CurrentTurn != model.PartyA {
		t.Fatal("session changed after validation failure")
	}
}

func TestPendingProposalBlocksPlay(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "no-spousal-support", nil))

	if _, _, err := m.Apply(s, act(model.ActionPlay, model.PartyB, "name-change", nil)); !errors.Is(err, ErrProposalPending) {
		t.Fatalf("expected ErrProposalPending, got %v", err)
	}
	if _, _, err := m.Apply(s, act(model.ActionAccept, model.PartyA, "", nil)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("proposer must not answer their own proposal, got %v", err)
	}
}

func TestReject(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "no-spousal-support", nil))
	s, msgs := mustApply(t, m, s, model.ActionRequest{Action: model.ActionReject, Actor: model.PartyB, Message: "not yet"})

	if msgs[0].Message != "No Spousal Support rejected" {
		t.Fatalf("unexpected message %q", msgs[0].Message)
	}
	if s.PendingProposal != nil || len(s.AcceptedCards) != 0 || s.CurrentTurn != model.PartyA {
		t.Fatalf("unexpected state after reject %+v", s)
	}
	if last := s.Moves[len(s.Moves)-1]; last.Type != model.MoveRejectCard || last.Data.Message != "not yet" {
		t.Fatalf("unexpected reject move %+v", last)
	}
}

func TestModifyReturnsToProposer(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "keep-house", keepHouse()))
	s, msgs := mustApply(t, m, s, act(model.ActionModify, model.PartyB, "", map[string]any{"buyoutAmount": "$120,000"}))

	if msgs[0].Message != "Keep the House modified and returned" {
		t.Fatalf("unexpected message %q", msgs[0].Message)
	}
	p := s.PendingProposal
	if p == nil || p.Status != model.ProposalModified || p.Response == nil || p.Response.RespondedBy != model.PartyB {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if s.CurrentTurn != model.PartyA {
		t.Fatalf("expected the proposer to respond, got %s", s.CurrentTurn)
	}
	buyout, _ := p.Card.CustomValues.Get("buyoutAmount")
	address, _ := p.Card.CustomValues.Get("address")
	if f, _ := buyout.Float(); f != 120000 || address.String() != "123 Main Street" {
		t.Fatalf("expected merged values, got %v / %v", buyout, address)
	}

	s, _ = mustApply(t, m, s, act(model.ActionAccept, model.PartyA, "", nil))
	if s.AgreementPointsA != 20 || s.AgreementPointsB != 0 {
		t.Fatalf("unexpected points %d/%d", s.AgreementPointsA, s.AgreementPointsB)
	}
}

func TestModifyRejectsInvalidValues(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "keep-house", keepHouse()))
	_, _, err := m.Apply(s, act(model.ActionModify, model.PartyB, "", map[string]any{"keepingParty": "C"}))
	var invalid *catalog.InvalidFieldError
	if !errors.As(err, &invalid) || invalid.Field != "keepingParty" {
		t.Fatalf("expected invalid keepingParty, got %v", err)
	}
}

func TestCounterProposal(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "no-spousal-support", nil))
	s, msgs := mustApply(t, m, s, act(model.ActionCounter, model.PartyB, "spousal-maintenance", map[string]any{
		"payor":      "A",
		"amount":     1500,
		"duration":   "36 months",
		"modifiable": "Yes",
	}))

	if len(msgs) != 2 || msgs[0].Message != "No Spousal Support rejected" ||
		msgs[1].Message != "Spousal Maintenance proposed. Waiting for response..." {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	p := s.PendingProposal
	if p == nil || p.ProposedBy != model.PartyB || p.Card.CardID != "spousal-maintenance" {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if s.CurrentTurn != model.PartyA {
		t.Fatalf("expected original proposer to respond, got %s", s.CurrentTurn)
	}
	counter := s.Moves[len(s.Moves)-2]
	if counter.Type != model.MoveCounterPropose || counter.Data.Message != "Counter-proposed alternative" {
		t.Fatalf("unexpected counter move %+v", counter)
	}
}

func TestUndoIsRefusedWithWarning(t *testing.T) {
	m := newMachine()
	s, _ := mustApply(t, m, newSession(m), act(model.ActionPlay, model.PartyA, "no-spousal-support", nil))
	next, msgs := mustApply(t, m, s, act(model.ActionUndo, model.PartyB, "", nil))

	if len(msgs) != 1 || msgs[0].Level != model.LevelWarning ||
		msgs[0].Message != "Undo requires mutual agreement. Contact your attorney to modify the agreement." {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if len(next.Moves) != len(s.Moves) || next.PendingProposal == nil || next.TurnNumber != s.TurnNumber {
		t.Fatal("undo changed the session")
	}
}

// acceptRounds has the party to move propose a no-fields card n times and
// the other party accept each one.
func acceptRounds(t *testing.T, m *Machine, s model.Session, n int) model.Session {
	t.Helper()
	for i := 0; i < n; i++ {
		proposer := s.CurrentTurn
		s, _ = mustApply(t, m, s, act(model.ActionPlay, proposer, "no-spousal-support", nil))
		s, _ = mustApply(t, m, s, act(model.ActionAccept, proposer.Other(), "", nil))
	}
	return s
}

func TestAcceptReturnsTurnToProposer(t *testing.T) {
	m := newMachine()
	s := acceptRounds(t, m, newSession(m), 2)
	if s.CurrentTurn != model.PartyA || s.AgreementPointsB != 20 || s.AgreementPointsA != 0 || s.TurnNumber != 5 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestFinalize(t *testing.T) {
	m := newMachine()
	s := acceptRounds(t, m, newSession(m), 11)
	if s.AgreementPointsB != model.MaxAgreementPoints {
		t.Fatalf("expected points capped at 100, got %d", s.AgreementPointsB)
	}

	// A counter-proposal hands the proposing role to Party B.
	s, _ = mustApply(t, m, s, act(model.ActionPlay, model.PartyA, "no-spousal-support", nil))
	s, _ = mustApply(t, m, s, act(model.ActionCounter, model.PartyB, "name-change", nil))
	s, _ = mustApply(t, m, s, act(model.ActionAccept, model.PartyA, "", nil))
	s = acceptRounds(t, m, s, 10)
	if s.AgreementPointsA != model.MaxAgreementPoints || s.AgreementPointsB != model.MaxAgreementPoints {
		t.Fatalf("expected both parties at 100, got %d/%d", s.AgreementPointsA, s.AgreementPointsB)
	}

	pending, _ := mustApply(t, m, s, act(model.ActionPlay, s.CurrentTurn, "name-change", nil))
	if _, _, err := m.Apply(pending, act(model.ActionFinalize, model.PartyA, "", nil)); !errors.Is(err, ErrProposalPending) {
		t.Fatalf("expected ErrProposalPending, got %v", err)
	}

	done, msgs := mustApply(t, m, s, act(model.ActionFinalize, model.PartyB, "", nil))
	if done.Status != model.SessionCompleted || msgs[0].Message != "Agreement finalized! Generating document..." {
		t.Fatalf("unexpected finalize result %+v %+v", done.Status, msgs)
	}
	if _, _, err := m.Apply(done, act(model.ActionPlay, model.PartyA, "name-change", nil)); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying, got %v", err)
	}
}

func TestBuildAgreement(t *testing.T) {
	m := newMachine()
	s := newSession(m)
	s, _ = mustApply(t, m, s, act(model.ActionPlay, model.PartyA, "keep-house", keepHouse()))
	s, _ = mustApply(t, m, s, act(model.ActionAccept, model.PartyB, "", nil))
	s, _ = mustApply(t, m, s, act(model.ActionPlay, model.PartyA, "joint-legal-custody", map[string]any{"tieBreaker": "mediation"}))
	s, _ = mustApply(t, m, s, act(model.ActionAccept, model.PartyB, "", nil))
	s, _ = mustApply(t, m, s, act(model.ActionPlay, model.PartyA, "name-change", nil))
	s, _ = mustApply(t, m, s, act(model.ActionAccept, model.PartyB, "", nil))

	msa := m.BuildAgreement(s, "1.0.0")

	if msa.PartyAName != "Alex" || msa.PartyBName != "Blair" || msa.County != "Milwaukee" || msa.Version != "1.0.0" {
		t.Fatalf("unexpected header fields %+v", msa)
	}
	if len(msa.AssetDivisionTerms) != 1 || msa.AssetDivisionTerms[0].Name != "Keep the House" {
		t.Fatalf("unexpected asset terms %+v", msa.AssetDivisionTerms)
	}
	if len(msa.CustodyTerms) != 1 || len(msa.SpecialTerms) != 1 || len(msa.DebtTerms) != 0 {
		t.Fatalf("unexpected partition %+v", msa)
	}
	if msa.AssetDivisionTerms[0].AcceptedBy != "B" || msa.AssetDivisionTerms[0].PlayedBy != model.PartyA {
		t.Fatalf("unexpected provenance %+v", msa.AssetDivisionTerms[0])
	}
	if msa.EquityAnalysis.PartyBAssets != 100000 || msa.EquityAnalysis.PartyADebts != 100000 {
		t.Fatalf("unexpected analysis %+v", msa.EquityAnalysis)
	}
	if !msa.GeneratedDate.Equal(model.NewDate(2026, time.January, 10).Time) {
		t.Fatalf("unexpected generated date %v", msa.GeneratedDate)
	}
	if !strings.Contains(strings.Join(msa.EquityAnalysis.Warnings, " "), "No child support specified") {
		t.Fatalf("expected child support warning, got %v", msa.EquityAnalysis.Warnings)
	}
}
