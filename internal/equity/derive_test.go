package equity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

func played(cardID string, values fieldvalue.Values) model.PlayedCard {
	return model.PlayedCard{CardID: cardID, CustomValues: values, Status: model.CardAccepted}
}

func usd(v int64) fieldvalue.Value { return fieldvalue.Currency(decimal.NewFromInt(v)) }

func pct(v int64) fieldvalue.Value { return fieldvalue.Percentage(decimal.NewFromInt(v)) }

func TestDeriveAppliesStatedAmounts(t *testing.T) {
	cards := []model.PlayedCard{
		played("keep-house", fieldvalue.Values{
			"keepingParty": fieldvalue.Select("A"),
			"buyoutAmount": usd(100000),
		}),
		played("split-account", fieldvalue.Values{
			"accountType": fieldvalue.Select("Savings"),
			"balance":     usd(30000),
		}),
		played("qdro-split", fieldvalue.Values{
			"accountOwner": fieldvalue.Select("B"),
			"balance":      usd(200000),
			"percentage":   pct(25),
		}),
		played("split-debt-50-50", fieldvalue.Values{"amount": usd(8000)}),
		played("debt-to-incurring-party", fieldvalue.Values{
			"responsibleParty": fieldvalue.Select("B"),
			"amount":           usd(12000),
		}),
		played("specific-item-assignment", fieldvalue.Values{
			"party": fieldvalue.Select("A"),
			"value": usd(2500),
		}),
		played("name-change", nil),
	}

	s := Derive(model.SettlementState{}, cards)

	if s.PartyA.OtherDebts != 100000 || s.PartyB.CashAssets != 100000+15000 {
		t.Fatalf("unexpected buyout effect: A other debts %v, B cash %v", s.PartyA.OtherDebts, s.PartyB.CashAssets)
	}
	if s.PartyA.CashAssets != 15000 {
		t.Fatalf("expected half the account to A, got %v", s.PartyA.CashAssets)
	}
	if s.PartyA.InvestmentValue != 50000 || s.PartyB.InvestmentValue != 150000 {
		t.Fatalf("unexpected QDRO split: A %v, B %v", s.PartyA.InvestmentValue, s.PartyB.InvestmentValue)
	}
	if s.PartyA.ConsumerDebt != 4000 || s.PartyB.ConsumerDebt != 16000 {
		t.Fatalf("unexpected consumer debt: A %v, B %v", s.PartyA.ConsumerDebt, s.PartyB.ConsumerDebt)
	}
	if s.PartyA.PersonalPropertyValue != 2500 {
		t.Fatalf("expected item value, got %v", s.PartyA.PersonalPropertyValue)
	}
	if len(s.AcceptedCards) != len(cards) {
		t.Fatalf("expected every card id recorded, got %v", s.AcceptedCards)
	}

	wantAssets := 15000 + 50000 + 2500 + 115000 + 150000.0
	wantDebts := 100000 + 4000 + 16000.0
	if s.TotalMaritalAssets != wantAssets || s.TotalMaritalDebts != wantDebts {
		t.Fatalf("unexpected totals: assets %v debts %v", s.TotalMaritalAssets, s.TotalMaritalDebts)
	}
	if s.NetMaritalEstate != wantAssets-wantDebts {
		t.Fatalf("unexpected net estate %v", s.NetMaritalEstate)
	}
}

func TestDeriveCustodyAndSupport(t *testing.T) {
	s := Derive(model.SettlementState{NumberOfChildren: 1}, []model.PlayedCard{
		played("primary-placement", fieldvalue.Values{"primaryParty": fieldvalue.Select("B"), "percentage": pct(70)}),
		played("joint-legal-custody", nil),
		played("child-support-guidelines", fieldvalue.Values{"payor": fieldvalue.Select("A"), "amount": usd(900)}),
		played("spousal-maintenance", fieldvalue.Values{"payor": fieldvalue.Select("B"), "amount": usd(400)}),
	})

	if s.PartyB.ParentingTimePercentage != 70 || s.PartyA.ParentingTimePercentage != 30 {
		t.Fatalf("unexpected placement %v/%v", s.PartyA.ParentingTimePercentage, s.PartyB.ParentingTimePercentage)
	}
	if !s.PartyA.HasLegalCustody || !s.PartyB.HasLegalCustody {
		t.Fatal("expected joint legal custody")
	}
	if s.PartyA.ChildSupportPayable != 900 || s.PartyB.ChildSupportReceivable != 900 {
		t.Fatalf("unexpected child support %+v", s)
	}
	if s.PartyB.SpousalSupportPayable != 400 || s.PartyA.SpousalSupportReceivable != 400 {
		t.Fatalf("unexpected maintenance %+v", s)
	}

	a := Analyze(s)
	if len(a.Errors) != 0 {
		t.Fatalf("expected no custody errors, got %v", a.Errors)
	}
}

func TestDeriveDoesNotMutateBase(t *testing.T) {
	base := model.SettlementState{AcceptedCards: []string{"existing"}, ChildrenAges: []int{4}}
	_ = Derive(base, []model.PlayedCard{played("split-debt-50-50", fieldvalue.Values{"amount": usd(100)})})
	if len(base.AcceptedCards) != 1 || base.PartyA.ConsumerDebt != 0 {
		t.Fatalf("base was mutated: %+v", base)
	}
}

func TestDeriveIgnoresIncompleteValues(t *testing.T) {
	s := Derive(model.SettlementState{}, []model.PlayedCard{
		played("keep-house", fieldvalue.Values{"buyoutAmount": usd(5000)}),
		played("qdro-split", fieldvalue.Values{"accountOwner": fieldvalue.Select("A"), "balance": usd(1000)}),
		played("unknown-card", fieldvalue.Values{"amount": usd(1)}),
	})
	if TotalAssets(s.PartyA)+TotalAssets(s.PartyB) != 0 || TotalDebts(s.PartyA)+TotalDebts(s.PartyB) != 0 {
		t.Fatalf("expected no financial effect, got %+v", s)
	}
}

func TestStateForSession(t *testing.T) {
	session := model.Session{
		PartyA:           model.Player{ID: model.PartyA, Name: "Alex"},
		PartyB:           model.Player{ID: model.PartyB, Name: "Blair"},
		Children:         []model.Child{{Name: "Sam", Birthdate: model.NewDate(2017, time.August, 22)}},
		AgreementPointsA: 30,
		AgreementPointsB: 45,
		AcceptedCards: []model.PlayedCard{
			played("50-50-placement", nil),
		},
	}
	s := StateFor(session, time.Date(2026, time.August, 21, 0, 0, 0, 0, time.UTC))

	if s.PartyA.PartyName != "Alex" || s.PartyB.PartyName != "Blair" {
		t.Fatalf("unexpected names %q/%q", s.PartyA.PartyName, s.PartyB.PartyName)
	}
	if s.NumberOfChildren != 1 || len(s.ChildrenAges) != 1 || s.ChildrenAges[0] != 8 {
		t.Fatalf("expected one child aged 8, got %v", s.ChildrenAges)
	}
	if s.AgreementPointsA != 30 || s.AgreementPointsB != 45 {
		t.Fatalf("unexpected points %d/%d", s.AgreementPointsA, s.AgreementPointsB)
	}
	if s.PartyA.ParentingTimePercentage != 50 {
		t.Fatalf("expected placement effect, got %v", s.PartyA.ParentingTimePercentage)
	}
}
