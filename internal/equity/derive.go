package equity

import (
	"strings"
	"time"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

// Effect folds one accepted card into the settlement state. Effects use only
// amounts the card states explicitly.
type Effect func(state *model.SettlementState, values fieldvalue.Values)

var effects = map[string]Effect{
	"keep-house":               keepHouse,
	"vehicle-to-party":         vehicleToParty,
	"split-account":            splitAccount,
	"qdro-split":               qdroSplit,
	"50-50-placement":          equalPlacement,
	"primary-placement":        primaryPlacement,
	"joint-legal-custody":      jointLegalCustody,
	"child-support-guidelines": childSupport,
	"spousal-maintenance":      spousalMaintenance,
	"split-debt-50-50":         splitDebt,
	"debt-to-incurring-party":  debtToParty,
	"specific-item-assignment": specificItem,
}

// EffectFor returns the financial effect registered for a card id. Cards
// without a financial consequence have none.
func EffectFor(cardID string) (Effect, bool) {
	e, ok := effects[cardID]
	return e, ok
}

// Baseline is the all-zero settlement for a session, carrying its party
// names, children and agreement points.
func Baseline(s model.Session, asOf time.Time) model.SettlementState {
	state := model.SettlementState{
		PartyA:           model.PartyFinancials{PartyID: model.PartyA, PartyName: s.PartyA.Name, FinalDecisionAuthority: []string{}},
		PartyB:           model.PartyFinancials{PartyID: model.PartyB, PartyName: s.PartyB.Name, FinalDecisionAuthority: []string{}},
		NumberOfChildren: len(s.Children),
		ChildrenAges:     make([]int, 0, len(s.Children)),
		AgreementPointsA: s.AgreementPointsA,
		AgreementPointsB: s.AgreementPointsB,
		AcceptedCards:    []string{},
	}
	for _, c := range s.Children {
		state.ChildrenAges = append(state.ChildrenAges, age(c.Birthdate.Time, asOf))
	}
	return state
}

// StateFor derives the settlement state of a session from its accepted cards.
func StateFor(s model.Session, asOf time.Time) model.SettlementState {
	return Derive(Baseline(s, asOf), s.AcceptedCards)
}

// Derive applies the effect of each card to a copy of base, in order, and
// recomputes the marital totals.
func Derive(base model.SettlementState, cards []model.PlayedCard) model.SettlementState {
	state := base
	state.ChildrenAges = append([]int(nil), base.ChildrenAges...)
	state.AcceptedCards = append([]string{}, base.AcceptedCards...)
	state.PartyA.FinalDecisionAuthority = append([]string{}, base.PartyA.FinalDecisionAuthority...)
	state.PartyB.FinalDecisionAuthority = append([]string{}, base.PartyB.FinalDecisionAuthority...)

	for _, card := range cards {
		state.AcceptedCards = append(state.AcceptedCards, card.CardID)
		if effect, ok := EffectFor(card.CardID); ok {
			effect(&state, card.CustomValues)
		}
	}

	assets := TotalAssets(state.PartyA) + TotalAssets(state.PartyB)
	debts := TotalDebts(state.PartyA) + TotalDebts(state.PartyB)
	state.TotalMaritalAssets = assets
	state.TotalMaritalDebts = debts
	state.NetMaritalEstate = assets - debts
	return state
}

func age(birth, asOf time.Time) int {
	if birth.IsZero() || asOf.Before(birth) {
		return 0
	}
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

func party(values fieldvalue.Values, id string) (model.PartyID, bool) {
	v, ok := values.Get(id)
	if !ok {
		return "", false
	}
	p := model.PartyID(strings.TrimSpace(v.String()))
	return p, p.Valid()
}

// money reads a non-negative amount; absent or negative values read as zero.
func money(values fieldvalue.Values, id string) float64 {
	v, ok := values.Get(id)
	if !ok {
		return 0
	}
	f, ok := v.Float()
	if !ok || f < 0 {
		return 0
	}
	return f
}

func percent(values fieldvalue.Values, id string) (float64, bool) {
	v, ok := values.Get(id)
	if !ok {
		return 0, false
	}
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return min(max(f, 0), 100), true
}

// keepHouse records the buyout: the keeper owes it and the other party
// receives it as cash. The residence value itself is not stated on the card.
func keepHouse(state *model.SettlementState, values fieldvalue.Values) {
	keeper, ok := party(values, "keepingParty")
	if !ok {
		return
	}
	buyout := money(values, "buyoutAmount")
	state.Party(keeper).OtherDebts += buyout
	state.Party(keeper.Other()).CashAssets += buyout
}

func vehicleToParty(state *model.SettlementState, values fieldvalue.Values) {
	p, ok := party(values, "party")
	if !ok {
		return
	}
	state.Party(p).ConsumerDebt += money(values, "debt")
}

func splitAccount(state *model.SettlementState, values fieldvalue.Values) {
	half := money(values, "balance") / 2
	investment := false
	if v, ok := values.Get("accountType"); ok {
		investment = strings.EqualFold(v.String(), "Investment")
	}
	for _, p := range []*model.PartyFinancials{&state.PartyA, &state.PartyB} {
		if investment {
			p.InvestmentValue += half
		} else {
			p.CashAssets += half
		}
	}
}

func qdroSplit(state *model.SettlementState, values fieldvalue.Values) {
	owner, ok := party(values, "accountOwner")
	if !ok {
		return
	}
	pct, ok := percent(values, "percentage")
	if !ok {
		return
	}
	balance := money(values, "balance")
	transferred := balance * pct / 100
	state.Party(owner).InvestmentValue += balance - transferred
	state.Party(owner.Other()).InvestmentValue += transferred
}

func equalPlacement(state *model.SettlementState, _ fieldvalue.Values) {
	state.PartyA.ParentingTimePercentage = 50
	state.PartyB.ParentingTimePercentage = 50
}

func primaryPlacement(state *model.SettlementState, values fieldvalue.Values) {
	primary, ok := party(values, "primaryParty")
	if !ok {
		return
	}
	pct, ok := percent(values, "percentage")
	if !ok {
		return
	}
	state.Party(primary).ParentingTimePercentage = pct
	state.Party(primary.Other()).ParentingTimePercentage = 100 - pct
}

func jointLegalCustody(state *model.SettlementState, _ fieldvalue.Values) {
	state.PartyA.HasLegalCustody = true
	state.PartyB.HasLegalCustody = true
}

func childSupport(state *model.SettlementState, values fieldvalue.Values) {
	payor, ok := party(values, "payor")
	if !ok {
		return
	}
	amount := money(values, "amount")
	state.Party(payor).ChildSupportPayable += amount
	state.Party(payor.Other()).ChildSupportReceivable += amount
}

func spousalMaintenance(state *model.SettlementState, values fieldvalue.Values) {
	payor, ok := party(values, "payor")
	if !ok {
		return
	}
	amount := money(values, "amount")
	state.Party(payor).SpousalSupportPayable += amount
	state.Party(payor.Other()).SpousalSupportReceivable += amount
}

func splitDebt(state *model.SettlementState, values fieldvalue.Values) {
	half := money(values, "amount") / 2
	state.PartyA.ConsumerDebt += half
	state.PartyB.ConsumerDebt += half
}

func debtToParty(state *model.SettlementState, values fieldvalue.Values) {
	p, ok := party(values, "responsibleParty")
	if !ok {
		return
	}
	state.Party(p).ConsumerDebt += money(values, "amount")
}

func specificItem(state *model.SettlementState, values fieldvalue.Values) {
	p, ok := party(values, "party")
	if !ok {
		return
	}
	state.Party(p).PersonalPropertyValue += money(values, "value")
}
