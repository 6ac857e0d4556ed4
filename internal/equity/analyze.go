// Package equity scores how evenly a settlement divides the marital estate
// and reports Wisconsin compliance diagnostics.
package equity

import (
	"fmt"
	"math"
	"strings"

	"github.com/tbcolby/settlement-game/internal/legaltext"
	"github.com/tbcolby/settlement-game/internal/model"
)

const (
	errorDeviation     = 30.0
	warningDeviation   = 15.0
	rebalanceDeviation = 10.0
	sharedPlacementMin = 25.0
	minProvisionCount  = 5
)

var requiredProvisions = []string{
	"Asset division",
	"Debt division",
	"Name change rights",
	"Tax filing",
	"Health insurance (if children)",
}

func TotalAssets(p model.PartyFinancials) float64 {
	return p.CashAssets +
		p.PropertyValue +
		p.InvestmentValue +
		p.BusinessValue +
		p.PersonalPropertyValue +
		p.OtherAssets
}

func TotalDebts(p model.PartyFinancials) float64 {
	return p.MortgageDebt +
		p.ConsumerDebt +
		p.StudentLoanDebt +
		p.BusinessDebt +
		p.OtherDebts
}

// Analyze computes the net-worth split, equity score and diagnostics. It is
// pure and deterministic.
func Analyze(state model.SettlementState) model.EquityAnalysis {
	a := model.EquityAnalysis{
		PartyAAssets: TotalAssets(state.PartyA),
		PartyBAssets: TotalAssets(state.PartyB),
		PartyADebts:  TotalDebts(state.PartyA),
		PartyBDebts:  TotalDebts(state.PartyB),
	}
	a.PartyANetWorth = a.PartyAAssets - a.PartyADebts
	a.PartyBNetWorth = a.PartyBAssets - a.PartyBDebts

	a.PartyAPercentage = 50
	if total := a.PartyANetWorth + a.PartyBNetWorth; total > 0 {
		a.PartyAPercentage = a.PartyANetWorth / total * 100
	}
	if math.IsNaN(a.PartyAPercentage) || math.IsInf(a.PartyAPercentage, 0) {
		a.PartyAPercentage = 50
	}
	a.PartyBPercentage = 100 - a.PartyAPercentage

	a.DeviationFromEqual = math.Abs(50 - a.PartyAPercentage)
	a.EquityScore = math.Max(0, 100-a.DeviationFromEqual*2)

	a.Warnings, a.Errors, a.Suggestions = diagnose(state, a)
	a.IsCompliant = len(a.Errors) == 0
	return a
}

func diagnose(state model.SettlementState, a model.EquityAnalysis) (warnings, errs, suggestions []string) {
	warnings, errs, suggestions = []string{}, []string{}, []string{}
	deviation := a.DeviationFromEqual

	switch {
	case deviation > errorDeviation:
		errs = append(errs, fmt.Sprintf(
			"Asset division is heavily skewed (%s%% / %s%%). Wisconsin law presumes equal division unless justified by specific factors.",
			legaltext.Fixed(a.PartyAPercentage, 1), legaltext.Fixed(a.PartyBPercentage, 1)))
	case deviation > warningDeviation:
		warnings = append(warnings,
			"Asset division deviates significantly from 50/50 split. Consider whether this can be justified under Wisconsin §767.61.")
	}

	hasChildren := state.NumberOfChildren > 0
	if hasChildren && state.PartyA.ParentingTimePercentage == 0 && state.PartyB.ParentingTimePercentage == 0 {
		errs = append(errs, "No custody/placement arrangement specified for minor children.")
	}

	if hasChildren {
		hasSupport := state.PartyA.ChildSupportPayable > 0 || state.PartyB.ChildSupportPayable > 0
		shared := state.PartyA.ParentingTimePercentage >= sharedPlacementMin &&
			state.PartyB.ParentingTimePercentage >= sharedPlacementMin
		if !hasSupport && !shared {
			warnings = append(warnings,
				"No child support specified. Wisconsin requires child support unless parties have equal shared placement and similar incomes.")
		}
	}

	if state.AgreementPointsA < model.MaxAgreementPoints || state.AgreementPointsB < model.MaxAgreementPoints {
		suggestions = append(suggestions, fmt.Sprintf(
			"Agreement is %d%% complete. Both parties must reach 100%% agreement points to finalize.",
			min(state.AgreementPointsA, state.AgreementPointsB)))
	}

	if deviation > rebalanceDeviation && deviation <= warningDeviation {
		disadvantaged := model.PartyA
		if a.PartyAPercentage > 50 {
			disadvantaged = model.PartyB
		}
		suggestions = append(suggestions, fmt.Sprintf(
			"Consider additional assets or spousal support to Party %s to achieve a more balanced settlement.", disadvantaged))
	}

	if len(state.AcceptedCards) < minProvisionCount {
		suggestions = append(suggestions,
			"Ensure agreement includes all required provisions: "+strings.Join(requiredProvisions, ", "))
	}
	return warnings, errs, suggestions
}

// MonthlyObligations totals one party's support obligations. A positive net
// obligation means the party pays.
func MonthlyObligations(p model.PartyFinancials) model.MonthlyObligations {
	var o model.MonthlyObligations
	o.Breakdown = []string{}

	line := func(label string, v float64) {
		o.Breakdown = append(o.Breakdown, fmt.Sprintf("%s: $%s/mo", label, legaltext.Fixed(v, 2)))
	}
	if p.ChildSupportPayable > 0 {
		o.TotalPayable += p.ChildSupportPayable
		line("Child support payable", p.ChildSupportPayable)
	}
	if p.ChildSupportReceivable > 0 {
		o.TotalReceivable += p.ChildSupportReceivable
		line("Child support receivable", p.ChildSupportReceivable)
	}
	if p.SpousalSupportPayable > 0 {
		o.TotalPayable += p.SpousalSupportPayable
		line("Spousal support payable", p.SpousalSupportPayable)
	}
	if p.SpousalSupportReceivable > 0 {
		o.TotalReceivable += p.SpousalSupportReceivable
		line("Spousal support receivable", p.SpousalSupportReceivable)
	}
	o.NetObligation = o.TotalPayable - o.TotalReceivable
	return o
}
