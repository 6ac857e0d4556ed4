package equity

import (
	"fmt"
	"math"
	"strings"

	"github.com/tbcolby/settlement-game/internal/legaltext"
	"github.com/tbcolby/settlement-game/internal/model"
)

// Summary renders a plain-text report of the analysis. Output depends only
// on its inputs.
func Summary(state model.SettlementState, a model.EquityAnalysis) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("=== SETTLEMENT SUMMARY ===\n")

	add("ASSET DIVISION:")
	add("  Party A receives: %s in assets", legaltext.Dollars(a.PartyAAssets))
	add("  Party A assumes: %s in debts", legaltext.Dollars(a.PartyADebts))
	add("  Party A net: %s (%s%%)", legaltext.Dollars(a.PartyANetWorth), legaltext.Fixed(a.PartyAPercentage, 1))
	add("")
	add("  Party B receives: %s in assets", legaltext.Dollars(a.PartyBAssets))
	add("  Party B assumes: %s in debts", legaltext.Dollars(a.PartyBDebts))
	add("  Party B net: %s (%s%%)", legaltext.Dollars(a.PartyBNetWorth), legaltext.Fixed(a.PartyBPercentage, 1))
	add("")

	if state.NumberOfChildren > 0 {
		add("PARENTING TIME:")
		add("  Party A: %s%%", legaltext.Number(state.PartyA.ParentingTimePercentage))
		add("  Party B: %s%%", legaltext.Number(state.PartyB.ParentingTimePercentage))
		add("")

		obligationsA := MonthlyObligations(state.PartyA)
		obligationsB := MonthlyObligations(state.PartyB)
		if len(obligationsA.Breakdown) > 0 || len(obligationsB.Breakdown) > 0 {
			add("MONTHLY OBLIGATIONS:")
			for _, o := range []struct {
				party model.PartyID
				net   float64
			}{{model.PartyA, obligationsA.NetObligation}, {model.PartyB, obligationsB.NetObligation}} {
				if o.net == 0 {
					continue
				}
				action := "receives"
				if o.net > 0 {
					action = "pays"
				}
				add("  Party %s %s: $%s/month", o.party, action, legaltext.Fixed(math.Abs(o.net), 2))
			}
			add("")
		}
	}

	add("FAIRNESS ANALYSIS:")
	add("  Equity Score: %s/100", legaltext.Fixed(a.EquityScore, 1))
	add("  Deviation from Equal: %s percentage points", legaltext.Fixed(a.DeviationFromEqual, 1))
	if a.IsCompliant {
		add("  Wisconsin Compliance: ✅ Compliant")
	} else {
		add("  Wisconsin Compliance: ⚠️ Issues found")
	}
	add("")

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		add("%s", title)
		for _, item := range items {
			add("  - %s", item)
		}
		add("")
	}
	section("❌ ERRORS:", a.Errors)
	section("⚠️  WARNINGS:", a.Warnings)
	section("💡 SUGGESTIONS:", a.Suggestions)

	add("AGREEMENT PROGRESS:")
	add("  Party A: %d/100 points", state.AgreementPointsA)
	add("  Party B: %d/100 points", state.AgreementPointsB)

	if state.AgreementPointsA >= model.MaxAgreementPoints && state.AgreementPointsB >= model.MaxAgreementPoints {
		add("\n✅ Both parties ready to finalize agreement!")
	}

	return strings.Join(lines, "\n")
}
