package document

import (
	"fmt"
	"strings"

	"github.com/tbcolby/settlement-game/internal/legaltext"
	"github.com/tbcolby/settlement-game/internal/model"
)

var rule = strings.Repeat("━", 74)

// Summary renders the one-page cover sheet that accompanies the agreement.
func Summary(msa model.MaritalSettlementAgreement) string {
	a := msa.EquityAnalysis

	caseNumber := msa.CaseNumber
	if strings.TrimSpace(caseNumber) == "" {
		caseNumber = "TBD"
	}

	var b strings.Builder
	b.WriteString("\nMARITAL SETTLEMENT AGREEMENT SUMMARY\n")
	fmt.Fprintf(&b, "%s vs. %s\n", msa.PartyAName, msa.PartyBName)
	fmt.Fprintf(&b, "Case No. %s\n", caseNumber)
	fmt.Fprintf(&b, "Generated: %s\n\n", legaltext.LongDate(msa.GeneratedDate.Time))
	fmt.Fprintf(&b, "%s\n\nFINANCIAL SUMMARY\n\n", rule)

	writePartyTotals(&b, "Party A", a.PartyAAssets, a.PartyADebts, a.PartyANetWorth, a.PartyAPercentage)
	b.WriteString("\n")
	writePartyTotals(&b, "Party B", a.PartyBAssets, a.PartyBDebts, a.PartyBNetWorth, a.PartyBPercentage)

	compliance := "⚠️ ISSUES FOUND"
	if a.IsCompliant {
		compliance = "✅ COMPLIANT"
	}
	fmt.Fprintf(&b, "\nEquity Score: %s/100\n", legaltext.Fixed(a.EquityScore, 1))
	fmt.Fprintf(&b, "Wisconsin Compliance: %s\n\n", compliance)

	fmt.Fprintf(&b, "%s\n\nKEY TERMS\n\n", rule)
	b.WriteString(provisionCount("Custody", len(msa.CustodyTerms), "No custody provisions") + "\n")
	b.WriteString(provisionCount("Support", len(msa.SupportTerms), "No support provisions") + "\n")
	fmt.Fprintf(&b, "Property Division: %d provision(s)\n", len(msa.AssetDivisionTerms)+len(msa.PropertyTerms))
	fmt.Fprintf(&b, "Debt Division: %d provision(s)\n", len(msa.DebtTerms))
	b.WriteString(provisionCount("Future Obligations", len(msa.FutureObligationTerms), "") + "\n\n")

	fmt.Fprintf(&b, "%s\n\n", rule)
	b.WriteString(findings("ERRORS REQUIRING ATTENTION:", "  ❌ ", a.Errors))
	b.WriteString("\n\n")
	b.WriteString(findings("WARNINGS:", "  ⚠️  ", a.Warnings))
	b.WriteString("\n\n")
	b.WriteString(findings("SUGGESTIONS:", "  💡 ", a.Suggestions))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s\n\nIMPORTANT NOTICES:\n\n", rule)
	b.WriteString(`⚖️  This document was generated through Settlement Game, a collaborative
   divorce settlement tool. It MUST be reviewed by qualified legal counsel
   before filing with the court.

📋 Both parties should have independent legal representation review this
   agreement to ensure their rights and interests are protected.

✍️  This is a draft document. Signatures are not valid until reviewed by
   attorneys and properly executed.

`)
	fmt.Fprintf(&b, "🏛️  Filing with %s County Circuit Court requires additional\n", msa.County)
	b.WriteString("   forms and procedures. Consult with your attorney.\n\n")
	fmt.Fprintf(&b, "%s\n\nGenerated by Settlement Game v%s\n", rule, msa.Version)

	return b.String()
}

func writePartyTotals(b *strings.Builder, label string, assets, debts, net, pct float64) {
	fmt.Fprintf(b, "%s Receives:\n", label)
	fmt.Fprintf(b, "  • Assets: %s\n", legaltext.Dollars(assets))
	fmt.Fprintf(b, "  • Debts: %s\n", legaltext.Dollars(debts))
	fmt.Fprintf(b, "  • Net: %s (%s%%)\n", legaltext.Dollars(net), legaltext.Fixed(pct, 1))
}

func provisionCount(label string, n int, none string) string {
	if n == 0 {
		return none
	}
	return fmt.Sprintf("%s: %d provision(s)", label, n)
}

// findings renders a titled list, or nothing when items is empty.
func findings(title, bullet string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = bullet + item
	}
	return "\n" + title + "\n" + strings.Join(lines, "\n") + "\n"
}
