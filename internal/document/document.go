// Package document renders a marital settlement agreement and its cover
// sheet from accepted terms.
//
// Rendering never fails: absent values degrade to bracketed tokens,
// underscores or fallback sentences so a draft can always be previewed.
package document

import (
	"fmt"
	"strings"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/legaltext"
	"github.com/tbcolby/settlement-game/internal/model"
)

const (
	blankCaseNumber = "______________"
	signatureLine   = "_____________________________                    Date: ______________"
)

// Generate renders the full agreement text.
func Generate(msa model.MaritalSettlementAgreement) string {
	var b strings.Builder

	writeHeader(&b, msa)

	writeArticle(&b, "ARTICLE I - CUSTODY AND PLACEMENT", msa.CustodyTerms,
		"The parties have no minor children.")
	writeArticle(&b, "ARTICLE II - CHILD SUPPORT AND MAINTENANCE", msa.SupportTerms,
		"No child support or maintenance is payable by either party.")

	property := make([]model.AgreementTerm, 0, len(msa.AssetDivisionTerms)+len(msa.PropertyTerms))
	property = append(property, msa.AssetDivisionTerms...)
	property = append(property, msa.PropertyTerms...)
	writeArticle(&b, "ARTICLE III - DIVISION OF PROPERTY", property,
		"The parties have divided all marital property to their mutual satisfaction.")

	writeArticle(&b, "ARTICLE IV - DIVISION OF DEBTS", msa.DebtTerms,
		"The parties have no marital debts, or have divided all marital debts to their mutual satisfaction.")

	if len(msa.FutureObligationTerms) > 0 {
		writeArticle(&b, "ARTICLE V - FUTURE OBLIGATIONS", msa.FutureObligationTerms, "")
	}
	if len(msa.SpecialTerms) > 0 {
		writeArticle(&b, "ARTICLE VI - SPECIAL PROVISIONS", msa.SpecialTerms, "")
	}

	writeGeneralProvisions(&b, msa)
	writeSignatures(&b, msa)

	return b.String()
}

// GeneralProvisionsArticle returns the article number of the general
// provisions. It counts one for the first article, one when there are custody
// terms or children, one for support terms, two for property and debts, and
// one each for future obligations and special provisions. The count does not
// track which articles were emitted.
func GeneralProvisionsArticle(msa model.MaritalSettlementAgreement) int {
	n := 1
	if len(msa.CustodyTerms) > 0 || len(msa.Children) > 0 {
		n++
	}
	if len(msa.SupportTerms) > 0 {
		n++
	}
	n += 2
	if len(msa.FutureObligationTerms) > 0 {
		n++
	}
	if len(msa.SpecialTerms) > 0 {
		n++
	}
	return n
}

// Sentence renders one accepted term as legal language using its catalog
// template. Terms whose card is not in the catalog render their name and a
// dump of their values.
func Sentence(term model.AgreementTerm) string {
	def, ok := catalog.Get(term.CardID)
	if !ok {
		name := term.Name
		if name == "" {
			name = term.CardID
		}
		def = model.CardDefinition{ID: term.CardID, Name: name}
	}
	return legaltext.Resolve(def, term.CustomValues)
}

func writeHeader(b *strings.Builder, msa model.MaritalSettlementAgreement) {
	caseNumber := msa.CaseNumber
	if strings.TrimSpace(caseNumber) == "" {
		caseNumber = blankCaseNumber
	}

	fmt.Fprintf(b, "\nSTATE OF WISCONSIN                                   CIRCUIT COURT                              %s COUNTY\n\n",
		strings.ToUpper(msa.County))
	fmt.Fprintf(b, "%s,\n    Petitioner,\n", msa.PartyAName)
	fmt.Fprintf(b, "                                                     Case No. %s\n", caseNumber)
	fmt.Fprintf(b, "vs.\n\n%s,\n    Respondent.\n\n\n", msa.PartyBName)
	b.WriteString("                              MARITAL SETTLEMENT AGREEMENT\n\n\n")

	fmt.Fprintf(b, "    The parties to this action, %s (\"Party A\") and %s (\"Party B\"),\n", msa.PartyAName, msa.PartyBName)
	fmt.Fprintf(b, "were married on %s", legaltext.LongDate(msa.MarriageDate.Time))
	if msa.SeparationDate != nil && !msa.SeparationDate.IsZero() {
		fmt.Fprintf(b, " and separated on %s", legaltext.LongDate(msa.SeparationDate.Time))
	}
	b.WriteString(".\n")

	switch n := len(msa.Children); n {
	case 0:
		b.WriteString("There are no minor children of this marriage.\n")
	case 1:
		b.WriteString("There is 1 minor child of this marriage:\n")
	default:
		fmt.Fprintf(b, "There are %d minor children of this marriage:\n", n)
	}
	children := make([]string, 0, len(msa.Children))
	for _, c := range msa.Children {
		children = append(children, fmt.Sprintf("    %s, born %s", c.Name, legaltext.LongDate(c.Birthdate.Time)))
	}
	b.WriteString(strings.Join(children, "\n"))
	b.WriteString("\n\n")

	b.WriteString(`    The parties have reached a complete agreement regarding all matters related to the dissolution of their
marriage and submit this Marital Settlement Agreement for the Court's approval.

    NOW, THEREFORE, in consideration of the mutual promises and covenants contained herein, and for other
good and valuable consideration, the receipt and sufficiency of which are hereby acknowledged, the parties
agree as follows:

`)
}

// writeArticle writes a titled article with numbered terms, or the fallback
// sentence when there are none.
func writeArticle(b *strings.Builder, title string, terms []model.AgreementTerm, fallback string) {
	fmt.Fprintf(b, "\n%s\n\n", title)
	if len(terms) == 0 {
		fmt.Fprintf(b, "    %s\n\n", fallback)
		return
	}
	for i, term := range terms {
		fmt.Fprintf(b, "    %d. %s\n\n", i+1, Sentence(term))
	}
}

const nameChangeProvision = "Either party may resume use of their former name. Neither party shall change the child(ren)'s surname without written consent of the other party or court order."

func writeGeneralProvisions(b *strings.Builder, msa model.MaritalSettlementAgreement) {
	fmt.Fprintf(b, "\nARTICLE %s - GENERAL PROVISIONS\n\n", legaltext.Roman(GeneralProvisionsArticle(msa)))
	fmt.Fprintf(b, generalProvisions, nameChangeProvision)
}

const generalProvisions = `    1. Mutual Release. Except as specifically provided in this Agreement, each party releases and discharges
the other from any and all claims, demands, and obligations arising out of the marriage.

    2. Waiver of Inheritance Rights. Each party waives all rights to inherit from the other's estate under
the laws of intestacy or as a surviving spouse, and agrees to execute any documents necessary to effectuate
this waiver.

    3. Name Change. %s

    4. Tax Returns. The parties shall cooperate in the preparation and filing of all tax returns. Each party
shall be responsible for any taxes, interest, and penalties arising from income attributable to that party.

    5. Disclosure. Each party represents that they have made full and complete disclosure of all assets,
debts, income, and expenses to the other party.

    6. Voluntary Agreement. Each party enters into this Agreement freely and voluntarily, with full
understanding of its terms and legal effect.

    7. Legal Advice. Each party acknowledges the opportunity to consult with legal counsel regarding this
Agreement, or voluntarily waives that right.

    8. Binding Effect. This Agreement shall be binding upon the parties and their respective heirs,
executors, administrators, and assigns.

    9. Modification. This Agreement may be modified only by a written document signed by both parties,
except that provisions regarding child custody, placement, and support shall remain subject to court
jurisdiction and modification as provided by law.

    10. Governing Law. This Agreement shall be governed by and construed in accordance with the laws of
the State of Wisconsin.

    11. Severability. If any provision of this Agreement is held to be invalid or unenforceable, the
remaining provisions shall continue in full force and effect.

    12. Entire Agreement. This Agreement constitutes the entire agreement between the parties concerning
the subject matter hereof and supersedes all prior negotiations, understandings, and agreements.

    13. Incorporation into Judgment. The parties request that this Agreement be incorporated into any
Judgment of Divorce entered by the Court, and that the Court retain jurisdiction to enforce its terms.

`

func writeSignatures(b *strings.Builder, msa model.MaritalSettlementAgreement) {
	b.WriteString("\n\n    IN WITNESS WHEREOF, the parties have executed this Marital Settlement Agreement on the date(s)\nindicated below.\n\n\n")
	for _, p := range []struct{ name, label string }{{msa.PartyAName, "Party A"}, {msa.PartyBName, "Party B"}} {
		fmt.Fprintf(b, "%s\n%s\n%s\n\n\n", signatureLine, p.name, p.label)
	}
	for _, label := range []string{"PARTY A", "PARTY B"} {
		fmt.Fprintf(b, "ATTORNEY FOR %s:\n\n%s\n[Attorney Name]\n[Attorney Address]\n[Bar Number]\n\n\n", label, signatureLine)
	}

	b.WriteString("---\n\n---\n\n⚖️ LEGAL DISCLAIMER - MUST READ\n\n")
	fmt.Fprintf(b, "This is a DRAFT document generated by Settlement Game v%s on %s.\n\n",
		msa.Version, legaltext.LongDate(msa.GeneratedDate.Time))
	b.WriteString(`IMPORTANT: This document MUST be reviewed by qualified legal counsel before filing with any court.
Settlement Game provides templates and calculations but does NOT provide legal advice.
Both parties should have independent attorney representation.

Based on Wisconsin law as of January 2026. Laws change - verify current requirements.
The authors assume no liability for any legal consequences resulting from use of this document.

For full disclaimer, see: https://github.com/tbcolby/settlement-game/blob/main/DISCLAIMER.md
`)
}
