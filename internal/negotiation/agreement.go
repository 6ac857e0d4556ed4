package negotiation

import (
	"github.com/tbcolby/settlement-game/internal/equity"
	"github.com/tbcolby/settlement-game/internal/model"
)

// BuildAgreement assembles the settlement agreement from the accepted cards
// of s, in acceptance order. Meta cards are left out. Cards missing from the
// catalog are listed as special provisions under their id.
func (m *Machine) BuildAgreement(s model.Session, version string) model.MaritalSettlementAgreement {
	now := m.now()
	msa := model.MaritalSettlementAgreement{
		County:                s.County,
		CaseNumber:            s.CaseNumber,
		PartyAName:            s.PartyA.Name,
		PartyBName:            s.PartyB.Name,
		MarriageDate:          s.MarriageDate,
		SeparationDate:        s.SeparationDate,
		Children:              append([]model.Child{}, s.Children...),
		AssetDivisionTerms:    []model.AgreementTerm{},
		CustodyTerms:          []model.AgreementTerm{},
		SupportTerms:          []model.AgreementTerm{},
		DebtTerms:             []model.AgreementTerm{},
		PropertyTerms:         []model.AgreementTerm{},
		FutureObligationTerms: []model.AgreementTerm{},
		SpecialTerms:          []model.AgreementTerm{},
		EquityAnalysis:        equity.Analyze(equity.StateFor(s, now)),
		GeneratedDate:         model.DateOf(now),
		Version:               version,
	}

	for _, card := range s.AcceptedCards {
		t := model.AgreementTerm{
			CardID:       card.CardID,
			Category:     model.CategorySpecial,
			Name:         card.CardID,
			CustomValues: card.CustomValues,
			PlayedBy:     card.PlayedBy,
			AcceptedBy:   string(card.AcceptedBy),
			Timestamp:    card.PlayedAt,
		}
		if def, ok := m.cards.Get(card.CardID); ok {
			t.Category = def.Category
			t.Name = def.Name
		}
		bucket := msa.Bucket(t.Category)
		if bucket == nil {
			continue
		}
		*bucket = append(*bucket, t)
	}
	return msa
}
