package model

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
)

// Date is a calendar date. It encodes as "2006-01-02" and also decodes
// RFC 3339 timestamps.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(fieldvalue.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if t, err := time.Parse(fieldvalue.DateLayout, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("decode date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

type Child struct {
	Name      string `json:"name"`
	Birthdate Date   `json:"birthdate"`
}

// AgreementTerm is an accepted card as it appears in the agreement, with
// its catalog name and category resolved.
type AgreementTerm struct {
	CardID       string            `json:"card_id"`
	Category     Category          `json:"category"`
	Name         string            `json:"name"`
	CustomValues fieldvalue.Values `json:"custom_values"`
	PlayedBy     PartyID           `json:"played_by"`
	AcceptedBy   string            `json:"accepted_by"`
	Timestamp    time.Time         `json:"timestamp"`
}

// MaritalSettlementAgreement is the document generator's input.
type MaritalSettlementAgreement struct {
	County         string  `json:"county"`
	CaseNumber     string  `json:"case_number,omitempty"`
	PartyAName     string  `json:"party_a_name"`
	PartyBName     string  `json:"party_b_name"`
	MarriageDate   Date    `json:"marriage_date"`
	SeparationDate *Date   `json:"separation_date,omitempty"`
	Children       []Child `json:"children"`

	AssetDivisionTerms    []AgreementTerm `json:"asset_division_cards"`
	CustodyTerms          []AgreementTerm `json:"custody_cards"`
	SupportTerms          []AgreementTerm `json:"support_cards"`
	DebtTerms             []AgreementTerm `json:"debt_cards"`
	PropertyTerms         []AgreementTerm `json:"property_cards"`
	FutureObligationTerms []AgreementTerm `json:"future_obligation_cards"`
	SpecialTerms          []AgreementTerm `json:"special_cards"`

	EquityAnalysis EquityAnalysis `json:"equity_analysis"`

	GeneratedDate Date   `json:"generated_date"`
	Version       string `json:"version"`
}

// Bucket returns the term list for a category, or nil for meta and unknown
// categories.
func (m *MaritalSettlementAgreement) Bucket(c Category) *[]AgreementTerm {
	switch c {
	case CategoryAssetDivision:
		return &m.AssetDivisionTerms
	case CategoryCustody:
		return &m.CustodyTerms
	case CategorySupport:
		return &m.SupportTerms
	case CategoryDebt:
		return &m.DebtTerms
	case CategoryProperty:
		return &m.PropertyTerms
	case CategoryFutureObligation:
		return &m.FutureObligationTerms
	case CategorySpecial:
		return &m.SpecialTerms
	default:
		return nil
	}
}
