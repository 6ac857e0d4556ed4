package model

import (
	"time"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
)

type PartyID string

const (
	PartyA PartyID = "A"
	PartyB PartyID = "B"
)

// Other returns the opposing party. Unknown ids map to the empty id.
func (p PartyID) Other() PartyID {
	switch p {
	case PartyA:
		return PartyB
	case PartyB:
		return PartyA
	default:
		return ""
	}
}

func (p PartyID) Valid() bool { return p == PartyA || p == PartyB }

type Category string

const (
	CategoryAssetDivision    Category = "asset-division"
	CategoryCustody          Category = "custody"
	CategorySupport          Category = "support"
	CategoryDebt             Category = "debt"
	CategoryProperty         Category = "property"
	CategoryFutureObligation Category = "future-obligation"
	CategorySpecial          Category = "special"
	CategoryMeta             Category = "meta"
)

// Categories lists the closed category set in document order.
var Categories = []Category{
	CategoryAssetDivision,
	CategoryCustody,
	CategorySupport,
	CategoryDebt,
	CategoryProperty,
	CategoryFutureObligation,
	CategorySpecial,
	CategoryMeta,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type FieldValidation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
}

type CardField struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Type        fieldvalue.Kind  `json:"type"`
	Required    bool             `json:"required"`
	Placeholder string           `json:"placeholder,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
	HelpText    string           `json:"help_text,omitempty"`
	// Fallback is the bracketed token rendered when the value is absent.
	Fallback string `json:"fallback,omitempty"`
}

type CardDefinition struct {
	ID              string      `json:"id"`
	Category        Category    `json:"category"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Icon            string      `json:"icon"`
	AgreementPoints int         `json:"agreement_points"`
	Fields          []CardField `json:"customization_fields"`
	LegalTemplate   string      `json:"legal_template"`
	// Counterparts names template values derived as the opposing party of
	// another field, e.g. otherParty -> keepingParty.
	Counterparts map[string]string `json:"counterparts,omitempty"`
}

// Field returns the field declaration with the given id.
func (d CardDefinition) Field(id string) (CardField, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return CardField{}, false
}

type CardStatus string

const (
	CardPending  CardStatus = "pending"
	CardAccepted CardStatus = "accepted"
	CardRejected CardStatus = "rejected"
)

type PlayedCard struct {
	ID           string            `json:"id"`
	CardID       string            `json:"card_id"`
	PlayedBy     PartyID           `json:"played_by"`
	PlayedAt     time.Time         `json:"played_at"`
	CustomValues fieldvalue.Values `json:"custom_values"`
	Status       CardStatus        `json:"status"`
	AcceptedBy   PartyID           `json:"accepted_by,omitempty"`
	AcceptedAt   *time.Time        `json:"accepted_at,omitempty"`
}

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalModified  ProposalStatus = "modified"
	ProposalCountered ProposalStatus = "countered"
)

type ProposalAction string

const (
	ProposalAccept  ProposalAction = "accept"
	ProposalReject  ProposalAction = "reject"
	ProposalModify  ProposalAction = "modify"
	ProposalCounter ProposalAction = "counter"
)

type ProposalResponse struct {
	Action         ProposalAction    `json:"action"`
	RespondedBy    PartyID           `json:"responded_by"`
	RespondedAt    time.Time         `json:"responded_at"`
	ModifiedValues fieldvalue.Values `json:"modified_values,omitempty"`
	CounterCard    *PlayedCard       `json:"counter_card,omitempty"`
	Message        string            `json:"message,omitempty"`
}

type Proposal struct {
	ID         string            `json:"id"`
	Card       PlayedCard        `json:"card"`
	ProposedBy PartyID           `json:"proposed_by"`
	ProposedAt time.Time         `json:"proposed_at"`
	Status     ProposalStatus    `json:"status"`
	Response   *ProposalResponse `json:"response,omitempty"`
}
