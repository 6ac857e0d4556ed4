// Package fieldvalue holds the typed values a party enters when customizing a
// card. A Value is a tagged union keyed by the declaring field's Kind.
package fieldvalue

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Kind is the declared type of a card customization field.
type Kind string

const (
	KindText       Kind = "text"
	KindNumber     Kind = "number"
	KindCurrency   Kind = "currency"
	KindDate       Kind = "date"
	KindTextarea   Kind = "textarea"
	KindSelect     Kind = "select"
	KindPercentage Kind = "percentage"
)

// DateLayout is the wire layout for date values.
const DateLayout = "2006-01-02"

// Valid reports whether k is one of the known field kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumber, KindCurrency, KindDate, KindTextarea, KindSelect, KindPercentage:
		return true
	default:
		return false
	}
}

// Numeric reports whether values of this kind carry a number.
func (k Kind) Numeric() bool {
	return k == KindNumber || k == KindCurrency || k == KindPercentage
}

// Value is one customization value. The zero Value is empty.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	date time.Time
}

func Text(s string) Value     { return Value{kind: KindText, text: s} }
func Textarea(s string) Value { return Value{kind: KindTextarea, text: s} }
func Select(s string) Value   { return Value{kind: KindSelect, text: s} }

func Number(d decimal.Decimal) Value     { return Value{kind: KindNumber, num: d} }
func Currency(d decimal.Decimal) Value   { return Value{kind: KindCurrency, num: d} }
func Percentage(d decimal.Decimal) Value { return Value{kind: KindPercentage, num: d} }

// Date truncates t to a calendar day in UTC.
func Date(t time.Time) Value {
	t = t.UTC()
	return Value{kind: KindDate, date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Kind returns the value's tag; empty for the zero Value.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v holds nothing renderable.
func (v Value) IsZero() bool {
	switch {
	case v.kind == "":
		return true
	case v.kind.Numeric():
		return false
	case v.kind == KindDate:
		return v.date.IsZero()
	default:
		return strings.TrimSpace(v.text) == ""
	}
}

// Decimal returns the numeric payload. Text values holding a number parse.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind.Numeric() {
		return v.num, true
	}
	if v.kind == KindText || v.kind == KindSelect || v.kind == KindTextarea {
		d, err := decimal.NewFromString(strings.TrimSpace(v.text))
		if err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// Float returns the numeric payload as a float64.
func (v Value) Float() (float64, bool) {
	d, ok := v.Decimal()
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// Time returns the date payload.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String renders the raw value without locale formatting.
func (v Value) String() string {
	switch {
	case v.kind == "":
		return ""
	case v.kind.Numeric():
		return v.num.String()
	case v.kind == KindDate:
		if v.date.IsZero() {
			return ""
		}
		return v.date.Format(DateLayout)
	default:
		return v.text
	}
}

// Plain returns the value as a JSON-friendly scalar.
func (v Value) Plain() any {
	switch {
	case v.kind == "":
		return nil
	case v.kind.Numeric():
		return v.num.InexactFloat64()
	default:
		return v.String()
	}
}

type taggedValue struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// MarshalJSON writes the tagged form so the kind survives a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == "" {
		return []byte("null"), nil
	}
	return json.Marshal(taggedValue{Kind: v.kind, Value: v.String()})
}

// UnmarshalJSON accepts the tagged form as well as bare JSON scalars. Bare
// numbers become KindNumber and bare strings become KindText.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*v = Value{}
		return nil
	case strings.HasPrefix(trimmed, "{"):
		var tv taggedValue
		if err := json.Unmarshal(data, &tv); err != nil {
			return fmt.Errorf("decode tagged value: %w", err)
		}
		parsed, err := Parse(tv.Kind, tv.Value)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case strings.HasPrefix(trimmed, "\""):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text value: %w", err)
		}
		*v = Text(s)
		return nil
	case trimmed == "true" || trimmed == "false":
		*v = Text(trimmed)
		return nil
	default:
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return fmt.Errorf("decode numeric value %q: %w", trimmed, err)
		}
		*v = Number(d)
		return nil
	}
}

// Parse builds a Value of the given kind from its raw string form. Numeric
// kinds tolerate a leading "$", a trailing "%" and thousands separators.
func Parse(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindText:
		return Text(raw), nil
	case KindTextarea:
		return Textarea(raw), nil
	case KindSelect:
		return Select(raw), nil
	case KindNumber, KindCurrency, KindPercentage:
		cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(strings.TrimSpace(raw))
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s value %q: %w", kind, raw, err)
		}
		return Value{kind: kind, num: d}, nil
	case KindDate:
		t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("parse date value %q: %w", raw, err)
		}
		return Date(t), nil
	default:
		return Value{}, fmt.Errorf("unknown field kind %q", kind)
	}
}

// Values maps field ids to their values.
type Values map[string]Value

// Get returns the value for id and whether it is present and non-empty.
func (vs Values) Get(id string) (Value, bool) {
	v, ok := vs[id]
	if !ok || v.IsZero() {
		return Value{}, false
	}
	return v, true
}

// Clone returns a shallow copy; Value itself is immutable.
func (vs Values) Clone() Values {
	if vs == nil {
		return nil
	}
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Plain converts every value with Value.Plain.
func (vs Values) Plain() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Plain()
	}
	return out
}
