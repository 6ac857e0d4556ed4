package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

// MissingFieldsError lists the labels of required fields left empty.
type MissingFieldsError struct {
	CardID string
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Labels, ", ")
}

// InvalidFieldError reports a value that violates its field constraints.
type InvalidFieldError struct {
	CardID string
	Field  string
	Label  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Reason)
}

// ValidateValues types raw custom values against a card's fields. Raw values
// may be strings, JSON numbers, booleans or fieldvalue.Values. Every missing
// required field is reported together; otherwise the first constraint
// violation in field order is returned.
func ValidateValues(def model.CardDefinition, raw map[string]any) (fieldvalue.Values, error) {
	for key := range raw {
		if _, ok := def.Field(key); !ok {
			return nil, &InvalidFieldError{CardID: def.ID, Field: key, Label: key, Reason: "unknown field"}
		}
	}

	values := make(fieldvalue.Values, len(def.Fields))
	var missing []string
	var invalid error
	for _, f := range def.Fields {
		v, err := coerce(f, raw[f.ID])
		if err != nil {
			if invalid == nil {
				invalid = &InvalidFieldError{CardID: def.ID, Field: f.ID, Label: f.Label, Reason: err.Error()}
			}
			continue
		}
		if v.IsZero() {
			if f.Required {
				missing = append(missing, f.Label)
			}
			continue
		}
		if err := check(f, v); err != nil && invalid == nil {
			invalid = &InvalidFieldError{CardID: def.ID, Field: f.ID, Label: f.Label, Reason: err.Error()}
		}
		values[f.ID] = v
	}

	if len(missing) > 0 {
		return nil, &MissingFieldsError{CardID: def.ID, Labels: missing}
	}
	if invalid != nil {
		return nil, invalid
	}
	return values, nil
}

func coerce(f model.CardField, raw any) (fieldvalue.Value, error) {
	switch v := raw.(type) {
	case nil:
		return fieldvalue.Value{}, nil
	case fieldvalue.Value:
		if v.IsZero() || v.Kind() == f.Type {
			return v, nil
		}
		return fieldvalue.Parse(f.Type, v.String())
	case string:
		if strings.TrimSpace(v) == "" {
			return fieldvalue.Value{}, nil
		}
		return fieldvalue.Parse(f.Type, v)
	case float64:
		return fromNumber(f.Type, decimal.NewFromFloat(v))
	case int:
		return fromNumber(f.Type, decimal.NewFromInt(int64(v)))
	case int64:
		return fromNumber(f.Type, decimal.NewFromInt(v))
	case decimal.Decimal:
		return fromNumber(f.Type, v)
	case bool:
		return fieldvalue.Parse(f.Type, strconv.FormatBool(v))
	default:
		return fieldvalue.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

func fromNumber(kind fieldvalue.Kind, d decimal.Decimal) (fieldvalue.Value, error) {
	switch kind {
	case fieldvalue.KindNumber:
		return fieldvalue.Number(d), nil
	case fieldvalue.KindCurrency:
		return fieldvalue.Currency(d), nil
	case fieldvalue.KindPercentage:
		return fieldvalue.Percentage(d), nil
	default:
		return fieldvalue.Parse(kind, d.String())
	}
}

func check(f model.CardField, v fieldvalue.Value) error {
	if f.Type == fieldvalue.KindSelect && !slices.Contains(f.Options, v.String()) {
		return fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
	}
	if f.Validation == nil {
		return nil
	}
	if n, ok := v.Float(); ok && f.Type.Numeric() {
		if f.Validation.Min != nil && n < *f.Validation.Min {
			return fmt.Errorf("must be at least %g", *f.Validation.Min)
		}
		if f.Validation.Max != nil && n > *f.Validation.Max {
			return fmt.Errorf("must be at most %g", *f.Validation.Max)
		}
	}
	if f.Validation.Pattern != "" {
		re, err := regexp.Compile(f.Validation.Pattern)
		if err != nil {
			return fmt.Errorf("bad pattern: %w", err)
		}
		if !re.MatchString(v.String()) {
			return fmt.Errorf("does not match %s", f.Validation.Pattern)
		}
	}
	return nil
}
