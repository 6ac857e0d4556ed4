package catalog

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

const schemaVersion = 1

type fileSchema struct {
	Version int          `yaml:"version"`
	Cards   []cardSchema `yaml:"cards"`
}

type cardSchema struct {
	ID           string            `yaml:"id"`
	Category     string            `yaml:"category"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Icon         string            `yaml:"icon"`
	Points       int               `yaml:"points"`
	Fields       []fieldSchema     `yaml:"fields"`
	Counterparts map[string]string `yaml:"counterparts"`
	Template     string            `yaml:"template"`
}

type fieldSchema struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Placeholder string   `yaml:"placeholder"`
	Options     []string `yaml:"options"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	Pattern     string   `yaml:"pattern"`
	Help        string   `yaml:"help"`
	Fallback    string   `yaml:"fallback"`
}

func decode(data []byte) ([]model.CardDefinition, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if file.Version != schemaVersion {
		return nil, fmt.Errorf("unsupported catalog version %d", file.Version)
	}

	defs := make([]model.CardDefinition, 0, len(file.Cards))
	seen := make(map[string]struct{}, len(file.Cards))
	for i, c := range file.Cards {
		def, err := fromSchema(c)
		if err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", i, c.ID, err)
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", def.ID)
		}
		seen[def.ID] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}

func fromSchema(c cardSchema) (model.CardDefinition, error) {
	if c.ID == "" {
		return model.CardDefinition{}, fmt.Errorf("missing id")
	}
	category := model.Category(c.Category)
	if !category.Valid() {
		return model.CardDefinition{}, fmt.Errorf("unknown category %q", c.Category)
	}
	if c.Points < 0 {
		return model.CardDefinition{}, fmt.Errorf("negative agreement points %d", c.Points)
	}

	def := model.CardDefinition{
		ID:              c.ID,
		Category:        category,
		Name:            c.Name,
		Description:     c.Description,
		Icon:            c.Icon,
		AgreementPoints: c.Points,
		LegalTemplate:   c.Template,
		Fields:          make([]model.CardField, 0, len(c.Fields)),
	}

	for _, f := range c.Fields {
		kind := fieldvalue.Kind(f.Type)
		if !kind.Valid() {
			return model.CardDefinition{}, fmt.Errorf("field %s: unknown type %q", f.ID, f.Type)
		}
		if kind == fieldvalue.KindSelect && len(f.Options) == 0 {
			return model.CardDefinition{}, fmt.Errorf("field %s: select without options", f.ID)
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return model.CardDefinition{}, fmt.Errorf("field %s: bad pattern: %w", f.ID, err)
			}
		}
		field := model.CardField{
			ID:          f.ID,
			Label:       f.Label,
			Type:        kind,
			Required:    f.Required,
			Placeholder: f.Placeholder,
			Options:     f.Options,
			HelpText:    f.Help,
			Fallback:    f.Fallback,
		}
		if f.Min != nil || f.Max != nil || f.Pattern != "" {
			field.Validation = &model.FieldValidation{Min: f.Min, Max: f.Max, Pattern: f.Pattern}
		}
		def.Fields = append(def.Fields, field)
	}

	if len(c.Counterparts) > 0 {
		def.Counterparts = make(map[string]string, len(c.Counterparts))
		for derived, source := range c.Counterparts {
			if _, ok := def.Field(source); !ok {
				return model.CardDefinition{}, fmt.Errorf("counterpart %s: unknown source field %q", derived, source)
			}
			def.Counterparts[derived] = source
		}
	}
	return def, nil
}
