// Package catalog is the read-only registry of settlement cards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/tbcolby/settlement-game/internal/model"
)

//go:embed cards.yaml
var embeddedCards []byte

var ErrCardNotFound = errors.New("card not found")

// Catalog is an immutable set of card definitions in declaration order.
type Catalog struct {
	cards []model.CardDefinition
	byID  map[string]int
}

// Load parses and validates a YAML card file.
func Load(data []byte) (*Catalog, error) {
	defs, err := decode(data)
	if err != nil {
		return nil, err
	}
	c := &Catalog{cards: defs, byID: make(map[string]int, len(defs))}
	for i, d := range defs {
		c.byID[d.ID] = i
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(embeddedCards)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded cards: %v", err))
	}
	return c
})

// Default returns the catalog built from the embedded card file.
func Default() *Catalog { return defaultCatalog() }

func (c *Catalog) Get(id string) (model.CardDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.CardDefinition{}, false
	}
	return c.cards[i], true
}

// Lookup is Get with ErrCardNotFound for unknown ids.
func (c *Catalog) Lookup(id string) (model.CardDefinition, error) {
	def, ok := c.Get(id)
	if !ok {
		return model.CardDefinition{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return def, nil
}

// ByCategory returns the cards of one category in catalog order.
func (c *Catalog) ByCategory(category model.Category) []model.CardDefinition {
	var out []model.CardDefinition
	for _, d := range c.cards {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns each category present, in first-appearance order.
func (c *Catalog) Categories() []model.Category {
	seen := make(map[model.Category]struct{})
	var out []model.Category
	for _, d := range c.cards {
		if _, ok := seen[d.Category]; ok {
			continue
		}
		seen[d.Category] = struct{}{}
		out = append(out, d.Category)
	}
	return out
}

func (c *Catalog) All() []model.CardDefinition {
	return append([]model.CardDefinition(nil), c.cards...)
}

func Get(id string) (model.CardDefinition, bool) { return Default().Get(id) }

func ByCategory(category model.Category) []model.CardDefinition {
	return Default().ByCategory(category)
}

func Categories() []model.Category { return Default().Categories() }

func All() []model.CardDefinition { return Default().All() }
