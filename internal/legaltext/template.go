// Package legaltext turns card definitions and their custom values into legal
// sentences.
//
// Templates use {{name}} placeholders and {{#if name}}...{{else}}...{{/if}}
// blocks, which may nest. Absent values render as a bracketed token such as
// [ADDRESS].
package legaltext

import (
	"strings"
	"unicode"

	json "github.com/goccy/go-json"

	"github.com/tbcolby/settlement-game/internal/fieldvalue"
	"github.com/tbcolby/settlement-game/internal/model"
)

type nodeKind int

const (
	textNode nodeKind = iota
	varNode
	ifNode
)

type node struct {
	kind nodeKind
	text string
	name string
	then []node
	els  []node
}

type parser struct {
	src string
	pos int
}

func parse(src string) []node {
	p := &parser{src: src}
	var out []node
	for {
		nodes, end := p.block()
		out = append(out, nodes...)
		if end == "" {
			return out
		}
	}
}

// block reads nodes until EOF or an {{else}} / {{/if}} tag, which it
// reports as end.
func (p *parser) block() (nodes []node, end string) {
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		open := strings.Index(rest, "{{")
		if open < 0 {
			nodes = append(nodes, node{kind: textNode, text: rest})
			p.pos = len(p.src)
			break
		}
		if open > 0 {
			nodes = append(nodes, node{kind: textNode, text: rest[:open]})
		}
		closeAt := strings.Index(rest[open+2:], "}}")
		if closeAt < 0 {
			nodes = append(nodes, node{kind: textNode, text: rest[open:]})
			p.pos = len(p.src)
			break
		}
		tag := strings.TrimSpace(rest[open+2 : open+2+closeAt])
		p.pos += open + 2 + closeAt + 2

		switch {
		case tag == "else" || tag == "/if":
			return nodes, tag
		case strings.HasPrefix(tag, "#if "):
			n := node{kind: ifNode, name: strings.TrimSpace(strings.TrimPrefix(tag, "#if "))}
			var blockEnd string
			n.then, blockEnd = p.block()
			if blockEnd == "else" {
				n.els, _ = p.block()
			}
			nodes = append(nodes, n)
		default:
			nodes = append(nodes, node{kind: varNode, name: tag})
		}
	}
	return nodes, ""
}

// falsy values make an {{#if}} block take its else branch.
var falsy = map[string]bool{
	"":        true,
	"no":      true,
	"false":   true,
	"neither": true,
	"0":       true,
}

type scope struct {
	def    model.CardDefinition
	values fieldvalue.Values
}

// lookup returns the display form of name and whether it is present.
// Explicit values win over derived counterparts.
func (s scope) lookup(name string) (string, bool) {
	if v, ok := s.values.Get(name); ok {
		kind := v.Kind()
		if f, declared := s.def.Field(name); declared {
			kind = f.Type
		}
		return display(kind, v), true
	}
	if source, ok := s.def.Counterparts[name]; ok {
		if v, ok := s.values.Get(source); ok {
			if other := model.PartyID(strings.TrimSpace(v.String())).Other(); other != "" {
				return string(other), true
			}
		}
	}
	return "", false
}

func (s scope) fallback(name string) string {
	if f, ok := s.def.Field(name); ok && f.Fallback != "" {
		return f.Fallback
	}
	return Token(name)
}

func (s scope) render(b *strings.Builder, nodes []node) {
	for _, n := range nodes {
		switch n.kind {
		case textNode:
			b.WriteString(n.text)
		case varNode:
			if v, ok := s.lookup(n.name); ok {
				b.WriteString(v)
			} else {
				b.WriteString(s.fallback(n.name))
			}
		case ifNode:
			v, ok := s.lookup(n.name)
			if ok && !falsy[strings.ToLower(strings.TrimSpace(v))] {
				s.render(b, n.then)
			} else {
				s.render(b, n.els)
			}
		}
	}
}

func display(kind fieldvalue.Kind, v fieldvalue.Value) string {
	switch kind {
	case fieldvalue.KindCurrency:
		if f, ok := v.Float(); ok {
			return Amount(f)
		}
	case fieldvalue.KindNumber, fieldvalue.KindPercentage:
		if d, ok := v.Decimal(); ok {
			return d.String()
		}
	case fieldvalue.KindDate:
		if t, ok := v.Time(); ok {
			return LongDate(t)
		}
	}
	return v.String()
}

// Resolve renders the card's legal sentence. A definition without a template
// renders as "Name: " followed by an indented JSON dump of the values.
func Resolve(def model.CardDefinition, values fieldvalue.Values) string {
	if strings.TrimSpace(def.LegalTemplate) == "" {
		return def.Name + ": " + dump(values)
	}
	var b strings.Builder
	scope{def: def, values: values}.render(&b, parse(def.LegalTemplate))
	return b.String()
}

func dump(values fieldvalue.Values) string {
	data, err := json.MarshalIndent(values.Plain(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Token derives a bracketed placeholder from a camelCase value name:
// buyoutAmount -> [BUYOUT AMOUNT].
func Token(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.WriteByte('[')
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	b.WriteByte(']')
	return b.String()
}
