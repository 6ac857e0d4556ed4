package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/model"
)

type cardStyles struct {
	title    lipgloss.Style
	category lipgloss.Style
	name     lipgloss.Style
	points   lipgloss.Style
	detail   lipgloss.Style
	field    lipgloss.Style
	section  lipgloss.Style
}

func newCardStyles() cardStyles {
	return cardStyles{
		title:    lipgloss.NewStyle().Bold(true),
		category: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		name:     lipgloss.NewStyle().Bold(true),
		points:   lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		field:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		section:  lipgloss.NewStyle().MarginTop(1),
	}
}

func newCardsCmd() *cobra.Command {
	var category string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the settlement card catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories := catalog.Categories()
			if category != "" {
				c := model.Category(category)
				if !c.Valid() {
					return fmt.Errorf("unknown category %q", category)
				}
				categories = []model.Category{c}
			}
			if asJSON {
				var cards []model.CardDefinition
				for _, c := range categories {
					cards = append(cards, catalog.ByCategory(c)...)
				}
				return writeJSON(cmd, cards)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderCards(categories, newCardStyles()))
			return err
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list cards of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cards as JSON")
	return cmd
}

func renderCards(categories []model.Category, s cardStyles) string {
	lines := []string{s.title.Render("Settlement Cards")}
	for _, c := range categories {
		cards := catalog.ByCategory(c)
		if len(cards) == 0 {
			continue
		}
		block := []string{s.category.Render(fmt.Sprintf("%s (%d)", c, len(cards)))}
		for _, card := range cards {
			block = append(block, renderCard(card, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCard(card model.CardDefinition, s cardStyles) string {
	head := lipgloss.JoinHorizontal(lipgloss.Top,
		card.Icon+" ",
		s.name.Render(card.Name),
		s.field.Render(" ["+card.ID+"]"),
		s.points.Render(fmt.Sprintf(" +%d", card.AgreementPoints)),
	)
	parts := []string{head, s.detail.Render("   " + card.Description)}
	if len(card.Fields) > 0 {
		labels := make([]string, 0, len(card.Fields))
		for _, f := range card.Fields {
			label := f.Label
			if f.Required {
				label += "*"
			}
			labels = append(labels, label)
		}
		parts = append(parts, s.field.Render("   fields: "+strings.Join(labels, ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
