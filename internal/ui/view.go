package ui

import (
	"fmt"
	"strings"

	"storefront/catalog/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

const (
	cardHeight = 4 // three lines plus a blank separator
	chrome     = 6 // title, categories, search, blank, notice, status bar
)

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Storefront catalog"))
	b.WriteString("\n")
	b.WriteString(a.renderCategories())
	b.WriteString("\n")
	b.WriteString(a.search.View())
	b.WriteString("\n\n")
	b.WriteString(a.renderBody())
	b.WriteString("\n")
	if a.notice != nil {
		style := InfoStyle
		if a.notice.IsError {
			style = ErrorStyle
		}
		b.WriteString(style.Render(a.notice.Message))
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a App) renderCategories() string {
	if len(a.categories) == 0 {
		return ItemMuted.Render("No category filter available")
	}

	parts := make([]string, 0, len(a.categories))
	for i, c := range a.categories {
		label := c
		if label == "" {
			label = "All categories"
		}
		if i == a.category {
			parts = append(parts, CategoryActive.Render(label))
		} else {
			parts = append(parts, CategoryInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderBody() string {
	switch {
	case len(a.items) == 0 && a.loading:
		return a.spinner.View() + " Loading items..."
	case a.empty:
		return ItemMuted.Render("No items match your filters")
	case len(a.items) == 0:
		return ""
	}

	visible := max((a.height-chrome)/cardHeight, 1)
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}
	end := min(start+visible, len(a.items))

	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, RenderCard(a.items[i], i == a.cursor, a.width))
	}
	return strings.Join(cards, "\n\n")
}

func (a App) renderStatusBar() string {
	var left string
	if a.loading {
		left = a.spinner.View() + " loading"
	} else {
		left = fmt.Sprintf("%d items", len(a.items))
	}

	hints := []string{
		StatusBarKey.Render("tab") + StatusBarText.Render(" category"),
		StatusBarKey.Render("↑↓") + StatusBarText.Render(" move"),
		StatusBarKey.Render("enter") + StatusBarText.Render(" add to cart"),
		StatusBarKey.Render("ctrl+r") + StatusBarText.Render(" refresh"),
		StatusBarKey.Render("esc") + StatusBarText.Render(" quit"),
	}

	return StatusBar.Width(max(a.width, 0)).Render(left + "  " + strings.Join(hints, "  "))
}

// RenderCard formats one item the way the storefront shows it.
func RenderCard(item domain.Item, selected bool, width int) string {
	description := item.Description
	if description == "" {
		description = "No description available"
	}

	badge := OutOfStockBadge.Render("Out of stock")
	if item.InStock() {
		badge = InStockBadge.Render(fmt.Sprintf("In stock (%d)", item.StockQuantity))
	}

	lines := []string{
		ItemName.Render(item.Name) + "  " + ItemPrice.Render(FormatPrice(item)),
		ItemMuted.Render(description),
		ItemMuted.Render(item.Category) + "  " + badge,
	}

	style := CardNormal
	if selected {
		style = CardSelected
	}
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func FormatPrice(item domain.Item) string {
	return item.Price.StringFixed(2) + " €"
}
