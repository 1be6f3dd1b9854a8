// Package ui provides the Bubble Tea terminal front end of the catalog browser.
package ui

import (
	"time"

	"storefront/catalog/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const noticeTTL = 4 * time.Second

// Controller receives filter changes from the UI. The scheduler implements it.
type Controller interface {
	OnCategoryChanged(category string)
	OnSearchTextChanged(text string)
	Refresh()
}

type CartService interface {
	AddToCart(item domain.Item)
}

// App is the root Bubble Tea model.
// It never queries the catalog itself; results arrive through the Board.
type App struct {
	board      *Board
	controller Controller
	cart       CartService

	categories []domain.Category // first entry is "" (all categories)
	category   int

	search  textinput.Model
	spinner spinner.Model

	items     []domain.Item
	empty     bool
	loading   bool
	notice    *Notice
	noticeSeq int
	cursor    int
	width     int
	height    int
	ready     bool
}

// NewApp creates the app. An empty category list means the registry could not
// be loaded, and category filtering is disabled.
func NewApp(board *Board, controller Controller, cart CartService, categories []domain.Category) App {
	search := textinput.New()
	search.Placeholder = "Search items by name"
	search.Prompt = "🔎 "
	search.CharLimit = 100
	search.Width = 40
	search.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	var options []domain.Category
	if len(categories) > 0 {
		options = append([]domain.Category{""}, categories...)
	}

	return App{
		board:      board,
		controller: controller,
		cart:       cart,
		categories: options,
		search:     search,
		spinner:    s,
	}
}

// Init requests the unfiltered item list.
func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, a.refresh())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		if msg.Width > 20 {
			a.search.Width = msg.Width - 10
		}
		return a, nil

	case BoardChanged:
		return a.applySnapshot(a.board.Snapshot())

	case noticeExpired:
		if msg.seq == a.noticeSeq {
			a.notice = nil
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) applySnapshot(snap Snapshot) (tea.Model, tea.Cmd) {
	a.items = snap.Items
	a.empty = snap.Empty
	a.loading = snap.Loading

	if a.cursor >= len(a.items) {
		a.cursor = max(len(a.items)-1, 0)
	}

	if len(snap.Notices) == 0 {
		return a, nil
	}

	// Only the most recent notice is shown
	last := snap.Notices[len(snap.Notices)-1]
	a.notice = &last
	a.noticeSeq++
	seq := a.noticeSeq
	return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpired{seq: seq}
	})
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return a, tea.Quit

	case "tab":
		a.cycleCategory(1)
		return a, nil

	case "shift+tab":
		a.cycleCategory(-1)
		return a, nil

	case "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down":
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
		return a, nil

	case "enter":
		if a.cart != nil && a.cursor < len(a.items) {
			a.cart.AddToCart(a.items[a.cursor])
		}
		return a, nil

	case "ctrl+r":
		return a, a.refresh()
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if text := a.search.Value(); text != before {
		a.controller.OnSearchTextChanged(text)
	}
	return a, cmd
}

func (a *App) cycleCategory(delta int) {
	n := len(a.categories)
	if n == 0 {
		return
	}

	a.category = (a.category + delta + n) % n
	a.cursor = 0
	a.controller.OnCategoryChanged(a.categories[a.category])
}

func (a App) refresh() tea.Cmd {
	controller := a.controller
	return func() tea.Msg {
		controller.Refresh()
		return nil
	}
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Items returns the rendered items (for testing).
func (a App) Items() []domain.Item {
	return a.items
}

// Category returns the selected category, "" for all.
func (a App) Category() domain.Category {
	if len(a.categories) == 0 {
		return ""
	}
	return a.categories[a.category]
}
