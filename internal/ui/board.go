package ui

import (
	"slices"
	"sync"

	"storefront/catalog/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of *tea.Program the board needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Notice is a one-shot message for the user.
type Notice struct {
	Message string
	IsError bool
}

// Snapshot is a copy of the board taken by the UI goroutine.
type Snapshot struct {
	Items   []domain.Item
	Empty   bool
	Loading bool
	Notices []Notice
}

// Board receives results from the scheduler and hands them to the Bubble Tea
// program. Its methods never block: they record the change and wake the
// program from a separate goroutine.
type Board struct {
	mutex   sync.Mutex
	sender  Sender
	items   []domain.Item
	empty   bool
	loading bool
	notices []Notice
	poked   bool // a BoardChanged is on its way and has not been consumed yet
}

func NewBoard() *Board {
	return &Board{}
}

// Attach connects the board to a running program. Changes made before Attach
// are delivered on the first Snapshot.
func (b *Board) Attach(sender Sender) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.sender = sender
	b.pokeLocked()
}

func (b *Board) RenderItems(items []domain.Item) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.items = slices.Clone(items)
	b.empty = false
	b.pokeLocked()
}

func (b *Board) RenderEmpty() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.items = nil
	b.empty = true
	b.pokeLocked()
}

func (b *Board) SetLoading(loading bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.loading = loading
	b.pokeLocked()
}

func (b *Board) NotifyUser(message string, isError bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.notices = append(b.notices, Notice{Message: message, IsError: isError})
	b.pokeLocked()
}

// Snapshot copies the current board and consumes pending notices.
func (b *Board) Snapshot() Snapshot {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	snap := Snapshot{
		Items:   slices.Clone(b.items),
		Empty:   b.empty,
		Loading: b.loading,
		Notices: b.notices,
	}
	b.notices = nil
	b.poked = false
	return snap
}

func (b *Board) pokeLocked() {
	if b.sender == nil || b.poked {
		return
	}
	b.poked = true

	sender := b.sender
	go sender.Send(BoardChanged{})
}
