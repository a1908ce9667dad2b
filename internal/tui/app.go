// Package tui is the interactive terminal interface: a live todo list and
// a detail screen for editing one todo and arming its reminder.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/notify"
	"github.com/idilsaglam/todoreminder/internal/state"
)

// Repository is what both screens need.
type Repository interface {
	state.ListRepository
	state.DetailRepository
}

type itemsMsg []model.Item

type itemsClosedMsg struct{}

// listDoneMsg reports that a list action finished, with an optional note.
type listDoneMsg struct {
	note string
}

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	repo Repository
	perm notify.Permission
	loc  *time.Location
	opts []state.Option

	items  *state.List
	feed   <-chan []model.Item
	list   list.Model
	detail *detailView
	note   string

	width, height int
}

// New subscribes to the repository; the subscription ends with ctx.
func New(ctx context.Context, repo Repository, perm notify.Permission, loc *time.Location, opts ...state.Option) Model {
	if loc == nil {
		loc = time.Local
	}
	opts = append([]state.Option{state.WithLocation(loc)}, opts...)
	holder := state.NewList(repo, opts...)
	l := newList()
	l.Title = listTitle(state.Stats{})
	return Model{
		ctx:    ctx,
		repo:   repo,
		perm:   perm,
		loc:    loc,
		opts:   opts,
		items:  holder,
		feed:   holder.Subscribe(ctx),
		list:   l,
		width:  80,
		height: 24,
	}
}

// Run blocks until the user quits.
func Run(ctx context.Context, repo Repository, perm notify.Permission, loc *time.Location, opts ...state.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	_, err := tea.NewProgram(New(ctx, repo, perm, loc, opts...), tea.WithAltScreen()).Run()
	return err
}

func waitForItems(ch <-chan []model.Item) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-ch
		if !ok {
			return itemsClosedMsg{}
		}
		return itemsMsg(items)
	}
}

func (m Model) Init() tea.Cmd { return waitForItems(m.feed) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case itemsMsg:
		m.list.Title = listTitle(m.items.Stats())
		cmd := m.list.SetItems(toListItems(msg, m.loc))
		return m, tea.Batch(cmd, waitForItems(m.feed))

	case itemsClosedMsg:
		return m, tea.Quit

	case listDoneMsg:
		m.note = msg.note
		if m.note == "" {
			m.note = statusLine(m.items.Status())
		} else if _, failed := m.items.Status().(state.Error); failed {
			m.note = statusLine(m.items.Status())
		}
		return m, nil

	case detailLoadedMsg:
		if m.detail != nil {
			m.detail.fill()
		}
		return m, nil

	case detailDoneMsg:
		if m.detail != nil && msg.saved {
			m.detail = nil
			m.note = successStyle.Render("Saved")
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.detail != nil {
			if msg.String() == "esc" {
				m.detail = nil
				m.note = ""
				return m, nil
			}
			return m, m.detail.update(m.ctx, msg)
		}
		if m.list.FilterState() != list.Filtering {
			if cmd, handled := m.handleListKey(msg); handled {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	ctx := m.ctx
	switch {
	case msg.String() == "q":
		return tea.Quit, true
	case key.Matches(msg, toggleKey):
		id, ok := selectedID(m.list)
		if !ok {
			return nil, true
		}
		return m.listAction(func() string {
			m.items.ToggleCompleted(ctx, id)
			return ""
		}), true
	case key.Matches(msg, deleteKey):
		id, ok := selectedID(m.list)
		if !ok {
			return nil, true
		}
		return m.listAction(func() string {
			m.items.Delete(ctx, id)
			return ""
		}), true
	case key.Matches(msg, clearKey):
		return m.listAction(func() string {
			n := m.items.ClearAllReminders(ctx)
			return fmt.Sprintf("Cleared %d reminders", n)
		}), true
	case key.Matches(msg, sweepKey):
		return m.listAction(func() string {
			n := m.items.CheckExpired(ctx)
			return fmt.Sprintf("%d expired reminders", n)
		}), true
	case key.Matches(msg, addKey):
		return m.openDetail(0), true
	case key.Matches(msg, openKey):
		id, ok := selectedID(m.list)
		if !ok {
			return nil, true
		}
		return m.openDetail(id), true
	}
	return nil, false
}

func (m *Model) listAction(fn func() string) tea.Cmd {
	return func() tea.Msg { return listDoneMsg{note: fn()} }
}

func (m *Model) openDetail(id int64) tea.Cmd {
	m.note = ""
	m.detail = newDetailView(state.NewDetail(m.repo, m.perm, id, m.opts...))
	return m.detail.load(m.ctx)
}

func (m Model) View() string {
	if m.detail != nil {
		return panelString(m.detail.view())
	}
	listHeight := m.height - 4
	if m.note != "" {
		listHeight--
	}
	m.list.SetSize(m.width-4, listHeight)
	content := m.list.View()
	if m.note != "" {
		content += "\n" + m.note
	}
	return panelString(content)
}
