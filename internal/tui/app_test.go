package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/notify"
	"github.com/idilsaglam/todoreminder/internal/repository"
	"github.com/idilsaglam/todoreminder/internal/state"
	"github.com/idilsaglam/todoreminder/internal/store/sqlitestore"
)

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// press sends msg and, when it yields a command, runs it and feeds the
// result back.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := step(t, m, msg)
	if cmd != nil {
		m, _ = step(t, m, cmd())
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = step(t, m, runes(string(r)))
	}
	return m
}

func setup(t *testing.T, perm notify.Permission) (Model, *repository.Repository) {
	t.Helper()
	st, err := sqlitestore.Open(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	repo := repository.New(st)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if _, err := repo.Create(ctx, model.Item{Title: "Buy milk"}); err != nil {
		t.Fatal(err)
	}

	m := New(ctx, repo, perm, time.UTC, state.WithClock(func() time.Time { return noon }))
	m, _ = step(t, m, m.Init()())
	if n := len(m.list.Items()); n != 1 {
		t.Fatalf("list has %d items", n)
	}
	return m, repo
}

func TestToggleFromList(t *testing.T) {
	m, repo := setup(t, notify.Always{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	it, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !it.Completed {
		t.Fatal("item not completed")
	}
	if m.note == "" {
		t.Error("no status note after toggle")
	}
}

func TestAddFromDetail(t *testing.T) {
	m, repo := setup(t, notify.Always{})

	m = press(t, m, runes("a"))
	if m.detail == nil || !m.detail.st.IsCreatingNew() {
		t.Fatal("detail screen not open for a new todo")
	}
	m = typeText(t, m, "Walk dog")
	if _, ok := m.detail.st.Status().(state.Editing); !ok {
		t.Errorf("status = %#v, want Editing", m.detail.st.Status())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.detail != nil {
		t.Fatalf("still on detail after save: %#v", m.detail.st.Status())
	}

	items, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].Title != "Walk dog" {
		t.Fatalf("items = %+v", items)
	}
}

func TestBlankTitleStaysOnDetail(t *testing.T) {
	m, repo := setup(t, notify.Always{})
	m = press(t, m, runes("a"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.detail == nil {
		t.Fatal("left detail screen on a blank title")
	}
	if got := state.Describe(m.detail.st.Status()); got != "Title cannot be empty" {
		t.Errorf("status = %q", got)
	}
	items, _ := repo.ListAll(context.Background())
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

func TestReminderAfterGrant(t *testing.T) {
	perm := notify.NewFilePermission(filepath.Join(t.TempDir(), "notify.granted"))
	m, repo := setup(t, perm)

	m = press(t, m, runes("e"))
	if m.detail == nil || m.detail.st.Title() != "Buy milk" {
		t.Fatal("detail screen not loaded")
	}
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "18:30")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if _, ok := m.detail.st.Status().(state.RequiresPermission); !ok {
		t.Fatalf("status = %#v, want RequiresPermission", m.detail.st.Status())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !perm.Granted() {
		t.Fatal("permission not granted")
	}
	it, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	if !it.HasReminder() || !it.DueDate.Equal(want) {
		t.Fatalf("item = %+v, want armed at %s", it, want)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detail != nil {
		t.Fatal("esc did not return to the list")
	}
}

func TestTypingGWhileAwaitingPermission(t *testing.T) {
	perm := notify.NewFilePermission(filepath.Join(t.TempDir(), "notify.granted"))
	m, _ := setup(t, perm)

	m = press(t, m, runes("e"))
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "18:30")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if _, ok := m.detail.st.Status().(state.RequiresPermission); !ok {
		t.Fatalf("status = %#v, want RequiresPermission", m.detail.st.Status())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = typeText(t, m, " and eggs")
	if perm.Granted() {
		t.Fatal("typing g granted permission")
	}
	if got := m.detail.st.Title(); got != "Buy milk and eggs" {
		t.Fatalf("title = %q, want the typed g kept", got)
	}
}
