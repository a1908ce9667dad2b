package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/state"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	item model.Item
	loc  *time.Location
}

func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return i.item.Description }
func (i listItem) FilterValue() string { return i.item.Title }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.item.Title
	if it.item.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s", box, text)
	if it.item.HasReminder() {
		line += "  " + alarmStyle.Render(symAlarm+" "+datefmt.Format(it.item.DueDate, it.loc))
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

var (
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done"))
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	openKey   = key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "open"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	clearKey  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear reminders"))
	sweepKey  = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sweep"))
)

func newList() list.Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	bindings := func() []key.Binding {
		return []key.Binding{toggleKey, addKey, openKey, deleteKey, clearKey, sweepKey}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings
	return l
}

func listTitle(st state.Stats) string {
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), st.Done,
		pendingStyle.Render("•"), st.Pending,
		alarmStyle.Render(symAlarm), st.Armed,
	)
}

func toListItems(items []model.Item, loc *time.Location) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{item: it, loc: loc})
	}
	return out
}

func selectedID(l list.Model) (int64, bool) {
	it, ok := l.SelectedItem().(listItem)
	if !ok {
		return 0, false
	}
	return it.item.ID, true
}
