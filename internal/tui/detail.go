package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/state"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldTime
	fieldCount
)

// detailView edits one item. Its state lives in a state.Detail; the
// inputs mirror the editable fields.
type detailView struct {
	st     *state.Detail
	inputs [fieldCount]textinput.Model
	focus  int
	note   string
}

// detailLoadedMsg reports that the state holder finished loading.
type detailLoadedMsg struct{}

// detailDoneMsg reports that a detail action finished.
type detailDoneMsg struct {
	saved bool
}

func newDetailView(st *state.Detail) *detailView {
	v := &detailView{st: st}
	placeholders := [fieldCount]string{"Title", "Description", "HH:MM"}
	limits := [fieldCount]int{200, 500, 5}
	for i := range v.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		v.inputs[i] = ti
	}
	v.inputs[fieldTitle].Focus()
	return v
}

func (v *detailView) load(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		v.st.Load(ctx)
		return detailLoadedMsg{}
	}
}

// fill copies the holder's fields into the inputs.
func (v *detailView) fill() {
	v.inputs[fieldTitle].SetValue(v.st.Title())
	v.inputs[fieldDescription].SetValue(v.st.Description())
	if tod, ok := v.st.SelectedTime(); ok {
		v.inputs[fieldTime].SetValue(tod.String())
	}
	v.inputs[fieldTitle].CursorEnd()
}

func (v *detailView) setFocus(i int) tea.Cmd {
	v.inputs[v.focus].Blur()
	v.focus = (i + fieldCount) % fieldCount
	return v.inputs[v.focus].Focus()
}

func (v *detailView) save(ctx context.Context) tea.Cmd {
	v.st.SetTitle(v.inputs[fieldTitle].Value())
	v.st.SetDescription(v.inputs[fieldDescription].Value())
	return func() tea.Msg {
		v.st.Save(ctx)
		_, ok := v.st.Status().(state.Success)
		return detailDoneMsg{saved: ok}
	}
}

func (v *detailView) setReminder(ctx context.Context) tea.Cmd {
	raw := strings.TrimSpace(v.inputs[fieldTime].Value())
	if raw != "" {
		tod, err := datefmt.ParseTimeOfDay(raw)
		if err != nil {
			v.note = err.Error()
			return nil
		}
		if err := v.st.SelectTime(tod.Hour, tod.Minute); err != nil {
			v.note = err.Error()
			return nil
		}
	}
	v.note = ""
	return func() tea.Msg {
		v.st.SetReminder(ctx)
		return detailDoneMsg{}
	}
}

func (v *detailView) grant(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		v.st.GrantPermission(ctx)
		return detailDoneMsg{}
	}
}

// update handles keys that stay on the detail screen.
func (v *detailView) update(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return v.setFocus(v.focus + 1)
	case "shift+tab", "up":
		return v.setFocus(v.focus - 1)
	case "ctrl+s":
		return v.save(ctx)
	case "ctrl+r":
		return v.setReminder(ctx)
	case "ctrl+g":
		if _, ok := v.st.Status().(state.RequiresPermission); ok {
			return v.grant(ctx)
		}
	}

	before := v.inputs[v.focus].Value()
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	if v.inputs[v.focus].Value() != before && v.focus != fieldTime {
		v.st.SetTitle(v.inputs[fieldTitle].Value())
		v.st.SetDescription(v.inputs[fieldDescription].Value())
		v.st.BeginEdit()
	}
	return cmd
}

func (v *detailView) view() string {
	var b strings.Builder
	heading := "Edit todo"
	if v.st.IsCreatingNew() {
		heading = "New todo"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	labels := [fieldCount]string{"Title", "Description", "Remind at"}
	for i := range v.inputs {
		label := labelStyle.Render(labels[i])
		if i == v.focus {
			label = accentStyle.Render(labelStyle.Render(labels[i]))
		}
		b.WriteString(label + v.inputs[i].View() + "\n")
	}
	b.WriteString(labelStyle.Render("Due") + alarmStyle.Render(v.st.FormattedDueDate()) + "\n\n")

	if v.note != "" {
		b.WriteString(errorStyle.Render(v.note) + "\n")
	} else if line := statusLine(v.st.Status()); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString(helpStyle.Render("tab next • ctrl+s save • ctrl+r set reminder • ctrl+g allow notifications • esc back"))
	return b.String()
}

func statusLine(s state.Status) string {
	text := state.Describe(s)
	switch s.(type) {
	case state.Error, state.RequiresPermission:
		return errorStyle.Render(text)
	case state.Success:
		return successStyle.Render(text)
	default:
		return mutedStyle.Render(text)
	}
}
