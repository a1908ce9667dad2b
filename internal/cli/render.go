package cli

import (
	"fmt"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/reminder"
	"github.com/idilsaglam/todoreminder/internal/ui"
)

func listPanel(items []model.Item, group bool) []string {
	d, p := stats(items)
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Alarm, t.SymAlarm), reminder.Armed(items),
		ui.C(t.Accent, "Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`, remind with `todo remind 1 18:30`"))
	return lines
}

func stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{ui.C(ui.Current().Muted, "no todos")}
	}
	t := ui.Current()
	out := make([]string, 0, len(items))
	for _, it := range items {
		idx := fmt.Sprintf("%3d.", it.ID)
		box := t.BoxUnchecked
		color := t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		title := it.Title
		if r := []rune(title); len(r) > 60 {
			title = string(r[:57]) + "..."
		}
		line := fmt.Sprintf("%s %s %s", ui.C(ui.Dim, idx), ui.C(color, box), title)
		if it.HasReminder() {
			line += "  " + ui.C(t.Alarm, t.SymAlarm+" "+datefmt.Format(it.DueDate, nil))
		}
		out = append(out, line)
	}
	return out
}

func groupLines(items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}

func detailLines(it model.Item) []string {
	t := ui.Current()
	status := ui.C(t.Pending, "pending")
	if it.Completed {
		status = ui.C(t.Success, "done")
	}
	desc := it.Description
	if desc == "" {
		desc = ui.C(t.Muted, "(no description)")
	}
	remind := ui.C(t.Muted, "off")
	if it.HasReminder() {
		remind = ui.C(t.Alarm, datefmt.Format(it.DueDate, nil))
	}
	return []string{
		ui.C(t.Title, fmt.Sprintf("#%d %s", it.ID, it.Title)),
		"",
		"Description  " + desc,
		"Status       " + status,
		"Reminder     " + remind,
	}
}
