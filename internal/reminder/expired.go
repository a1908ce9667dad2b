// Package reminder holds the pure reminder-expiry rule.
package reminder

import (
	"sort"
	"time"

	"github.com/idilsaglam/todoreminder/internal/model"
)

// Expired returns, in input order, the items whose reminder is armed and
// due strictly before now.
func Expired(now time.Time, items []model.Item) []model.Item {
	var out []model.Item
	for _, it := range items {
		if it.ReminderExpired(now) {
			out = append(out, it)
		}
	}
	return out
}

// Armed counts items with an armed reminder.
func Armed(items []model.Item) int {
	n := 0
	for _, it := range items {
		if it.HasReminder() {
			n++
		}
	}
	return n
}

// Upcoming returns the items whose reminder is armed and not yet due,
// earliest first. These are the alarms a running process keeps pending.
func Upcoming(now time.Time, items []model.Item) []model.Item {
	var out []model.Item
	for _, it := range items {
		if it.HasReminder() && !it.DueDate.Before(now) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out
}
