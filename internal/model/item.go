package model

import (
	"strings"
	"time"
)

// Item is the domain model for a todo entry.
// The reminder is the (ReminderSet, DueDate) pair; helpers below always
// write both fields together.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	ReminderSet bool       `json:"reminder_set"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate rejects items whose title is blank after trimming.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// HasReminder reports whether an alarm is armed for the item.
func (it Item) HasReminder() bool {
	return it.ReminderSet && it.DueDate != nil
}

// ReminderExpired reports whether the armed reminder is due before now.
func (it Item) ReminderExpired(now time.Time) bool {
	return it.HasReminder() && it.DueDate.Before(now)
}

// WithReminder returns a copy armed for at.
func (it Item) WithReminder(at time.Time) Item {
	it.ReminderSet = true
	it.DueDate = &at
	return it
}

// WithoutReminder returns a copy with the reminder pair cleared.
func (it Item) WithoutReminder() Item {
	it.ReminderSet = false
	it.DueDate = nil
	return it
}

// Normalized repairs a half-written pair: a flag without a date, or a date
// without a flag, both collapse to no reminder.
func (it Item) Normalized() Item {
	if !it.HasReminder() {
		return it.WithoutReminder()
	}
	return it
}
