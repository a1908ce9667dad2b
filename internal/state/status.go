// Package state holds the screen state behind the list and detail views.
// Each holder owns one Status and replaces it at the end of every action.
package state

import "github.com/idilsaglam/todoreminder/internal/model"

// Status is the outcome of the last action on a screen. It is one of
// Initial, Success, RequiresPermission, Editing or Error.
type Status interface {
	isStatus()
}

// Initial is the status before any action ran.
type Initial struct{}

// Success means the last action completed.
type Success struct{}

// RequiresPermission means a reminder was not armed because notifications
// are not allowed yet. Granting permission retries it.
type RequiresPermission struct{}

// Editing carries the stored item and the unsaved draft.
type Editing struct {
	Item  model.Item
	Draft model.Item
}

// Error carries a message fit for the status line.
type Error struct {
	Message string
}

func (Initial) isStatus()            {}
func (Success) isStatus()            {}
func (RequiresPermission) isStatus() {}
func (Editing) isStatus()            {}
func (Error) isStatus()              {}

// Describe renders s for a status line. Initial renders empty.
func Describe(s Status) string {
	switch s := s.(type) {
	case Success:
		return "Saved"
	case RequiresPermission:
		return "Notifications are off. Press ctrl+g to allow them."
	case Editing:
		if s.Item.ID == 0 {
			return "New todo"
		}
		return "Editing"
	case Error:
		return s.Message
	default:
		return ""
	}
}
