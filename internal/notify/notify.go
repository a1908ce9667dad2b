// Package notify delivers reminder notifications and tracks whether the
// user allowed them.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"

	"github.com/idilsaglam/todoreminder/internal/model"
)

// Payload is what a fired alarm carries.
type Payload struct {
	ItemID      int64
	Title       string
	Description string
}

// PayloadFor builds the payload for it.
func PayloadFor(it model.Item) Payload {
	return Payload{ItemID: it.ID, Title: it.Title, Description: it.Description}
}

// Notifier shows a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, p Payload) error
}

// Desktop shows system notifications through beeep.
type Desktop struct {
	Icon   string
	logger *log.Logger
}

// NewDesktop returns a desktop notifier. icon may be empty.
func NewDesktop(icon string, logger *log.Logger) *Desktop {
	return &Desktop{Icon: icon, logger: logger}
}

func (d *Desktop) Notify(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := p.Description
	if strings.TrimSpace(body) == "" {
		body = "Reminder"
	}
	if err := beeep.Notify(p.Title, body, d.Icon); err != nil {
		return fmt.Errorf("desktop notify item %d: %w", p.ItemID, err)
	}
	if d.logger != nil {
		d.logger.Debug("notification shown", "id", p.ItemID, "title", p.Title)
	}
	return nil
}

// LogNotifier writes notifications to a logger instead of the desktop.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier returns a notifier that only logs.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, p Payload) error {
	n.logger.Info("reminder", "id", p.ItemID, "title", p.Title, "description", p.Description)
	return nil
}
