package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/notify"
)

// DetailRepository is what the detail screen needs from the repository.
type DetailRepository interface {
	Get(ctx context.Context, id int64) (model.Item, error)
	Create(ctx context.Context, it model.Item) (model.Item, error)
	Update(ctx context.Context, it model.Item) error
	ArmReminder(ctx context.Context, it model.Item, at time.Time) (model.Item, error)
}

// Detail is the state of one item's detail screen, either a stored item
// or a new one not yet saved.
type Detail struct {
	repo DetailRepository
	perm notify.Permission
	opts options

	mu          sync.Mutex
	item        model.Item
	title       string
	description string
	tod         *datefmt.TimeOfDay
	dueDate     *time.Time
	status      Status
}

// NewDetail returns the detail holder for id. Zero means a new item.
func NewDetail(repo DetailRepository, perm notify.Permission, id int64, opts ...Option) *Detail {
	if perm == nil {
		perm = notify.Always{}
	}
	return &Detail{
		repo:   repo,
		perm:   perm,
		opts:   buildOptions(opts),
		item:   model.Item{ID: id},
		status: Initial{},
	}
}

// IsCreatingNew reports whether the item has not been saved yet.
func (d *Detail) IsCreatingNew() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.item.ID == 0
}

// Load reads the stored item into the editable fields. A new item has
// nothing to load.
func (d *Detail) Load(ctx context.Context) {
	d.mu.Lock()
	id := d.item.ID
	d.mu.Unlock()
	if id == 0 {
		d.setStatus(Initial{})
		return
	}

	it, err := d.repo.Get(ctx, id)
	if err != nil {
		d.opts.logger.Error("load todo", "id", id, "err", err)
		msg := "Failed to load todo"
		if errors.Is(err, model.ErrNotFound) {
			msg = "Todo not found"
		}
		d.setStatus(Error{Message: msg})
		return
	}

	d.mu.Lock()
	d.item = it
	d.title = it.Title
	d.description = it.Description
	d.tod = nil
	d.dueDate = nil
	if it.HasReminder() {
		tod := datefmt.TimeOfDayOf(*it.DueDate, d.opts.loc)
		due := *it.DueDate
		d.tod = &tod
		d.dueDate = &due
	}
	d.status = Initial{}
	d.mu.Unlock()
}

// Item returns the stored item as last loaded or saved.
func (d *Detail) Item() model.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.item
}

func (d *Detail) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

func (d *Detail) Description() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.description
}

func (d *Detail) SetTitle(s string) {
	d.mu.Lock()
	d.title = s
	d.mu.Unlock()
}

func (d *Detail) SetDescription(s string) {
	d.mu.Lock()
	d.description = s
	d.mu.Unlock()
}

// SelectTime picks the reminder time of day.
func (d *Detail) SelectTime(h, m int) error {
	tod, err := datefmt.NewTimeOfDay(h, m)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.tod = &tod
	d.mu.Unlock()
	return nil
}

// SelectedTime returns the picked time of day, if any.
func (d *Detail) SelectedTime() (datefmt.TimeOfDay, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tod == nil {
		return datefmt.TimeOfDay{}, false
	}
	return *d.tod, true
}

// SelectDueDate picks the calendar day the reminder fires on. Without
// one, SetReminder uses today.
func (d *Detail) SelectDueDate(t time.Time) {
	d.mu.Lock()
	d.dueDate = &t
	d.mu.Unlock()
}

// FormattedDueDate renders the selected due date.
func (d *Detail) FormattedDueDate() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return datefmt.Format(d.dueDate, d.opts.loc)
}

// Status returns the outcome of the last action.
func (d *Detail) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Detail) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Detail) draft() model.Item {
	it := d.item
	it.Title = d.title
	it.Description = d.description
	return it
}

// BeginEdit marks the screen as holding unsaved changes.
func (d *Detail) BeginEdit() {
	d.mu.Lock()
	d.status = Editing{Item: d.item, Draft: d.draft()}
	d.mu.Unlock()
}

// Save creates the item when new and updates it otherwise. Editing the
// text leaves an armed reminder in place.
func (d *Detail) Save(ctx context.Context) {
	d.mu.Lock()
	draft := d.draft()
	d.mu.Unlock()

	if strings.TrimSpace(draft.Title) == "" {
		d.setStatus(Error{Message: "Title cannot be empty"})
		return
	}

	if draft.ID == 0 {
		created, err := d.repo.Create(ctx, draft)
		if err != nil {
			d.opts.logger.Error("save todo", "err", err)
			d.setStatus(Error{Message: "Failed to save todo"})
			return
		}
		d.mu.Lock()
		d.item = created
		d.status = Success{}
		d.mu.Unlock()
		return
	}

	if err := d.repo.Update(ctx, draft); err != nil {
		d.opts.logger.Error("update todo", "id", draft.ID, "err", err)
		d.setStatus(Error{Message: "Failed to update todo"})
		return
	}
	d.mu.Lock()
	d.item = draft.Normalized()
	d.status = Success{}
	d.mu.Unlock()
}

// SetReminder arms a reminder at the selected time on the selected day,
// or today. Without notification permission nothing is written and the
// status becomes RequiresPermission.
func (d *Detail) SetReminder(ctx context.Context) {
	d.mu.Lock()
	it := d.item
	tod := d.tod
	day := d.dueDate
	d.mu.Unlock()

	switch {
	case tod == nil:
		d.setStatus(Error{Message: "No time selected"})
		return
	case it.ID == 0:
		d.setStatus(Error{Message: "Save the todo before setting a reminder"})
		return
	case !d.perm.Granted():
		d.opts.logger.Debug("reminder needs permission", "id", it.ID)
		d.setStatus(RequiresPermission{})
		return
	}

	base := d.opts.clock().In(d.opts.loc)
	if day != nil {
		base = day.In(d.opts.loc)
	}
	at := tod.On(base)

	armed, err := d.repo.ArmReminder(ctx, it, at)
	if err != nil {
		d.opts.logger.Error("set reminder", "id", it.ID, "err", err)
		d.setStatus(Error{Message: "Failed to set reminder"})
		return
	}
	d.mu.Lock()
	d.item = armed
	d.dueDate = &at
	d.status = Success{}
	d.mu.Unlock()
}

// GrantPermission records the notification grant and retries the
// reminder that asked for it.
func (d *Detail) GrantPermission(ctx context.Context) {
	if err := d.perm.Grant(); err != nil {
		d.opts.logger.Error("grant permission", "err", err)
		d.setStatus(Error{Message: "Failed to allow notifications"})
		return
	}
	if _, ok := d.Status().(RequiresPermission); ok {
		d.SetReminder(ctx)
		return
	}
	d.setStatus(Success{})
}
