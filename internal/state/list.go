package state

import (
	"context"
	"sync"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/reminder"
)

// ListRepository is what the list screen needs from the repository.
type ListRepository interface {
	Watch(ctx context.Context) <-chan []model.Item
	Update(ctx context.Context, it model.Item) error
	Delete(ctx context.Context, id int64) error
	ClearReminders(ctx context.Context, items []model.Item) (int, error)
	SweepExpired(ctx context.Context) (int, error)
}

// Stats are the list header counters.
type Stats struct {
	Done, Pending, Armed int
}

// List is the list screen state. It is safe for concurrent use.
type List struct {
	repo ListRepository
	opts options

	mu     sync.Mutex
	items  []model.Item
	status Status
}

// NewList returns a list holder with no items and status Initial.
func NewList(repo ListRepository, opts ...Option) *List {
	return &List{repo: repo, opts: buildOptions(opts), status: Initial{}}
}

// Subscribe keeps the held items in sync with the repository until ctx
// ends. Each snapshot is stored and then forwarded on the returned
// channel, which closes with the subscription.
func (l *List) Subscribe(ctx context.Context) <-chan []model.Item {
	in := l.repo.Watch(ctx)
	out := make(chan []model.Item)
	go func() {
		defer close(out)
		for items := range in {
			l.mu.Lock()
			l.items = items
			l.mu.Unlock()
			l.opts.logger.Debug("items received", "count", len(items))
			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Items returns the latest snapshot.
func (l *List) Items() []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Item(nil), l.items...)
}

// Stats counts the latest snapshot.
func (l *List) Stats() Stats {
	items := l.Items()
	st := Stats{Armed: reminder.Armed(items)}
	for _, it := range items {
		if it.Completed {
			st.Done++
		} else {
			st.Pending++
		}
	}
	return st
}

// Status returns the outcome of the last action.
func (l *List) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *List) setStatus(s Status) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

func (l *List) find(id int64) (model.Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

// ToggleCompleted flips the done flag of id.
func (l *List) ToggleCompleted(ctx context.Context, id int64) {
	it, ok := l.find(id)
	if !ok {
		l.setStatus(Error{Message: "Todo not found"})
		return
	}
	it.Completed = !it.Completed
	if err := l.repo.Update(ctx, it); err != nil {
		l.opts.logger.Error("update todo", "id", id, "err", err)
		l.setStatus(Error{Message: "Failed to update todo"})
		return
	}
	l.setStatus(Success{})
}

// Delete removes id.
func (l *List) Delete(ctx context.Context, id int64) {
	if err := l.repo.Delete(ctx, id); err != nil {
		l.opts.logger.Error("delete todo", "id", id, "err", err)
		l.setStatus(Error{Message: "Failed to delete todo"})
		return
	}
	l.setStatus(Success{})
}

// ClearAllReminders clears every armed reminder in the latest snapshot.
func (l *List) ClearAllReminders(ctx context.Context) int {
	n, err := l.repo.ClearReminders(ctx, l.Items())
	if err != nil {
		l.opts.logger.Error("clear reminders", "err", err)
		l.setStatus(Error{Message: "Failed to clear reminders"})
		return n
	}
	l.opts.logger.Info("cleared reminders", "count", n)
	l.setStatus(Success{})
	return n
}

// CheckExpired returns how many reminders in the latest snapshot have
// expired and then runs the repository sweep.
func (l *List) CheckExpired(ctx context.Context) int {
	expired := len(reminder.Expired(l.opts.clock(), l.Items()))
	if _, err := l.repo.SweepExpired(ctx); err != nil {
		l.opts.logger.Error("sweep", "err", err)
		l.setStatus(Error{Message: "Failed to check reminders"})
		return expired
	}
	l.setStatus(Success{})
	return expired
}
