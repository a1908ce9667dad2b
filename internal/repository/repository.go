// Package repository mediates between UI or background callers and the
// item store: the live item stream, seeding, bulk clear and the expiry
// sweep.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/reminder"
)

// Store is the persistent item table.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id int64) (model.Item, error)
	Insert(ctx context.Context, it model.Item) (model.Item, error)
	Update(ctx context.Context, it model.Item) error
	SetReminder(ctx context.Context, id int64, set bool, due *time.Time) error
	Delete(ctx context.Context, id int64) error
	InsertIfEmpty(ctx context.Context, items []model.Item) (int, error)
}

// Alarms arms and cancels one-shot reminder alarms.
type Alarms interface {
	Schedule(it model.Item) bool
	Cancel(id int64) bool
}

type noAlarms struct{}

func (noAlarms) Schedule(model.Item) bool { return false }
func (noAlarms) Cancel(int64) bool        { return false }

// Repository is safe for concurrent use. It takes no lock around store
// writes; every reminder write carries both fields of the pair.
type Repository struct {
	store   Store
	alarms  Alarms
	clock   func() time.Time
	logger  *log.Logger
	starter []model.Item

	// snap orders each list-then-offer so an older snapshot never
	// replaces a newer one.
	snap sync.Mutex
	mu   sync.Mutex
	subs map[chan []model.Item]struct{}
}

// Option configures a Repository.
type Option func(*Repository)

// WithAlarms sets the alarm scheduler used when arming, deleting and
// clearing.
func WithAlarms(a Alarms) Option {
	return func(r *Repository) { r.alarms = a }
}

// WithClock overrides time.Now for the sweep.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.clock = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithStarter sets the items SeedIfEmpty inserts.
func WithStarter(items []model.Item) Option {
	return func(r *Repository) { r.starter = items }
}

// New builds a repository over store.
func New(store Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		alarms: noAlarms{},
		clock:  time.Now,
		logger: log.New(io.Discard),
		subs:   make(map[chan []model.Item]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAll returns every item ordered by insertion.
func (r *Repository) ListAll(ctx context.Context) ([]model.Item, error) {
	return r.store.List(ctx)
}

// Watch streams item snapshots: the current one first, then one after
// every change made through r or reported via Refresh. A slow reader only
// ever sees the latest snapshot. The channel closes when ctx ends.
func (r *Repository) Watch(ctx context.Context) <-chan []model.Item {
	ch := make(chan []model.Item, 1)

	r.snap.Lock()
	items, err := r.store.List(ctx)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	if err != nil {
		r.logger.Error("initial snapshot", "err", err)
	} else {
		offer(ch, items)
	}
	r.mu.Unlock()
	r.snap.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, ch)
		close(ch)
		r.mu.Unlock()
	}()
	return ch
}

// Refresh re-reads the store and pushes a snapshot to every watcher.
func (r *Repository) Refresh(ctx context.Context) {
	r.snap.Lock()
	defer r.snap.Unlock()
	r.mu.Lock()
	n := len(r.subs)
	r.mu.Unlock()
	if n == 0 {
		return
	}
	items, err := r.store.List(ctx)
	if err != nil {
		r.logger.Error("refresh items", "err", err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subs {
		offer(ch, items)
	}
}

// offer replaces any unread snapshot with items. Callers hold r.mu.
func offer(ch chan []model.Item, items []model.Item) {
	snapshot := append([]model.Item(nil), items...)
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}

// Get returns the item with id or model.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (model.Item, error) {
	return r.store.Get(ctx, id)
}

// Create validates and inserts it with a fresh id and no reminder.
func (r *Repository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	if err := it.Validate(); err != nil {
		return model.Item{}, err
	}
	it.ID = 0
	created, err := r.store.Insert(ctx, it.WithoutReminder())
	if err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	r.logger.Debug("item created", "id", created.ID)
	r.Refresh(ctx)
	return created, nil
}

// Update validates and overwrites the row with it.ID. Last write wins.
func (r *Repository) Update(ctx context.Context, it model.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if err := r.store.Update(ctx, it.Normalized()); err != nil {
		return fmt.Errorf("update item %d: %w", it.ID, err)
	}
	r.Refresh(ctx)
	return nil
}

// Delete removes id and cancels its pending alarm. Missing ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	r.alarms.Cancel(id)
	r.Refresh(ctx)
	return nil
}

// ArmReminder writes the armed pair for it and then schedules its alarm.
func (r *Repository) ArmReminder(ctx context.Context, it model.Item, at time.Time) (model.Item, error) {
	armed := it.WithReminder(at)
	if err := r.store.SetReminder(ctx, it.ID, true, armed.DueDate); err != nil {
		return model.Item{}, fmt.Errorf("arm reminder %d: %w", it.ID, err)
	}
	r.alarms.Schedule(armed)
	r.logger.Info("reminder armed", "id", it.ID, "at", at.Format(time.RFC3339))
	r.Refresh(ctx)
	return armed, nil
}

// ClearReminders clears the pair of every armed item in items, one write
// per item, and cancels the alarm of each item once its write succeeded.
// Items deleted meanwhile are skipped. It returns how many were cleared.
func (r *Repository) ClearReminders(ctx context.Context, items []model.Item) (int, error) {
	var (
		n    int
		errs []error
	)
	for _, it := range items {
		if !it.ReminderSet {
			continue
		}
		if err := r.clear(ctx, it.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				r.alarms.Cancel(it.ID)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		r.alarms.Cancel(it.ID)
		n++
	}
	if n > 0 {
		r.Refresh(ctx)
	}
	return n, errors.Join(errs...)
}

// SweepExpired clears the pair of every item whose reminder is due before
// now. The alarm has already fired, so nothing is cancelled. Running it
// again with nothing newly expired changes nothing.
func (r *Repository) SweepExpired(ctx context.Context) (int, error) {
	items, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	expired := reminder.Expired(r.clock(), items)

	var (
		n    int
		errs []error
	)
	for _, it := range expired {
		if err := r.clear(ctx, it.ID); err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				errs = append(errs, err)
			}
			continue
		}
		n++
	}
	if n > 0 {
		r.Refresh(ctx)
	}
	r.logger.Debug("sweep done", "expired", len(expired), "cleared", n)
	return n, errors.Join(errs...)
}

func (r *Repository) clear(ctx context.Context, id int64) error {
	if err := r.store.SetReminder(ctx, id, false, nil); err != nil {
		return fmt.Errorf("clear reminder %d: %w", id, err)
	}
	return nil
}

// SeedIfEmpty inserts the starter items when the store has no rows. The
// check and the inserts share one store transaction.
func (r *Repository) SeedIfEmpty(ctx context.Context) (int, error) {
	if len(r.starter) == 0 {
		return 0, nil
	}
	n, err := r.store.InsertIfEmpty(ctx, r.starter)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		r.logger.Info("inserted starter items", "count", n)
		r.Refresh(ctx)
	}
	return n, nil
}
