package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/idilsaglam/todoreminder/internal/model"
)

// memRepo is an in-memory repository for both screens.
type memRepo struct {
	mu     sync.Mutex
	items  map[int64]model.Item
	nextID int64
	writes int
	fail   error
	now    time.Time

	watch chan []model.Item
}

func newMemRepo(now time.Time, items ...model.Item) *memRepo {
	r := &memRepo{items: make(map[int64]model.Item), now: now}
	for _, it := range items {
		r.nextID++
		it.ID = r.nextID
		r.items[it.ID] = it
	}
	return r
}

func (r *memRepo) snapshot() []model.Item {
	out := make([]model.Item, 0, len(r.items))
	for id := int64(1); id <= r.nextID; id++ {
		if it, ok := r.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func (r *memRepo) Watch(ctx context.Context) <-chan []model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watch = make(chan []model.Item, 8)
	r.watch <- r.snapshot()
	ch := r.watch
	go func() {
		<-ctx.Done()
		r.mu.Lock()
		close(ch)
		r.watch = nil
		r.mu.Unlock()
	}()
	return ch
}

// changed pushes a snapshot to the watcher. Callers hold r.mu.
func (r *memRepo) changed() {
	r.writes++
	if r.watch != nil {
		r.watch <- r.snapshot()
	}
}

func (r *memRepo) Get(_ context.Context, id int64) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return model.Item{}, r.fail
	}
	it, ok := r.items[id]
	if !ok {
		return model.Item{}, model.ErrNotFound
	}
	return it, nil
}

func (r *memRepo) Create(_ context.Context, it model.Item) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return model.Item{}, r.fail
	}
	r.nextID++
	it.ID = r.nextID
	it = it.WithoutReminder()
	r.items[it.ID] = it
	r.changed()
	return it, nil
}

func (r *memRepo) Update(_ context.Context, it model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.items[it.ID]; !ok {
		return model.ErrNotFound
	}
	r.items[it.ID] = it.Normalized()
	r.changed()
	return nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	delete(r.items, id)
	r.changed()
	return nil
}

func (r *memRepo) ArmReminder(_ context.Context, it model.Item, at time.Time) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return model.Item{}, r.fail
	}
	stored, ok := r.items[it.ID]
	if !ok {
		return model.Item{}, model.ErrNotFound
	}
	stored = stored.WithReminder(at)
	r.items[it.ID] = stored
	r.changed()
	return stored, nil
}

func (r *memRepo) ClearReminders(_ context.Context, items []model.Item) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	n := 0
	for _, it := range items {
		stored, ok := r.items[it.ID]
		if !ok || !it.ReminderSet {
			continue
		}
		r.items[it.ID] = stored.WithoutReminder()
		n++
	}
	if n > 0 {
		r.changed()
	}
	return n, nil
}

func (r *memRepo) SweepExpired(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	n := 0
	for id, it := range r.items {
		if it.ReminderExpired(r.now) {
			r.items[id] = it.WithoutReminder()
			n++
		}
	}
	if n > 0 {
		r.changed()
	}
	return n, nil
}

func (r *memRepo) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memRepo) stored(id int64) model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

type togglePermission struct {
	granted bool
	grants  int
}

func (p *togglePermission) Granted() bool { return p.granted }
func (p *togglePermission) Grant() error {
	p.granted = true
	p.grants++
	return nil
}
func (p *togglePermission) Revoke() error {
	p.granted = false
	return nil
}

var errDisk = errors.New("disk I/O error")
