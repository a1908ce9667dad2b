// Package alarm arms one-shot reminder alarms keyed by item id.
package alarm

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoreminder/internal/model"
	"github.com/idilsaglam/todoreminder/internal/notify"
)

type entry struct {
	timer *time.Timer
	at    time.Time
	gen   uint64
}

// Scheduler holds at most one pending alarm per item id. Scheduling an id
// again replaces its alarm.
type Scheduler struct {
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[int64]entry
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New returns a scheduler delivering to n.
func New(n notify.Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: n,
		logger:   log.New(io.Discard),
		now:      time.Now,
		pending:  make(map[int64]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms an alarm for it at its due date. Items without an armed
// reminder are ignored. Past due dates fire right away.
func (s *Scheduler) Schedule(it model.Item) bool {
	if !it.HasReminder() {
		return false
	}
	at := *it.DueDate
	payload := notify.PayloadFor(it)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if old, ok := s.pending[it.ID]; ok {
		old.timer.Stop()
	}
	s.gen++
	gen := s.gen
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.pending[it.ID] = entry{
		timer: time.AfterFunc(delay, func() { s.fire(it.ID, gen, payload) }),
		at:    at,
		gen:   gen,
	}
	s.logger.Debug("alarm armed", "id", it.ID, "at", at.Format(time.RFC3339), "in", delay.Round(time.Second))
	return true
}

func (s *Scheduler) fire(id int64, gen uint64, p notify.Payload) {
	s.mu.Lock()
	cur, ok := s.pending[id]
	if !ok || cur.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if err := s.notifier.Notify(context.Background(), p); err != nil {
		s.logger.Error("notification failed", "id", id, "err", err)
		return
	}
	s.logger.Info("reminder fired", "id", id, "title", p.Title)
}

// Cancel drops the pending alarm for id, if any.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, id)
	s.logger.Debug("alarm cancelled", "id", id)
	return true
}

// Restore arms every item whose reminder is still in the future. It is
// used at start-up because alarms do not outlive the process.
func (s *Scheduler) Restore(items []model.Item) int {
	now := s.now()
	n := 0
	for _, it := range items {
		if it.HasReminder() && !it.DueDate.Before(now) && s.Schedule(it) {
			n++
		}
	}
	return n
}

// Pending returns the ids with an armed alarm, ascending.
func (s *Scheduler) Pending() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// At returns when the pending alarm for id fires.
func (s *Scheduler) At(id int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[id]
	return e.at, ok
}

// Next returns the earliest pending alarm.
func (s *Scheduler) Next() (id int64, at time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, e := range s.pending {
		if !ok || e.at.Before(at) {
			id, at, ok = pid, e.at, true
		}
	}
	return id, at, ok
}

// Stop cancels all pending alarms and waits for in-flight deliveries.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
