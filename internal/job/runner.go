// Package job runs named recurring background jobs. A name is active at
// most once per process and, through a lock file, once per data dir.
package job

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
)

// SweepExpiredReminders is the name of the hourly expiry sweep.
const SweepExpiredReminders = "check_expired_reminders"

// Func is one run of a job.
type Func func(ctx context.Context) error

type registered struct {
	id    cron.EntryID
	every time.Duration
	fn    Func
	lock  *flock.Flock
}

// Runner owns a cron scheduler and the lock files of its jobs.
type Runner struct {
	lockDir string
	logger  *log.Logger
	cron    *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*registered
}

// NewRunner keeps job lock files under lockDir.
func NewRunner(lockDir string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		lockDir: lockDir,
		logger:  logger,
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*registered),
	}
}

// Schedule registers fn to run every period under name. It reports false
// when name is already active, here or in another process; the existing
// schedule is kept.
func (r *Runner) Schedule(name string, every time.Duration, fn Func) (bool, error) {
	if every < time.Second {
		return false, fmt.Errorf("job %s: period %s is below one second", name, every)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[name]; ok {
		r.logger.Debug("job already scheduled", "job", name)
		return false, nil
	}

	if err := os.MkdirAll(r.lockDir, 0o700); err != nil {
		return false, fmt.Errorf("mkdir: %w", err)
	}
	lock := flock.New(filepath.Join(r.lockDir, name+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock job %s: %w", name, err)
	}
	if !locked {
		r.logger.Info("job active in another process", "job", name)
		return false, nil
	}

	id := r.cron.Schedule(cron.Every(every), cron.FuncJob(func() { r.run(name, fn) }))
	r.jobs[name] = &registered{id: id, every: every, fn: fn, lock: lock}
	r.logger.Debug("job scheduled", "job", name, "every", every)
	return true, nil
}

func (r *Runner) run(name string, fn Func) {
	start := time.Now()
	if err := fn(r.ctx); err != nil {
		// the next tick is the retry
		r.logger.Error("job failed", "job", name, "err", err)
		return
	}
	r.logger.Debug("job done", "job", name, "took", time.Since(start).Round(time.Millisecond))
}

// Trigger runs name once now, outside its schedule.
func (r *Runner) Trigger(name string) error {
	r.mu.Lock()
	j, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s is not scheduled", name)
	}
	return j.fn(r.ctx)
}

// Active lists scheduled job names.
func (r *Runner) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun returns when name runs next. It is zero before Start.
func (r *Runner) NextRun(name string) time.Time {
	r.mu.Lock()
	j, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return r.cron.Entry(j.id).Next
}

// Start begins ticking in the background.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the scheduler, waits for running jobs and releases the locks.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, j := range r.jobs {
		if err := j.lock.Unlock(); err != nil {
			r.logger.Warn("unlock job", "job", name, "err", err)
		}
		delete(r.jobs, name)
	}
}

// Running reports whether some process holds the lock for name.
func Running(lockDir, name string) (bool, error) {
	lock := flock.New(filepath.Join(lockDir, name+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("probe job %s: %w", name, err)
	}
	if !locked {
		return true, nil
	}
	return false, lock.Unlock()
}
