package state

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

type options struct {
	clock  func() time.Time
	loc    *time.Location
	logger *log.Logger
}

// Option configures a state holder.
type Option func(*options)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLocation sets the zone reminder times are picked and shown in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		clock:  time.Now,
		loc:    time.Local,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
