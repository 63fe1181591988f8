// Package controller keeps the clock faces in step with the RTC.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Seann-Moser/servoclock/pkg/ds3231"
)

const (
	Minutes = "minutes"
	Hours   = "hours"
)

// TimeSource is the RTC.
type TimeSource interface {
	Now() (ds3231.Time, error)
	SetTime(t ds3231.Time) error
}

// Display is one two-digit face.
type Display interface {
	Write(number int) error
	SetPin(pin, duty int) error
	Last() (int, bool)
}

// Controller polls the RTC and redraws both faces whenever the second
// changes. All hardware access goes through mu, so the polling loop and the
// HTTP API can share the boards.
type Controller struct {
	mu      sync.Mutex
	rtc     TimeSource
	faces   map[string]Display
	clock   clockwork.Clock
	poll    time.Duration
	logger  *zap.SugaredLogger
	second  int
	current ds3231.Time
}

type Option func(*Controller)

func WithClock(c clockwork.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithPollInterval sets how often the RTC second is read.
func WithPollInterval(d time.Duration) Option {
	return func(ctrl *Controller) { ctrl.poll = d }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(ctrl *Controller) { ctrl.logger = l }
}

// New builds a controller. hours or minutes may be nil when only one face
// is fitted.
func New(rtc TimeSource, minutes, hours Display, opts ...Option) *Controller {
	c := &Controller{
		rtc:    rtc,
		faces:  make(map[string]Display),
		clock:  clockwork.NewRealClock(),
		poll:   100 * time.Millisecond,
		logger: zap.NewNop().Sugar(),
		second: -1,
	}
	if minutes != nil {
		c.faces[Minutes] = minutes
	}
	if hours != nil {
		c.faces[Hours] = hours
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled. Hardware errors are logged and the loop
// carries on at the next tick.
func (c *Controller) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.poll)
	defer ticker.Stop()
	c.logger.Infow("clock running", "poll", c.poll)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := c.tick(); err != nil {
				c.logger.Errorw("update failed", "error", err)
			}
		}
	}
}

func (c *Controller) tick() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.rtc.Now()
	if err != nil {
		return err
	}
	if t.Second == c.second {
		return nil
	}
	c.second = t.Second
	c.current = t
	c.logger.Infow("time", "now", t.String())
	return c.show(t)
}

func (c *Controller) show(t ds3231.Time) error {
	var err error
	if f, ok := c.faces[Minutes]; ok {
		err = multierr.Append(err, f.Write(t.Minute))
	}
	if f, ok := c.faces[Hours]; ok {
		err = multierr.Append(err, f.Write(t.Hour))
	}
	return err
}

// Refresh reads the RTC and redraws both faces regardless of the second.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	c.second = -1
	c.mu.Unlock()
	return c.tick()
}

// Status is a snapshot of what the clock shows.
type Status struct {
	Time    string `json:"time"`
	Minutes *int   `json:"minutes"`
	Hours   *int   `json:"hours"`
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{Time: c.current.String()}
	if f, ok := c.faces[Minutes]; ok {
		if n, ok := f.Last(); ok {
			s.Minutes = &n
		}
	}
	if f, ok := c.faces[Hours]; ok {
		if n, ok := f.Last(); ok {
			s.Hours = &n
		}
	}
	return s
}

// WriteFace shows number on the named face until the next second change.
func (c *Controller) WriteFace(name string, number int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.faces[name]
	if !ok {
		return errUnknownFace(name)
	}
	return f.Write(number)
}

// SetPin moves one servo of the named face, for calibration.
func (c *Controller) SetPin(name string, pin, duty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.faces[name]
	if !ok {
		return errUnknownFace(name)
	}
	return f.SetPin(pin, duty)
}

// SetTime sets the RTC and redraws on the next tick.
func (c *Controller) SetTime(t ds3231.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rtc.SetTime(t); err != nil {
		return err
	}
	c.second = -1
	c.logger.Infow("rtc set", "time", t.String())
	return nil
}
