package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
	"gotest.tools/assert"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/ds3231"
)

type fakeRTC struct {
	mu  sync.Mutex
	now ds3231.Time
	err error
}

func (f *fakeRTC) Now() (ds3231.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now, f.err
}

func (f *fakeRTC) SetTime(t ds3231.Time) error {
	if err := t.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
	return nil
}

func (f *fakeRTC) set(t ds3231.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

type pinWrite struct{ Pin, Duty int }

type fakeDisplay struct {
	writes  chan int
	pins    []pinWrite
	last    int
	written bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{writes: make(chan int, 16)}
}

func (f *fakeDisplay) Write(n int) error {
	if n < 0 || n > 99 {
		return errors.Wrapf(bus.ErrConfiguration, "number %d", n)
	}
	f.last, f.written = n, true
	f.writes <- n
	return nil
}

func (f *fakeDisplay) SetPin(pin, duty int) error {
	if pin < 0 || pin > 15 {
		return errors.Wrapf(bus.ErrConfiguration, "pin %d", pin)
	}
	f.pins = append(f.pins, pinWrite{pin, duty})
	f.written = false
	return nil
}

func (f *fakeDisplay) Last() (int, bool) { return f.last, f.written }

func (f *fakeDisplay) drain() []int {
	var out []int
	for {
		select {
		case n := <-f.writes:
			out = append(out, n)
		default:
			return out
		}
	}
}

func expectWrite(t *testing.T, d *fakeDisplay, want int) {
	t.Helper()
	select {
	case got := <-d.writes:
		assert.Equal(t, got, want)
	case <-time.After(5 * time.Second):
		t.Fatalf("no write of %d", want)
	}
}

func TestTickWritesOnSecondChange(t *testing.T) {
	rtc := &fakeRTC{now: ds3231.Time{Hour: 21, Minute: 4, Second: 37}}
	minutes, hours := newFakeDisplay(), newFakeDisplay()
	c := New(rtc, minutes, hours, WithLogger(zaptest.NewLogger(t).Sugar()))

	assert.NilError(t, c.tick())
	assert.DeepEqual(t, minutes.drain(), []int{4})
	assert.DeepEqual(t, hours.drain(), []int{21})

	// Same second: nothing is redrawn.
	assert.NilError(t, c.tick())
	assert.Equal(t, len(minutes.drain()), 0)
	assert.Equal(t, len(hours.drain()), 0)

	rtc.set(ds3231.Time{Hour: 21, Minute: 5, Second: 0})
	assert.NilError(t, c.tick())
	assert.DeepEqual(t, minutes.drain(), []int{5})
	assert.DeepEqual(t, hours.drain(), []int{21})

	assert.NilError(t, c.Refresh())
	assert.DeepEqual(t, minutes.drain(), []int{5})

	s := c.Status()
	assert.Equal(t, s.Time, "21:05:00")
	assert.Equal(t, *s.Minutes, 5)
	assert.Equal(t, *s.Hours, 21)
}

func TestTickReportsErrors(t *testing.T) {
	rtc := &fakeRTC{err: errors.New("nack")}
	minutes := newFakeDisplay()
	c := New(rtc, minutes, nil)
	assert.ErrorContains(t, c.tick(), "nack")
	assert.Equal(t, len(minutes.drain()), 0)
}

func TestRun(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rtc := &fakeRTC{now: ds3231.Time{Hour: 9, Minute: 30, Second: 1}}
	minutes, hours := newFakeDisplay(), newFakeDisplay()
	c := New(rtc, minutes, hours,
		WithClock(clk),
		WithPollInterval(50*time.Millisecond),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	clk.BlockUntil(1)
	clk.Advance(50 * time.Millisecond)
	expectWrite(t, minutes, 30)
	expectWrite(t, hours, 9)

	rtc.set(ds3231.Time{Hour: 9, Minute: 31, Second: 0})
	clk.Advance(50 * time.Millisecond)
	expectWrite(t, minutes, 31)
	expectWrite(t, hours, 9)

	cancel()
	select {
	case err := <-done:
		assert.Assert(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestFaceOperations(t *testing.T) {
	rtc := &fakeRTC{}
	minutes := newFakeDisplay()
	c := New(rtc, minutes, nil)

	assert.NilError(t, c.WriteFace(Minutes, 12))
	assert.DeepEqual(t, minutes.drain(), []int{12})

	err := c.WriteFace(Hours, 1)
	assert.Assert(t, errors.Is(err, ErrUnknownFace))
	err = c.WriteFace(Minutes, 100)
	assert.Assert(t, errors.Is(err, bus.ErrConfiguration))

	assert.NilError(t, c.SetPin(Minutes, 3, 400))
	assert.DeepEqual(t, minutes.pins, []pinWrite{{3, 400}})

	assert.NilError(t, c.SetTime(ds3231.Time{Hour: 7, Minute: 8, Second: 9}))
	now, _ := rtc.Now()
	assert.Equal(t, now, ds3231.Time{Hour: 7, Minute: 8, Second: 9})
	err = c.SetTime(ds3231.Time{Hour: 25})
	assert.Assert(t, errors.Is(err, bus.ErrConfiguration))
}
