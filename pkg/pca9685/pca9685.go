// Package pca9685 drives a PCA9685 16-channel, 12-bit PWM controller.
//
// Datasheet: https://cdn-shop.adafruit.com/datasheets/PCA9685.pdf
package pca9685

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Seann-Moser/servoclock/pkg/bus"
)

const (
	DefaultAddress = 0x40

	regMode1    = 0x00
	regLEDBase  = 0x06 // LED0_ON_L; each channel spans 4 registers.
	regPrescale = 0xFE

	mode1AllCall = 0x01
	mode1Sleep   = 0x10
	mode1AI      = 0x20
	mode1Restart = 0x80

	oscillator = 25_000_000
	steps      = 4096

	// MinFrequency and MaxFrequency are the limits of the 8-bit prescaler
	// with the internal oscillator.
	MinFrequency = 24
	MaxFrequency = 1526

	NumPins = 16

	// MaxDuty is the top of the logical duty scale.
	MaxDuty = 4095

	// fullCount sets bit 4 of LEDn_ON_H or LEDn_OFF_H: the channel is held
	// fully on or fully off.
	fullCount = 4096

	// wakeDelay is the oscillator start-up time after leaving sleep.
	wakeDelay = 500 * time.Microsecond
)

// Registers is the register-level access a controller needs from the bus.
type Registers interface {
	Read(addr uint16, reg byte, length int) ([]byte, error)
	Write(addr uint16, reg byte, data []byte) error
	WriteValues(addr uint16, reg byte, values ...int) error
}

// Controller is one PCA9685 board. It is not safe for concurrent use; callers
// sharing a board must serialise access to the whole controller.
type Controller struct {
	regs   Registers
	addr   uint16
	pins   [NumPins]*Pin
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

type options struct {
	clock  clockwork.Clock
	logger *zap.SugaredLogger
	bound  Bound
}

// Option configures a Controller.
type Option func(*options)

// WithClock sets the clock used for the wake-up delay.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithBound sets the duty bounding strategy every pin applies before
// writing. The default is Identity.
func WithBound(b Bound) Option {
	return func(o *options) { o.bound = b }
}

// New creates the controller at addr and resets its mode register.
func New(regs Registers, addr uint16, opts ...Option) (*Controller, error) {
	o := options{
		clock:  clockwork.NewRealClock(),
		logger: zap.NewNop().Sugar(),
		bound:  Identity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if addr > 0x7F {
		return nil, errors.Wrapf(bus.ErrConfiguration, "i2c address 0x%02X is not 7-bit", addr)
	}
	c := &Controller{
		regs:   regs,
		addr:   addr,
		clock:  o.clock,
		logger: o.logger.With("pca9685", addr),
	}
	for i := range c.pins {
		c.pins[i] = &Pin{
			ctrl:   c,
			index:  i,
			offset: regLEDBase + 4*byte(i),
			bound:  o.bound,
		}
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) reset() error {
	return c.regs.WriteValues(c.addr, regMode1, 0x00)
}

func (c *Controller) Address() uint16 { return c.addr }

// Pin returns the handle for channel index.
func (c *Controller) Pin(index int) (*Pin, error) {
	if index < 0 || index >= NumPins {
		return nil, errors.Wrapf(bus.ErrConfiguration, "pin %d outside 0-%d", index, NumPins-1)
	}
	return c.pins[index], nil
}

// Frequency reads the prescaler and returns the PWM frequency it yields.
// See datasheet §7.3.5.
func (c *Controller) Frequency() (int, error) {
	data, err := c.regs.Read(c.addr, regPrescale, 1)
	if err != nil {
		return 0, err
	}
	return prescaleToFrequency(data[0]), nil
}

// SetFrequency reprograms the prescaler. The prescaler only latches while the
// oscillator sleeps, so the board is put to sleep, written, woken and given
// the oscillator start-up delay before restart is set.
func (c *Controller) SetFrequency(hz int) error {
	if hz < MinFrequency || hz > MaxFrequency {
		return errors.Wrapf(bus.ErrConfiguration, "pwm frequency %dHz, prescaler allows %dHz - %dHz", hz, MinFrequency, MaxFrequency)
	}
	scale := frequencyToPrescale(hz)
	if err := c.regs.WriteValues(c.addr, regMode1, mode1Sleep); err != nil {
		return err
	}
	if err := c.regs.WriteValues(c.addr, regPrescale, int(scale)); err != nil {
		return err
	}
	if err := c.regs.WriteValues(c.addr, regMode1, 0x00); err != nil {
		return err
	}
	c.clock.Sleep(wakeDelay)
	if err := c.regs.WriteValues(c.addr, regMode1, mode1Restart|mode1AI|mode1AllCall); err != nil {
		return err
	}
	c.logger.Infow("pwm frequency set", "hz", hz, "prescale", scale)
	return nil
}

func frequencyToPrescale(hz int) byte {
	return byte(math.Round(oscillator / (steps * float64(hz))))
}

func prescaleToFrequency(scale byte) int {
	return int(math.Round(oscillator / (steps * (float64(scale) + 1))))
}
