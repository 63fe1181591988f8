package io

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev/device/rpi"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// OutputEnable drives the active-low OE pin shared by the PCA9685 boards.
// While it is high every PWM output is off and the servos go limp.
type OutputEnable struct {
	io     *IO
	offset int
}

// ParseLine resolves a Raspberry Pi pin name such as "GPIO17" or "J8p11" to
// a line offset.
func ParseLine(name string) (int, error) {
	offset, err := rpi.Pin(name)
	if err != nil {
		return 0, errors.Wrapf(err, "gpio line %q", name)
	}
	return offset, nil
}

// NewOutputEnable requests lineName on chipset, starting with outputs off.
func NewOutputEnable(chipset, lineName string, logger *zap.SugaredLogger) (*OutputEnable, error) {
	offset, err := ParseLine(lineName)
	if err != nil {
		return nil, err
	}
	gpio, err := New(chipset, logger)
	if err != nil {
		return nil, err
	}
	oe := &OutputEnable{io: gpio, offset: offset}
	if err := oe.Disable(); err != nil {
		return nil, multierr.Append(err, gpio.Close())
	}
	return oe, nil
}

func (o *OutputEnable) Enable() error { return o.io.SetPinState(o.offset, 0) }

func (o *OutputEnable) Disable() error { return o.io.SetPinState(o.offset, 1) }

// Close turns the outputs off and releases the line.
func (o *OutputEnable) Close() error {
	return multierr.Append(o.Disable(), o.io.Close())
}
