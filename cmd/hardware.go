package cmd

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/config"
	"github.com/Seann-Moser/servoclock/pkg/controller"
	"github.com/Seann-Moser/servoclock/pkg/ds3231"
	gpio "github.com/Seann-Moser/servoclock/pkg/io"
	"github.com/Seann-Moser/servoclock/pkg/pca9685"
	"github.com/Seann-Moser/servoclock/pkg/segment"
)

type hardware struct {
	bus     *bus.RegisterBus
	minutes *segment.Segment
	hours   *segment.Segment
	rtc     *ds3231.RTC
	oe      *gpio.OutputEnable
}

func openBus() (*bus.RegisterBus, error) {
	return bus.Open(cfg.Bus.Backend, cfg.Bus.Name, logger.Named("bus"))
}

// faceConfig returns the board settings for "minutes" or "hours".
func faceConfig(name string) (config.Face, error) {
	switch name {
	case controller.Minutes:
		return cfg.Minutes, nil
	case controller.Hours:
		return cfg.Hours, nil
	}
	return config.Face{}, errors.Wrapf(controller.ErrUnknownFace, "%q", name)
}

func openFace(regs *bus.RegisterBus, name string) (*segment.Segment, error) {
	face, err := faceConfig(name)
	if err != nil {
		return nil, err
	}
	l := logger.Named(name)
	servo, err := pca9685.NewServo(regs, face.Address, cfg.Servo(), pca9685.WithLogger(l))
	if err != nil {
		return nil, errors.Wrapf(err, "%s board at 0x%02X", name, face.Address)
	}
	return segment.New(servo, face.SegmentDuties(), l)
}

// openHardware brings up the bus, both boards, the RTC and, when a line is
// configured, the output-enable GPIO. Outputs stay disabled until Enable.
func openHardware() (_ *hardware, err error) {
	h := &hardware{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, h.Close())
		}
	}()
	if h.bus, err = openBus(); err != nil {
		return nil, err
	}
	if h.minutes, err = openFace(h.bus, controller.Minutes); err != nil {
		return nil, err
	}
	if h.hours, err = openFace(h.bus, controller.Hours); err != nil {
		return nil, err
	}
	h.rtc = ds3231.New(h.bus, cfg.RTC.Address)
	if cfg.OutputEnable.Line != "" {
		h.oe, err = gpio.NewOutputEnable(cfg.OutputEnable.Chip, cfg.OutputEnable.Line, logger.Named("oe"))
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Enable turns the PWM outputs on. It is a no-op without an OE line.
func (h *hardware) Enable() error {
	if h.oe == nil {
		return nil
	}
	return h.oe.Enable()
}

func (h *hardware) Close() error {
	var err error
	if h.oe != nil {
		err = multierr.Append(err, h.oe.Close())
	}
	if h.bus != nil {
		err = multierr.Append(err, h.bus.Close())
	}
	return err
}

func (h *hardware) controller() *controller.Controller {
	return controller.New(h.rtc, h.minutes, h.hours,
		controller.WithPollInterval(cfg.PollInterval),
		controller.WithLogger(logger.Named("clock")),
	)
}
