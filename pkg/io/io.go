package io

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// line is the part of *gpiocdev.Line the clock uses.
type line interface {
	SetValue(value int) error
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Close() error
}

// IO owns a GPIO chip and the output lines requested from it.
type IO struct {
	chip    interface{ Close() error }
	request func(offset, value int) (line, error)
	lines   map[int]line
	logger  *zap.SugaredLogger
}

func New(chipset string, logger *zap.SugaredLogger) (*IO, error) {
	c, err := gpiocdev.NewChip(chipset)
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip %s", chipset)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	request := func(offset, value int) (line, error) {
		return c.RequestLine(offset, gpiocdev.AsOutput(value))
	}
	return &IO{
		chip:    c,
		request: request,
		lines:   make(map[int]line),
		logger:  logger.With("gpio", chipset),
	}, nil
}

// Close returns every requested line to input and releases the chip.
func (io *IO) Close() error {
	var err error
	for offset, l := range io.lines {
		err = multierr.Append(err, l.Reconfigure(gpiocdev.AsInput))
		err = multierr.Append(err, l.Close())
		delete(io.lines, offset)
	}
	if io.chip != nil {
		err = multierr.Append(err, io.chip.Close())
	}
	return err
}
