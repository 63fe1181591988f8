package io

import (
	"github.com/pkg/errors"
)

// SetPinState drives a GPIO line high (1) or low (0), requesting it as an
// output on first use.
func (io *IO) SetPinState(offset int, state int) error {
	if l, ok := io.lines[offset]; ok {
		return l.SetValue(state)
	}
	l, err := io.request(offset, state)
	if err != nil {
		return errors.Wrapf(err, "request gpio line %d", offset)
	}
	io.lines[offset] = l
	io.logger.Debugw("gpio line requested", "offset", offset, "state", state)
	return nil
}
