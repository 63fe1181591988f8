package pca9685

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/Seann-Moser/servoclock/pkg/bus"
)

// Pin is one PWM channel. It holds no state of its own; everything lives in
// the controller's registers. A Pin must not outlive its Controller.
type Pin struct {
	ctrl   *Controller
	index  int
	offset byte
	bound  Bound
}

func (p *Pin) Index() int { return p.index }

// PWM returns the raw on/off counts. Datasheet §7.3.3.
func (p *Pin) PWM() (on, off int, err error) {
	data, err := p.ctrl.regs.Read(p.ctrl.addr, p.offset, 4)
	if err != nil {
		return 0, 0, err
	}
	return int(binary.LittleEndian.Uint16(data[0:2])), int(binary.LittleEndian.Uint16(data[2:4])), nil
}

// SetPWM writes the raw on/off counts. on must be 0-4095 and off 0-4096;
// the only other accepted pair is the full-on encoding (4096, 0).
func (p *Pin) SetPWM(on, off int) error {
	fullOn := on == fullCount && off == 0
	if !fullOn && (on < 0 || on > MaxDuty || off < 0 || off > fullCount) {
		return errors.Wrapf(bus.ErrInvalidPWM, "(%d, %d) on pin %d of 0x%02X", on, off, p.index, p.ctrl.addr)
	}
	var data [4]byte
	binary.LittleEndian.PutUint16(data[0:2], uint16(on))
	binary.LittleEndian.PutUint16(data[2:4], uint16(off))
	return p.ctrl.regs.Write(p.ctrl.addr, p.offset, data[:])
}

// Duty returns the logical duty, 0-4095.
func (p *Pin) Duty() (int, error) {
	on, off, err := p.PWM()
	if err != nil {
		return 0, err
	}
	switch {
	case on == 0 && off == fullCount:
		return 0, nil
	case on == fullCount && off == 0:
		return MaxDuty, nil
	default:
		return off, nil
	}
}

// SetDuty bounds value with the pin's strategy and writes it. The rails use
// the dedicated full-off and full-on encodings.
func (p *Pin) SetDuty(value int) error {
	value = p.bound(value)
	if value < 0 || value > MaxDuty {
		return errors.Wrapf(bus.ErrInvalidPWM, "duty %d on pin %d of 0x%02X outside 0-%d", value, p.index, p.ctrl.addr, MaxDuty)
	}
	switch value {
	case 0:
		return p.SetPWM(0, fullCount)
	case MaxDuty:
		return p.SetPWM(fullCount, 0)
	default:
		return p.SetPWM(0, value)
	}
}
