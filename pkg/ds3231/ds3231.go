// Package ds3231 reads and sets the time on a DS3231 precision RTC.
//
// Datasheet: https://cdn-shop.adafruit.com/product-files/3013/DS3231.pdf
package ds3231

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Seann-Moser/servoclock/pkg/bus"
)

const DefaultAddress = 0x68

type register byte

const (
	rSecond register = 0x00
	rMinute register = 0x01
	rHour   register = 0x02
	rDay    register = 0x03
)

const (
	hour12   = 0x40
	hourPM   = 0x20
	hourMask = 0x3F
)

// Registers is the register-level access the RTC needs from the bus.
type Registers interface {
	Read(addr uint16, reg byte, length int) ([]byte, error)
	WriteValues(addr uint16, reg byte, values ...int) error
}

// Time is a wall clock reading, 24-hour.
type Time struct {
	Hour   int
	Minute int
	Second int
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// FromTime takes the time of day from t.
func FromTime(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t Time) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return errors.Wrapf(bus.ErrConfiguration, "hour %d outside 0-23", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return errors.Wrapf(bus.ErrConfiguration, "minute %d outside 0-59", t.Minute)
	}
	if t.Second < 0 || t.Second > 59 {
		return errors.Wrapf(bus.ErrConfiguration, "second %d outside 0-59", t.Second)
	}
	return nil
}

type RTC struct {
	regs Registers
	addr uint16
}

func New(regs Registers, addr uint16) *RTC {
	return &RTC{regs: regs, addr: addr}
}

func (r *RTC) readReg(reg register) (byte, error) {
	data, err := r.regs.Read(r.addr, byte(reg), 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (r *RTC) Second() (int, error) {
	b, err := r.readReg(rSecond)
	if err != nil {
		return 0, err
	}
	return DecodeBCD(b & 0x7F), nil
}

func (r *RTC) Minute() (int, error) {
	b, err := r.readReg(rMinute)
	if err != nil {
		return 0, err
	}
	return DecodeBCD(b & 0x7F), nil
}

// Hour returns the hour 0-23, converting if the chip is in 12-hour mode.
func (r *RTC) Hour() (int, error) {
	b, err := r.readReg(rHour)
	if err != nil {
		return 0, err
	}
	return decodeHour(b), nil
}

func (r *RTC) SetSecond(s int) error {
	if s < 0 || s > 59 {
		return errors.Wrapf(bus.ErrConfiguration, "second %d outside 0-59", s)
	}
	return r.regs.WriteValues(r.addr, byte(rSecond), int(EncodeBCD(s)))
}

func (r *RTC) SetMinute(m int) error {
	if m < 0 || m > 59 {
		return errors.Wrapf(bus.ErrConfiguration, "minute %d outside 0-59", m)
	}
	return r.regs.WriteValues(r.addr, byte(rMinute), int(EncodeBCD(m)))
}

// SetHour stores h and leaves the chip in 24-hour mode.
func (r *RTC) SetHour(h int) error {
	if h < 0 || h > 23 {
		return errors.Wrapf(bus.ErrConfiguration, "hour %d outside 0-23", h)
	}
	return r.regs.WriteValues(r.addr, byte(rHour), int(EncodeBCD(h)))
}

// Now reads seconds through the day register in one block so the fields are
// consistent with each other.
func (r *RTC) Now() (Time, error) {
	data, err := r.regs.Read(r.addr, byte(rSecond), int(rDay-rSecond)+1)
	if err != nil {
		return Time{}, err
	}
	return Time{
		Hour:   decodeHour(data[rHour]),
		Minute: DecodeBCD(data[rMinute] & 0x7F),
		Second: DecodeBCD(data[rSecond] & 0x7F),
	}, nil
}

// SetTime writes seconds, minutes and hours in one block.
func (r *RTC) SetTime(t Time) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.regs.WriteValues(r.addr, byte(rSecond),
		int(EncodeBCD(t.Second)),
		int(EncodeBCD(t.Minute)),
		int(EncodeBCD(t.Hour)),
	)
}

func decodeHour(b byte) int {
	if b&hour12 == 0 {
		return DecodeBCD(b & hourMask)
	}
	h := DecodeBCD(b&0x1F) % 12
	if b&hourPM != 0 {
		h += 12
	}
	return h
}

// DecodeBCD converts a packed BCD byte to its decimal value.
func DecodeBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// EncodeBCD packs a value 0-99 into BCD.
func EncodeBCD(n int) byte {
	return byte((n/10)<<4 | n%10)
}
