// Package bus provides byte-addressable register access to I2C peripherals.
package bus

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transactor performs one combined write/read transaction with the device at
// addr. periph.io's i2c.Bus satisfies it directly.
type Transactor interface {
	Tx(addr uint16, w, r []byte) error
}

// RegisterBus reads and writes blocks of registers over a Transactor.
// It is not safe for concurrent use.
type RegisterBus struct {
	tx     Transactor
	logger *zap.SugaredLogger
}

// New wraps tx. A nil logger disables logging.
func New(tx Transactor, logger *zap.SugaredLogger) *RegisterBus {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RegisterBus{tx: tx, logger: logger}
}

// Read returns length bytes starting at reg. The hardware only supports
// single byte or 2-byte aligned block reads, so length must be 1 or even.
func (b *RegisterBus) Read(addr uint16, reg byte, length int) ([]byte, error) {
	if length != 1 && (length <= 0 || length%2 != 0) {
		return nil, errors.Wrapf(ErrInvalidLength, "%d bytes at 0x%02X, expects 1 or a multiple of 2", length, reg)
	}
	data := make([]byte, length)
	if err := b.tx.Tx(addr, []byte{reg}, data); err != nil {
		return nil, &TxError{Addr: addr, Reg: reg, Op: "read", Err: err}
	}
	b.logger.Debugw("read", "addr", addr, "reg", reg, "data", data)
	return data, nil
}

// Write sends a raw buffer starting at reg.
func (b *RegisterBus) Write(addr uint16, reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := b.tx.Tx(addr, w, nil); err != nil {
		return &TxError{Addr: addr, Reg: reg, Op: "write", Err: err}
	}
	b.logger.Debugw("write", "addr", addr, "reg", reg, "data", data)
	return nil
}

// WriteValues writes a sequence of byte values starting at reg. Every value
// is checked before anything is sent.
func (b *RegisterBus) WriteValues(addr uint16, reg byte, values ...int) error {
	data := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return errors.Wrapf(ErrInvalidByteValue, "%d at offset %d, must be 0 <= value <= 255", v, i)
		}
		data[i] = byte(v)
	}
	return b.Write(addr, reg, data)
}

// Close closes the underlying transport when it supports it.
func (b *RegisterBus) Close() error {
	if c, ok := b.tx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
