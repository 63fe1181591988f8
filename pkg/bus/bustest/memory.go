// Package bustest provides an in-memory register file for driver tests.
package bustest

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
)

// Memory emulates auto-incrementing 256-byte register files, one per device
// address. It implements periph's i2c.Bus so it can sit behind an
// i2ctest.Record.
type Memory struct {
	mu      sync.Mutex
	devices map[uint16]*[256]byte
	// Err, when set, is returned by every Tx.
	Err error
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[uint16]*[256]byte)}
}

func (m *Memory) String() string { return "bustest.Memory" }

func (m *Memory) SetSpeed(physic.Frequency) error { return nil }

// Tx writes w[1:] starting at register w[0], then reads len(r) bytes from
// the same register.
func (m *Memory) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if len(w) == 0 {
		return fmt.Errorf("bustest: tx without register address")
	}
	regs := m.device(addr)
	reg := int(w[0])
	if reg+len(w)-1 > len(regs) || reg+len(r) > len(regs) {
		return fmt.Errorf("bustest: access past register 0xFF")
	}
	copy(regs[reg:], w[1:])
	copy(r, regs[reg:])
	return nil
}

// Poke sets registers directly, bypassing the bus.
func (m *Memory) Poke(addr uint16, reg byte, data ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.device(addr)[reg:], data)
}

// Peek returns n registers starting at reg.
func (m *Memory) Peek(addr uint16, reg byte, n int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, n)
	copy(out, m.device(addr)[reg:])
	return out
}

func (m *Memory) device(addr uint16) *[256]byte {
	d, ok := m.devices[addr]
	if !ok {
		d = new([256]byte)
		m.devices[addr] = d
	}
	return d
}
