package pca9685

import (
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/bus/bustest"
)

func TestSetPWMEncoding(t *testing.T) {
	c, rec, _ := newRecorded(t)
	rec.Ops = nil
	p, err := c.Pin(3)
	assert.NilError(t, err)

	assert.NilError(t, p.SetPWM(0x0102, 0x0304))
	assert.Equal(t, len(rec.Ops), 1)
	assert.DeepEqual(t, rec.Ops[0].W, []byte{0x12, 0x02, 0x01, 0x04, 0x03})

	on, off, err := p.PWM()
	assert.NilError(t, err)
	assert.Equal(t, on, 0x0102)
	assert.Equal(t, off, 0x0304)
}

func TestSetPWMRejectsInvalidCounts(t *testing.T) {
	c, rec, _ := newRecorded(t)
	rec.Ops = nil
	p, _ := c.Pin(0)

	for _, pair := range [][2]int{{4096, 1}, {-1, 0}, {0, 4097}, {0, -1}, {5000, 0}} {
		err := p.SetPWM(pair[0], pair[1])
		assert.Assert(t, errors.Is(err, bus.ErrInvalidPWM), "%v: %v", pair, err)
		assert.Assert(t, errors.Is(err, bus.ErrProtocol))
	}
	assert.Equal(t, len(rec.Ops), 0)

	assert.NilError(t, p.SetPWM(4096, 0))
	assert.NilError(t, p.SetPWM(0, 4096))
}

func TestDutyRailEncodings(t *testing.T) {
	c, rec, _ := newRecorded(t)
	rec.Ops = nil
	p, _ := c.Pin(0)

	assert.NilError(t, p.SetDuty(0))
	assert.NilError(t, p.SetDuty(MaxDuty))
	assert.NilError(t, p.SetDuty(500))
	assert.DeepEqual(t, writes(rec), [][]byte{
		{0x06, 0x00, 0x00, 0x00, 0x10},
		{0x06, 0x00, 0x10, 0x00, 0x00},
		{0x06, 0x00, 0x00, 0xF4, 0x01},
	})
}

func TestDutyDecoding(t *testing.T) {
	mem := bustest.NewMemory()
	c, err := New(bus.New(mem, nil), DefaultAddress)
	assert.NilError(t, err)
	p, _ := c.Pin(1)

	cases := []struct {
		raw  []byte
		want int
	}{
		{[]byte{0x00, 0x00, 0x00, 0x10}, 0},
		{[]byte{0x00, 0x10, 0x00, 0x00}, MaxDuty},
		{[]byte{0x00, 0x00, 0x2C, 0x01}, 300},
		{[]byte{0x64, 0x00, 0x2C, 0x01}, 300},
	}
	for _, tc := range cases {
		mem.Poke(DefaultAddress, 0x0A, tc.raw...)
		got, err := p.Duty()
		assert.NilError(t, err)
		assert.Equal(t, got, tc.want, "raw %v", tc.raw)
	}
}

func TestDutyRoundTrip(t *testing.T) {
	mem := bustest.NewMemory()
	c, err := New(bus.New(mem, nil), DefaultAddress)
	assert.NilError(t, err)
	p, _ := c.Pin(15)

	for v := 0; v <= MaxDuty; v++ {
		assert.NilError(t, p.SetDuty(v))
		got, err := p.Duty()
		assert.NilError(t, err)
		assert.Equal(t, got, v)
	}
}

func TestDutyOutOfRangeUnbounded(t *testing.T) {
	rec := &i2ctest.Record{}
	c, err := New(bus.New(rec, nil), DefaultAddress)
	assert.NilError(t, err)
	rec.Ops = nil
	p, _ := c.Pin(0)

	for _, v := range []int{-5, MaxDuty + 1, 5000} {
		err = p.SetDuty(v)
		assert.Assert(t, errors.Is(err, bus.ErrInvalidPWM), "duty %d: %v", v, err)
	}
	assert.Equal(t, len(rec.Ops), 0)
}
