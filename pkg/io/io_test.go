package io

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/zap"
	"gotest.tools/assert"
)

type fakeLine struct {
	values       []int
	reconfigured bool
	closed       bool
}

func (f *fakeLine) SetValue(v int) error { f.values = append(f.values, v); return nil }

func (f *fakeLine) Reconfigure(...gpiocdev.LineConfigOption) error {
	f.reconfigured = true
	return nil
}

func (f *fakeLine) Close() error { f.closed = true; return nil }

type fakeChip struct{ closed bool }

func (c *fakeChip) Close() error { c.closed = true; return nil }

func newFakeIO() (*IO, map[int]*fakeLine, *fakeChip) {
	lines := map[int]*fakeLine{}
	chip := &fakeChip{}
	io := &IO{
		chip: chip,
		request: func(offset, value int) (line, error) {
			if offset < 0 {
				return nil, errors.New("no such line")
			}
			l := &fakeLine{values: []int{value}}
			lines[offset] = l
			return l, nil
		},
		lines:  map[int]line{},
		logger: zap.NewNop().Sugar(),
	}
	return io, lines, chip
}

func TestOutputEnable(t *testing.T) {
	gpio, lines, chip := newFakeIO()
	oe := &OutputEnable{io: gpio, offset: 17}

	assert.NilError(t, oe.Disable())
	assert.NilError(t, oe.Enable())
	assert.DeepEqual(t, lines[17].values, []int{1, 0})

	assert.NilError(t, oe.Close())
	assert.DeepEqual(t, lines[17].values, []int{1, 0, 1})
	assert.Assert(t, lines[17].reconfigured)
	assert.Assert(t, lines[17].closed)
	assert.Assert(t, chip.closed)
}

func TestSetPinStateRequestError(t *testing.T) {
	gpio, _, _ := newFakeIO()
	err := gpio.SetPinState(-1, 1)
	assert.ErrorContains(t, err, "no such line")
}

func TestParseLine(t *testing.T) {
	offset, err := ParseLine("GPIO17")
	assert.NilError(t, err)
	assert.Equal(t, offset, 17)

	_, err = ParseLine("bogus")
	assert.Assert(t, err != nil)
}
