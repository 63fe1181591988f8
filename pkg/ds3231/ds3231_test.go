package ds3231

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"gotest.tools/assert"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/bus/bustest"
)

func TestBCD(t *testing.T) {
	for n := 0; n <= 99; n++ {
		assert.Equal(t, DecodeBCD(EncodeBCD(n)), n)
	}
	assert.Equal(t, EncodeBCD(59), byte(0x59))
	assert.Equal(t, DecodeBCD(0x23), 23)
}

func TestFieldReads(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0x00}, R: []byte{0x42}},
		{Addr: DefaultAddress, W: []byte{0x01}, R: []byte{0x07}},
		{Addr: DefaultAddress, W: []byte{0x02}, R: []byte{0x19}},
	}}
	r := New(bus.New(pb, nil), DefaultAddress)

	s, err := r.Second()
	assert.NilError(t, err)
	assert.Equal(t, s, 42)
	m, err := r.Minute()
	assert.NilError(t, err)
	assert.Equal(t, m, 7)
	h, err := r.Hour()
	assert.NilError(t, err)
	assert.Equal(t, h, 19)
	assert.NilError(t, pb.Close())
}

func TestTwelveHourMode(t *testing.T) {
	cases := map[byte]int{
		0x40 | 0x12:        0,  // 12 AM
		0x40 | 0x01:        1,  // 1 AM
		0x40 | 0x20 | 0x12: 12, // 12 PM
		0x40 | 0x20 | 0x07: 19, // 7 PM
		0x23:               23,
	}
	for raw, want := range cases {
		assert.Equal(t, decodeHour(raw), want, "raw 0x%02X", raw)
	}
}

func TestSetters(t *testing.T) {
	rec := &i2ctest.Record{}
	r := New(bus.New(rec, nil), DefaultAddress)

	assert.NilError(t, r.SetHour(23))
	assert.NilError(t, r.SetMinute(59))
	assert.NilError(t, r.SetSecond(0))
	assert.Equal(t, len(rec.Ops), 3)
	assert.DeepEqual(t, rec.Ops[0].W, []byte{0x02, 0x23})
	assert.DeepEqual(t, rec.Ops[1].W, []byte{0x01, 0x59})
	assert.DeepEqual(t, rec.Ops[2].W, []byte{0x00, 0x00})

	rec.Ops = nil
	for _, err := range []error{r.SetHour(24), r.SetHour(-1), r.SetMinute(60), r.SetSecond(60)} {
		assert.Assert(t, errors.Is(err, bus.ErrConfiguration))
	}
	assert.Equal(t, len(rec.Ops), 0)
}

func TestNowAndSetTime(t *testing.T) {
	mem := bustest.NewMemory()
	rec := &i2ctest.Record{Bus: mem}
	r := New(bus.New(rec, nil), DefaultAddress)

	want := FromTime(time.Date(2024, 3, 1, 21, 4, 37, 0, time.UTC))
	assert.NilError(t, r.SetTime(want))
	assert.DeepEqual(t, mem.Peek(DefaultAddress, 0x00, 3), []byte{0x37, 0x04, 0x21})

	got, err := r.Now()
	assert.NilError(t, err)
	assert.Equal(t, got, want)
	assert.Equal(t, got.String(), "21:04:37")

	last := rec.Ops[len(rec.Ops)-1]
	assert.DeepEqual(t, last.W, []byte{0x00})

	err = r.SetTime(Time{Hour: 24})
	assert.Assert(t, errors.Is(err, bus.ErrConfiguration))
}
