// Package segment renders two decimal digits on fourteen servo-driven
// flip segments attached to one PCA9685 board.
package segment

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/pca9685"
)

const (
	SegmentsPerDigit = 7

	// Channels 0-6 carry the ones place, 7-13 the tens place.
	onesBase = 0
	tensBase = SegmentsPerDigit

	MaxNumber = 99
)

// DigitMasks holds the 7-segment pattern for each numeral; bit i set means
// segment i is driven to its on position.
var DigitMasks = [10]byte{
	0x3F, // 0: segments 0, 1, 2, 3, 4, 5
	0x06, // 1: segments 1, 2
	0x5B, // 2: segments 0, 1, 3, 4, 6
	0x4F, // 3: segments 0, 1, 2, 3, 6
	0x66, // 4: segments 1, 2, 5, 6
	0x6D, // 5: segments 0, 2, 3, 5, 6
	0x7D, // 6: segments 0, 2, 3, 4, 5, 6
	0x07, // 7: segments 0, 1, 2
	0x7F, // 8: all
	0x6F, // 9: segments 0, 1, 2, 3, 5, 6
}

// Mask returns the pattern for digit d.
func Mask(d int) (byte, error) {
	if d < 0 || d >= len(DigitMasks) {
		return 0, errors.Wrapf(bus.ErrConfiguration, "digit %d outside 0-9", d)
	}
	return DigitMasks[d], nil
}

// Decompose splits a two digit number into its tens and ones.
func Decompose(n int) (tens, ones int) {
	return n / 10, n % 10
}

// Duty is a servo's calibrated (off, on) position pair.
type Duty struct {
	Off int
	On  int
}

// Segment owns one servo board and renders numbers 0-99 on it.
type Segment struct {
	servo  *pca9685.ServoController
	duties []Duty
	logger *zap.SugaredLogger

	last    int
	written bool
}

// New takes ownership of servo. duties[i] calibrates channel i; channels
// without an entry fall back to the board's duty bounds.
func New(servo *pca9685.ServoController, duties []Duty, logger *zap.SugaredLogger) (*Segment, error) {
	if len(duties) > pca9685.NumPins {
		return nil, errors.Wrapf(bus.ErrConfiguration, "%d duty pairs for a %d channel board", len(duties), pca9685.NumPins)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Segment{
		servo:  servo,
		duties: append([]Duty(nil), duties...),
		logger: logger.With("segment", servo.Address()),
	}, nil
}

// Servo returns the board this segment drives.
func (s *Segment) Servo() *pca9685.ServoController { return s.servo }

// Duties returns the (off, on) pair for pin.
func (s *Segment) Duties(pin int) Duty {
	if pin >= 0 && pin < len(s.duties) {
		return s.duties[pin]
	}
	return Duty{Off: s.servo.MinDuty(), On: s.servo.MaxDuty()}
}

// Write shows number on the face. Ones are written before tens, each in
// increasing channel order.
func (s *Segment) Write(number int) error {
	if number < 0 || number > MaxNumber {
		return errors.Wrapf(bus.ErrConfiguration, "number %d outside 0-%d", number, MaxNumber)
	}
	tens, ones := Decompose(number)
	s.written = false
	if err := s.writeDigit(onesBase, ones); err != nil {
		return err
	}
	if err := s.writeDigit(tensBase, tens); err != nil {
		return err
	}
	s.last, s.written = number, true
	s.logger.Debugw("wrote number", "number", number)
	return nil
}

func (s *Segment) writeDigit(base, digit int) error {
	mask, err := Mask(digit)
	if err != nil {
		return err
	}
	for i := 0; i < SegmentsPerDigit; i++ {
		channel := base + i
		pin, err := s.servo.Pin(channel)
		if err != nil {
			return err
		}
		d := s.Duties(channel)
		duty := d.Off
		if mask&(1<<i) != 0 {
			duty = d.On
		}
		if err := pin.SetDuty(duty); err != nil {
			return errors.Wrapf(err, "channel %d", channel)
		}
	}
	return nil
}

// SetPin moves one servo to duty, within the board's bounds. Used when
// calibrating duty pairs.
func (s *Segment) SetPin(pin, duty int) error {
	p, err := s.servo.Pin(pin)
	if err != nil {
		return err
	}
	s.written = false
	return p.SetDuty(duty)
}

// Last returns the last number written, if the face still shows it.
func (s *Segment) Last() (int, bool) {
	return s.last, s.written
}
