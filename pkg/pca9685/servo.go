package pca9685

import (
	"github.com/pkg/errors"

	"github.com/Seann-Moser/servoclock/pkg/bus"
)

// Bound maps a requested duty onto the duty actually written.
type Bound func(value int) int

// Identity leaves the duty untouched.
func Identity(value int) int { return value }

// Clamp limits duties to [lo, hi].
func Clamp(lo, hi int) Bound {
	return func(value int) int {
		if value < lo {
			return lo
		}
		if value > hi {
			return hi
		}
		return value
	}
}

// ServoConfig holds the board-wide servo settings.
type ServoConfig struct {
	Frequency int
	MinDuty   int
	MaxDuty   int
}

// DefaultServoConfig suits standard hobby servos at 50Hz.
func DefaultServoConfig() ServoConfig {
	return ServoConfig{Frequency: 50, MinDuty: 180, MaxDuty: 500}
}

func (c ServoConfig) Validate() error {
	if c.MinDuty < 0 || c.MaxDuty > MaxDuty || c.MinDuty > c.MaxDuty {
		return errors.Wrapf(bus.ErrConfiguration, "servo duty range [%d, %d] must satisfy 0 <= min <= max <= %d", c.MinDuty, c.MaxDuty, MaxDuty)
	}
	if c.Frequency < MinFrequency || c.Frequency > MaxFrequency {
		return errors.Wrapf(bus.ErrConfiguration, "pwm frequency %dHz, prescaler allows %dHz - %dHz", c.Frequency, MinFrequency, MaxFrequency)
	}
	return nil
}

// ServoController is a Controller whose pins never leave the servos' safe
// travel range.
type ServoController struct {
	*Controller
	minDuty int
	maxDuty int
}

// NewServo validates cfg, then creates, resets and clocks the board.
func NewServo(regs Registers, addr uint16, cfg ServoConfig, opts ...Option) (*ServoController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append(opts, WithBound(Clamp(cfg.MinDuty, cfg.MaxDuty)))
	ctrl, err := New(regs, addr, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetFrequency(cfg.Frequency); err != nil {
		return nil, err
	}
	return &ServoController{Controller: ctrl, minDuty: cfg.MinDuty, maxDuty: cfg.MaxDuty}, nil
}

func (s *ServoController) MinDuty() int { return s.minDuty }

func (s *ServoController) MaxDuty() int { return s.maxDuty }
