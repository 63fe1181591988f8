// Package config loads the servoclock YAML configuration.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/ds3231"
	"github.com/Seann-Moser/servoclock/pkg/logging"
	"github.com/Seann-Moser/servoclock/pkg/pca9685"
	"github.com/Seann-Moser/servoclock/pkg/segment"
)

const DefaultPath = "/etc/servoclock/servoclock.yaml"

type Bus struct {
	// Backend is "periph" or "gobot".
	Backend string `yaml:"backend"`
	// Name is the periph bus name or the gobot bus number.
	Name string `yaml:"name"`
}

type Duty struct {
	Off int `yaml:"off"`
	On  int `yaml:"on"`
}

// Face is one PCA9685 board showing two digits.
type Face struct {
	Address uint16 `yaml:"address"`
	Duties  []Duty `yaml:"duties"`
}

// SegmentDuties converts the calibration table for segment.New.
func (f Face) SegmentDuties() []segment.Duty {
	out := make([]segment.Duty, len(f.Duties))
	for i, d := range f.Duties {
		out[i] = segment.Duty{Off: d.Off, On: d.On}
	}
	return out
}

type RTC struct {
	Address uint16 `yaml:"address"`
}

// OutputEnable is the GPIO line wired to the boards' OE pin. An empty Line
// leaves the outputs to the board's pull-down.
type OutputEnable struct {
	Chip string `yaml:"chip"`
	Line string `yaml:"line"`
}

type HTTP struct {
	Listen string `yaml:"listen"`
}

type Config struct {
	Bus          Bus            `yaml:"bus"`
	Frequency    int            `yaml:"frequency"`
	MinDuty      int            `yaml:"min_duty"`
	MaxDuty      int            `yaml:"max_duty"`
	Minutes      Face           `yaml:"minutes"`
	Hours        Face           `yaml:"hours"`
	RTC          RTC            `yaml:"rtc"`
	OutputEnable OutputEnable   `yaml:"output_enable"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	HTTP         HTTP           `yaml:"http"`
	Log          logging.Config `yaml:"log"`
}

// Default returns the calibration of the first clock build.
func Default() Config {
	servo := pca9685.DefaultServoConfig()
	return Config{
		Bus:       Bus{Backend: bus.BackendPeriph},
		Frequency: servo.Frequency,
		MinDuty:   servo.MinDuty,
		MaxDuty:   servo.MaxDuty,
		Minutes: Face{
			Address: pca9685.DefaultAddress,
			Duties: []Duty{
				{245, 450},
				{265, 470},
				{275, 460},
				{275, 491},
				{275, 491},
				{286, 491},
				{257, 491},
			},
		},
		Hours:        Face{Address: pca9685.DefaultAddress + 1},
		RTC:          RTC{Address: ds3231.DefaultAddress},
		OutputEnable: OutputEnable{Chip: "gpiochip0"},
		PollInterval: 100 * time.Millisecond,
		HTTP:         HTTP{Listen: "0.0.0.0:8080"},
		Log:          logging.DefaultConfig(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Servo returns the board-wide servo settings.
func (c Config) Servo() pca9685.ServoConfig {
	return pca9685.ServoConfig{Frequency: c.Frequency, MinDuty: c.MinDuty, MaxDuty: c.MaxDuty}
}

func (c Config) Validate() error {
	switch c.Bus.Backend {
	case "", bus.BackendPeriph, bus.BackendGobot:
	default:
		return errors.Wrapf(bus.ErrConfiguration, "unknown bus backend %q", c.Bus.Backend)
	}
	if err := c.Servo().Validate(); err != nil {
		return err
	}
	faces := map[string]Face{"minutes": c.Minutes, "hours": c.Hours}
	for name, f := range faces {
		if f.Address > 0x7F {
			return errors.Wrapf(bus.ErrConfiguration, "%s address 0x%02X is not 7-bit", name, f.Address)
		}
		if len(f.Duties) > pca9685.NumPins {
			return errors.Wrapf(bus.ErrConfiguration, "%s has %d duty pairs, board has %d channels", name, len(f.Duties), pca9685.NumPins)
		}
		for i, d := range f.Duties {
			if d.Off < 0 || d.Off > pca9685.MaxDuty || d.On < 0 || d.On > pca9685.MaxDuty {
				return errors.Wrapf(bus.ErrConfiguration, "%s duty %d (%d, %d) outside 0-%d", name, i, d.Off, d.On, pca9685.MaxDuty)
			}
		}
	}
	if c.Minutes.Address == c.Hours.Address {
		return errors.Wrapf(bus.ErrConfiguration, "minutes and hours share address 0x%02X", c.Minutes.Address)
	}
	if c.RTC.Address > 0x7F {
		return errors.Wrapf(bus.ErrConfiguration, "rtc address 0x%02X is not 7-bit", c.RTC.Address)
	}
	if c.PollInterval <= 0 {
		return errors.Wrapf(bus.ErrConfiguration, "poll interval %s must be positive", c.PollInterval)
	}
	return nil
}
