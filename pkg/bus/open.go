package bus

import (
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"
	periphi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	BackendPeriph = "periph"
	BackendGobot  = "gobot"
)

// Open opens the named I2C bus with the given backend. For periph the name
// is a bus name understood by i2creg ("" picks the first bus). For gobot it
// is the bus number ("" picks the adaptor default).
func Open(backend, name string, logger *zap.SugaredLogger) (*RegisterBus, error) {
	switch backend {
	case "", BackendPeriph:
		b, err := OpenPeriph(name)
		if err != nil {
			return nil, err
		}
		return New(b, logger), nil
	case BackendGobot:
		num := -1
		if name != "" {
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, errors.Wrapf(ErrConfiguration, "gobot bus %q is not a number", name)
			}
			num = n
		}
		return New(NewRaspi(num), logger), nil
	default:
		return nil, errors.Wrapf(ErrConfiguration, "unknown bus backend %q", backend)
	}
}

// OpenPeriph initialises the periph host drivers and opens an I2C bus.
func OpenPeriph(name string) (periphi2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", name)
	}
	return b, nil
}

// Gobot adapts a gobot I2C connector to a Transactor. Connections are opened
// lazily, one per device address.
type Gobot struct {
	connector i2c.Connector
	bus       int
	conns     map[uint16]i2c.Connection
}

// NewGobot uses bus number num on connector.
func NewGobot(connector i2c.Connector, num int) *Gobot {
	return &Gobot{connector: connector, bus: num, conns: make(map[uint16]i2c.Connection)}
}

// NewRaspi uses the Raspberry Pi adaptor. A negative num selects its default bus.
func NewRaspi(num int) *Gobot {
	r := raspi.NewAdaptor()
	if num < 0 {
		num = r.GetDefaultBus()
	}
	return NewGobot(r, num)
}

func (g *Gobot) connection(addr uint16) (i2c.Connection, error) {
	if c, ok := g.conns[addr]; ok {
		return c, nil
	}
	c, err := g.connector.GetConnection(int(addr), g.bus)
	if err != nil {
		return nil, err
	}
	g.conns[addr] = c
	return c, nil
}

func (g *Gobot) Tx(addr uint16, w, r []byte) error {
	c, err := g.connection(addr)
	if err != nil {
		return err
	}
	if len(w) > 0 {
		if _, err := c.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if _, err := c.Read(r); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gobot) Close() error {
	var err error
	for addr, c := range g.conns {
		err = multierr.Append(err, c.Close())
		delete(g.conns, addr)
	}
	return err
}
