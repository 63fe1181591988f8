package bus

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned when a caller asks for a value outside the
	// range the hardware accepts. Nothing is written to the bus.
	ErrConfiguration = errors.New("configuration error")

	// ErrProtocol marks a malformed register transaction. It indicates a
	// programming error rather than a hardware fault.
	ErrProtocol = errors.New("protocol error")

	// ErrBus marks a failed transaction on the underlying transport.
	ErrBus = errors.New("bus error")

	ErrInvalidLength    = errors.Wrap(ErrProtocol, "invalid read length")
	ErrInvalidByteValue = errors.Wrap(ErrProtocol, "invalid byte value")
	ErrInvalidPWM       = errors.Wrap(ErrProtocol, "invalid pwm counts")
)

// TxError wraps a transport failure with the register it was addressed to.
type TxError struct {
	Addr uint16
	Reg  byte
	Op   string
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s register 0x%02X on device 0x%02X: %v", e.Op, e.Reg, e.Addr, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// Is reports every TxError as an ErrBus.
func (e *TxError) Is(target error) bool { return target == ErrBus }
