// Package usart drives the asynchronous transmitter of an AVR USART.
//
// The peripheral has two states, each its own type. A Config accumulates
// settings without touching hardware; Commit programs the registers once and
// returns a Driver, the only type that can transmit. There is no way back
// from a Driver to a Config, so transmitting before configuration and
// reconfiguring afterwards are both compile errors.
//
// Config methods take and return values. Callers are expected to keep using
// the returned value and drop the old one; two live copies would program the
// same registers independently. The take-once container in package
// peripheral is what keeps a second copy from being created in the first
// place.
package usart

import (
	"fmt"

	"emuavr/register"
)

const (
	// DefaultClockHz is the 16 MHz crystal of the reference board.
	DefaultClockHz = 16_000_000
	DefaultBaud    = 9600

	// MaxDivisor is the largest value the 12-bit UBRRn field holds.
	MaxDivisor = 4095
)

// Registers is the register block of one USART instance.
type Registers struct {
	Data     register.Register // UDRn
	BaudLow  register.Register // UBRRnL
	BaudHigh register.Register // UBRRnH
	StatusA  register.Register // UCSRnA
	ControlB register.Register // UCSRnB, mode
	ControlC register.Register // UCSRnC, frame format
}

// Config is an unconfigured USART.
type Config struct {
	regs     Registers
	clockHz  uint32
	baud     uint32
	divisor  uint16
	stopBits StopBits
	charSize CharSize
	mode     Mode
}

// New returns the reset configuration: 16 MHz, 9600 baud (divisor 103),
// 8 data bits, two stop bits, transmitter enabled.
func New(regs Registers) Config {
	return Config{
		regs:     regs,
		clockHz:  DefaultClockHz,
		baud:     DefaultBaud,
		divisor:  103,
		stopBits: TwoStopBits,
		charSize: EightBit,
		mode:     Transmit,
	}
}

// Divisor computes clockHz/(16*baud) - 1 for the normal asynchronous mode.
// Pairs whose divisor would be negative or wider than 12 bits are rejected.
func Divisor(clockHz, baud uint32) (uint16, error) {
	if clockHz == 0 || baud == 0 {
		return 0, fmt.Errorf("%w: clock %d Hz, baud %d: must be positive", ErrIncompatibleSettings, clockHz, baud)
	}
	// 16*baud overflows uint32 above ~268 Mbaud.
	ticks := 16 * uint64(baud)
	if ticks > uint64(clockHz) {
		return 0, fmt.Errorf("%w: baud %d too fast for %d Hz clock", ErrIncompatibleSettings, baud, clockHz)
	}
	d := uint64(clockHz)/ticks - 1
	if d > MaxDivisor {
		return 0, fmt.Errorf("%w: divisor %d exceeds %d", ErrIncompatibleSettings, d, MaxDivisor)
	}
	return uint16(d), nil
}

// SetClockAndBaud computes and stores the baud divisor. On error the
// returned Config is the receiver, unchanged.
func (c Config) SetClockAndBaud(clockHz, baud uint32) (Config, error) {
	d, err := Divisor(clockHz, baud)
	if err != nil {
		return c, err
	}
	c.clockHz = clockHz
	c.baud = baud
	c.divisor = d
	return c, nil
}

func (c Config) SetStopBits(s StopBits) Config {
	c.stopBits = s
	return c
}

func (c Config) SetCharSize(s CharSize) Config {
	c.charSize = s
	return c
}

func (c Config) SetMode(m Mode) Config {
	c.mode = m
	return c
}

func (c Config) ClockHz() uint32    { return c.clockHz }
func (c Config) Baud() uint32       { return c.baud }
func (c Config) Divisor() uint16    { return c.divisor }
func (c Config) StopBits() StopBits { return c.stopBits }
func (c Config) CharSize() CharSize { return c.charSize }
func (c Config) Mode() Mode         { return c.mode }
func (c Config) frameFormat() uint8 { return uint8(c.stopBits) | uint8(c.charSize) }

// ActualBaud is the rate the hardware produces with the stored divisor.
func (c Config) ActualBaud() uint32 {
	return c.clockHz / (16 * (uint32(c.divisor) + 1))
}

// BaudError is the relative deviation of ActualBaud from the requested
// baud, as tabulated in the datasheet (0.002 means +0.2%).
func (c Config) BaudError() float64 {
	if c.baud == 0 {
		return 0
	}
	return float64(c.ActualBaud())/float64(c.baud) - 1
}

func (c Config) String() string {
	return fmt.Sprintf("%d baud (divisor %d @ %d Hz), %s, %s stop, %s",
		c.baud, c.divisor, c.clockHz, c.charSize, c.stopBits, c.mode)
}

// Commit programs the hardware and returns the initialized driver:
// UBRRnL, then UBRRnH, then the frame format to UCSRnC, then the mode to
// UCSRnB. Nothing is read back.
func (c Config) Commit() *Driver {
	c.regs.BaudLow.Write(uint8(c.divisor))
	c.regs.BaudHigh.Write(uint8(c.divisor >> 8))

	c.regs.ControlC.Write(c.frameFormat())

	c.regs.ControlB.Write(uint8(c.mode))

	return &Driver{cfg: c}
}
