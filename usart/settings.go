package usart

import (
	"fmt"
	"strings"
)

// The values below are the literal UCSRnB/UCSRnC bit-field encodings, not
// indices.

type StopBits uint8

const (
	OneStopBit  StopBits = 0
	TwoStopBits StopBits = 1 << 3 // USBSn
)

type CharSize uint8

const (
	FiveBit  CharSize = 0
	SixBit   CharSize = 1 << 1
	SevenBit CharSize = 2 << 1
	EightBit CharSize = 3 << 1 // UCSZn1:0
)

type Mode uint8

const (
	Disabled           Mode = 0
	Transmit           Mode = 1 << 3 // TXENn
	Receive            Mode = 1 << 4 // RXENn
	TransmitAndReceive Mode = Transmit | Receive
)

func (s StopBits) String() string {
	switch s {
	case OneStopBit:
		return "one"
	case TwoStopBits:
		return "two"
	}
	return fmt.Sprintf("StopBits(%d)", uint8(s))
}

// Bits returns the number of data bits per character.
func (c CharSize) Bits() int {
	return 5 + int(c>>1)
}

func (c CharSize) String() string {
	switch c {
	case FiveBit, SixBit, SevenBit, EightBit:
		return fmt.Sprintf("%d-bit", c.Bits())
	}
	return fmt.Sprintf("CharSize(%d)", uint8(c))
}

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Transmit:
		return "transmit"
	case Receive:
		return "receive"
	case TransmitAndReceive:
		return "transmit-receive"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func ParseStopBits(s string) (StopBits, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "one":
		return OneStopBit, nil
	case "2", "two":
		return TwoStopBits, nil
	}
	return 0, fmt.Errorf("unknown stop bits %q", s)
}

func ParseCharSize(s string) (CharSize, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-bit") {
	case "5":
		return FiveBit, nil
	case "6":
		return SixBit, nil
	case "7":
		return SevenBit, nil
	case "8":
		return EightBit, nil
	}
	return 0, fmt.Errorf("unknown character size %q", s)
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off":
		return Disabled, nil
	case "transmit", "tx":
		return Transmit, nil
	case "receive", "rx":
		return Receive, nil
	case "transmit-receive", "txrx":
		return TransmitAndReceive, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
