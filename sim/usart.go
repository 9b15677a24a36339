package sim

import (
	"fmt"
	"io"
	"log/slog"

	avr "emuavr/atmega328p"
)

const (
	udre = 1 << avr.UDRE0
	txc  = 1 << avr.TXC0
	txen = 1 << avr.TXEN0

	// usartReserved is the unused slot between UCSR0C and UBRR0L.
	usartReserved = avr.UCSR0C + 1
)

// USART models the transmit side of USART0. Every byte written to UDR0
// with the transmitter enabled goes to the output writer, masked to the
// configured character size. The data register then stays busy for TxDelay
// polls of UCSR0A.
type USART struct {
	TxDelay int

	out    io.Writer
	logger *slog.Logger

	ucsra, ucsrb, ucsrc uint8
	ubrrl, ubrrh        uint8
	busy                int
	sent                uint64
}

func NewUSART(out io.Writer, logger *slog.Logger) *USART {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &USART{
		out:    out,
		logger: logger,
		ucsra:  avr.UCSR0AReset,
		ucsrc:  avr.UCSR0CReset,
	}
}

func (u *USART) Read(addr uint32) uint8 {
	switch addr {
	case avr.UCSR0A:
		v := u.ucsra
		if u.busy > 0 {
			u.busy--
			if u.busy == 0 {
				u.ucsra |= udre | txc
			}
		}
		return v
	case avr.UCSR0B:
		return u.ucsrb
	case avr.UCSR0C:
		return u.ucsrc
	case avr.UBRR0L:
		return u.ubrrl
	case avr.UBRR0H:
		return u.ubrrh
	case usartReserved:
		u.logger.Warn("read from reserved USART0 address", slog.String("addr", hex16(uintptr(addr))))
		return 0
	}
	// UDR0 reads belong to the receiver, which is not modelled.
	return 0
}

func (u *USART) Write(addr uint32, v uint8) {
	switch addr {
	case avr.UCSR0A:
		// TXC0 is cleared by writing one; U2X0 and MPCM0 are plain bits.
		if v&txc != 0 {
			u.ucsra &^= txc
		}
		const rw = 1<<avr.U2X0 | 1<<avr.MPCM0
		u.ucsra = u.ucsra&^rw | v&rw
	case avr.UCSR0B:
		if (u.ucsrb^v)&txen != 0 {
			u.logger.Debug("transmitter", slog.Bool("enabled", v&txen != 0))
		}
		u.ucsrb = v
	case avr.UCSR0C:
		u.ucsrc = v
		u.logger.Debug("frame format", slog.String("frame", u.Frame()))
	case avr.UBRR0L:
		u.ubrrl = v
	case avr.UBRR0H:
		u.ubrrh = v & 0x0F
	case avr.UDR0:
		u.transmit(v)
	case usartReserved:
		u.logger.Warn("write to reserved USART0 address dropped",
			slog.String("addr", hex16(uintptr(addr))), slog.Int("value", int(v)))
	}
}

func (u *USART) transmit(v uint8) {
	switch {
	case u.ucsrb&txen == 0:
		u.logger.Warn("UDR0 write with transmitter disabled", slog.Int("byte", int(v)))
		return
	case u.ucsra&udre == 0:
		u.logger.Warn("UDR0 write while data register busy", slog.Int("byte", int(v)))
		return
	}

	b := v & uint8(1<<u.charBits()-1)
	if _, err := u.out.Write([]byte{b}); err != nil {
		u.logger.Error("transmit sink", slog.Any("err", err))
	}
	u.sent++
	u.logger.Debug("tx", slog.Int("byte", int(b)), slog.Uint64("count", u.sent))

	u.ucsra &^= txc
	if u.TxDelay > 0 {
		u.ucsra &^= udre
		u.busy = u.TxDelay
	} else {
		u.ucsra |= txc
	}
}

// charBits decodes UCSZ01:00. The 9-bit mode (UCSZ02) is not modelled.
func (u *USART) charBits() int {
	return 5 + int(u.ucsrc>>avr.UCSZ00&0x3)
}

func (u *USART) stopBits() int {
	if u.ucsrc&(1<<avr.USBS0) != 0 {
		return 2
	}
	return 1
}

// Divisor returns the 12-bit UBRR0 value.
func (u *USART) Divisor() uint16 {
	return uint16(u.ubrrh)<<8 | uint16(u.ubrrl)
}

// Baud returns the bit rate the programmed divisor yields at clockHz.
func (u *USART) Baud(clockHz uint32) uint32 {
	div := uint32(16)
	if u.ucsra&(1<<avr.U2X0) != 0 {
		div = 8
	}
	return clockHz / (div * (uint32(u.Divisor()) + 1))
}

// Frame returns the frame format in the usual "8N1" notation.
func (u *USART) Frame() string {
	parity := "NNEO"[u.ucsrc>>4&0x3]
	return fmt.Sprintf("%d%c%d", u.charBits(), parity, u.stopBits())
}

func (u *USART) TransmitterEnabled() bool { return u.ucsrb&txen != 0 }

// Sent is the number of bytes transmitted so far.
func (u *USART) Sent() uint64 { return u.sent }

func hex16(addr uintptr) string { return fmt.Sprintf("0x%04x", addr) }
