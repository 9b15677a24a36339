// Package atmega328p holds the USART0 register map of the ATmega328P
// (datasheet section 19.10) and the USART0 ownership container.
package atmega328p

import (
	"emuavr/peripheral"
	"emuavr/register"
	"emuavr/usart"
)

const ClockHz = 16_000_000

// USART0 data-space addresses.
const (
	UCSR0A = 0xC0
	UCSR0B = 0xC1
	UCSR0C = 0xC2
	UBRR0L = 0xC4
	UBRR0H = 0xC5
	UDR0   = 0xC6
)

// UCSR0A bits.
const (
	MPCM0 = 0
	U2X0  = 1
	UPE0  = 2
	DOR0  = 3
	FE0   = 4
	UDRE0 = 5
	TXC0  = 6
	RXC0  = 7
)

// UCSR0B bits.
const (
	TXB80  = 0
	RXB80  = 1
	UCSZ02 = 2
	TXEN0  = 3
	RXEN0  = 4
	UDRIE0 = 5
	TXCIE0 = 6
	RXCIE0 = 7
)

// UCSR0C bits.
const (
	UCPOL0 = 0
	UCSZ00 = 1
	UCSZ01 = 2
	USBS0  = 3
)

// Reset values.
const (
	UCSR0AReset = 1 << UDRE0
	UCSR0CReset = 1<<UCSZ01 | 1<<UCSZ00
)

func USART0Registers(space register.Space) usart.Registers {
	return usart.Registers{
		Data:     register.New(space, UDR0),
		BaudLow:  register.New(space, UBRR0L),
		BaudHigh: register.New(space, UBRR0H),
		StatusA:  register.New(space, UCSR0A),
		ControlB: register.New(space, UCSR0B),
		ControlC: register.New(space, UCSR0C),
	}
}

// NewUSART0 returns the take-once container for USART0 in space, holding
// the default configuration. There must be one per physical device.
func NewUSART0(space register.Space) *peripheral.Peripheral[usart.Config] {
	return peripheral.New(usart.New(USART0Registers(space)))
}
