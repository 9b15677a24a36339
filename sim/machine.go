package sim

import (
	"io"
	"log/slog"

	"emuavr/atmega328p"
	"emuavr/peripheral"
	"emuavr/usart"
)

// Machine is a hosted ATmega328P: SRAM, the USART0 model and the bus that
// joins them. USART0 is the ownership container the driver is taken from,
// bound to this machine's bus.
type Machine struct {
	RAM    *RAM
	USART  *USART
	Bus    *Bus
	USART0 *peripheral.Peripheral[usart.Config]
}

func NewMachine(out io.Writer, logger *slog.Logger) *Machine {
	ram := NewRAM(SRAMSize)
	dev := NewUSART(out, logger)
	bus := NewBus(ram, dev, logger)
	return &Machine{
		RAM:    ram,
		USART:  dev,
		Bus:    bus,
		USART0: atmega328p.NewUSART0(bus),
	}
}
