package sim

import (
	"log/slog"

	"emuavr/atmega328p"
)

// ATmega328P data space.
// Register file: 0x0000 .. 0x001F
// I/O + ext I/O: 0x0020 .. 0x00FF (USART0 at 0x00C0 .. 0x00C6)
// SRAM:          0x0100 .. 0x08FF
const (
	IOBase     = 0x0020
	SRAMBase   = 0x0100
	SRAMSize   = 0x0800
	USART0Base = atmega328p.UCSR0A
	USART0End  = atmega328p.UDR0
)

type Bus struct {
	ram   *RAM
	usart *USART
	// register file and every I/O location without a device model
	latch [SRAMBase]uint8

	Tracer Tracer
	logger *slog.Logger
}

func NewBus(ram *RAM, usart *USART, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{ram: ram, usart: usart, logger: logger}
}

func (b *Bus) Read8(addr uint32) (uint8, bool) {
	v, ok := b.read8(addr)
	if ok && b.Tracer != nil {
		b.Tracer.Access(OpRead, addr, v)
	}
	return v, ok
}

func (b *Bus) read8(addr uint32) (uint8, bool) {
	// USART0 MMIO
	if addr >= USART0Base && addr <= USART0End {
		return b.usart.Read(addr), true
	}
	if addr < SRAMBase {
		return b.latch[addr], true
	}
	return b.ram.Read8(addr - SRAMBase)
}

func (b *Bus) Write8(addr uint32, v uint8) bool {
	ok := b.write8(addr, v)
	if ok && b.Tracer != nil {
		b.Tracer.Access(OpWrite, addr, v)
	}
	return ok
}

func (b *Bus) write8(addr uint32, v uint8) bool {
	if addr >= USART0Base && addr <= USART0End {
		b.usart.Write(addr, v)
		return true
	}
	if addr < SRAMBase {
		b.latch[addr] = v
		return true
	}
	return b.ram.Write8(addr-SRAMBase, v)
}

// Load8 implements register.Space. Unmapped reads return 0.
func (b *Bus) Load8(addr uintptr) uint8 {
	v, ok := b.Read8(uint32(addr))
	if !ok {
		b.logger.Warn("read from unmapped address", slog.String("addr", hex16(addr)))
	}
	return v
}

// Store8 implements register.Space. Unmapped writes are dropped.
func (b *Bus) Store8(addr uintptr, v uint8) {
	if !b.Write8(uint32(addr), v) {
		b.logger.Warn("write to unmapped address", slog.String("addr", hex16(addr)), slog.Int("value", int(v)))
	}
}
