package usart

import (
	"fmt"

	"emuavr/register"
)

const (
	addrStatusA  = 0xC0
	addrControlB = 0xC1
	addrControlC = 0xC2
	addrBaudLow  = 0xC4
	addrBaudHigh = 0xC5
	addrData     = 0xC6
)

func testRegisters(space register.Space) Registers {
	return Registers{
		Data:     register.New(space, addrData),
		BaudLow:  register.New(space, addrBaudLow),
		BaudHigh: register.New(space, addrBaudHigh),
		StatusA:  register.New(space, addrStatusA),
		ControlB: register.New(space, addrControlB),
		ControlC: register.New(space, addrControlC),
	}
}

type access struct {
	op    string // "r" or "w"
	addr  uintptr
	value uint8
}

func (a access) String() string {
	return fmt.Sprintf("%s %#02x=%#02x", a.op, a.addr, a.value)
}

// busySpace is a register bank whose status register reports busy for
// `busy` polls after every data write.
type busySpace struct {
	mem     [256]uint8
	busy    int
	pending int
	log     []access
}

func newBusySpace(busy int) *busySpace {
	s := &busySpace{busy: busy}
	s.mem[addrStatusA] = 0x20
	return s
}

func (s *busySpace) Load8(addr uintptr) uint8 {
	v := s.mem[addr]
	if addr == addrStatusA && s.pending > 0 {
		s.pending--
		v &^= TxReady
	}
	s.log = append(s.log, access{"r", addr, v})
	return v
}

func (s *busySpace) Store8(addr uintptr, v uint8) {
	s.mem[addr] = v
	if addr == addrData {
		s.pending = s.busy
	}
	s.log = append(s.log, access{"w", addr, v})
}

func (s *busySpace) writes() []access {
	var out []access
	for _, a := range s.log {
		if a.op == "w" {
			out = append(out, a)
		}
	}
	return out
}

func (s *busySpace) reset() { s.log = nil }
