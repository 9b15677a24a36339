package sim

import "fmt"

// RAM is byte-addressable SRAM. Offsets are relative to the start of the
// SRAM window; out-of-range accesses report ok=false.
type RAM struct {
	mem []byte
}

func NewRAM(size uint32) *RAM { return &RAM{mem: make([]byte, size)} }

func (r *RAM) Size() uint32 { return uint32(len(r.mem)) }

func (r *RAM) Read8(off uint32) (uint8, bool) {
	if off >= uint32(len(r.mem)) {
		return 0, false
	}
	return r.mem[off], true
}

func (r *RAM) Write8(off uint32, v uint8) bool {
	if off >= uint32(len(r.mem)) {
		return false
	}
	r.mem[off] = v
	return true
}

func (r *RAM) WriteBytes(off uint32, p []byte) error {
	if uint64(off)+uint64(len(p)) > uint64(len(r.mem)) {
		return fmt.Errorf("%d bytes at 0x%x overrun %d byte RAM", len(p), off, len(r.mem))
	}
	copy(r.mem[off:], p)
	return nil
}
