// Package register models 8-bit memory-mapped hardware registers.
//
// A Register is bound to a fixed address inside a Space. On the real target
// the Space is MMIO, which issues volatile loads and stores. Hosted builds
// plug in a simulated bus instead (see package sim).
package register

// Space is an 8-bit addressable I/O space. Every call is exactly one access;
// implementations must not cache, merge or reorder them.
type Space interface {
	Load8(addr uintptr) uint8
	Store8(addr uintptr, v uint8)
}

type Register struct {
	address uint8
	space   Space
}

// New binds a register to addr. The address never changes afterwards.
func New(space Space, addr uint8) Register {
	return Register{address: addr, space: space}
}

func (r Register) Address() uint8 { return r.address }

// Read performs a single load; the value reflects current hardware state.
func (r Register) Read() uint8 {
	return r.space.Load8(uintptr(r.address))
}

// Write performs a single store.
func (r Register) Write(v uint8) {
	r.space.Store8(uintptr(r.address), v)
}
