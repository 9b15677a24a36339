//go:build tinygo && avr

package register

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the AVR data space. Loads and stores go through runtime/volatile
// so the compiler can neither elide nor reorder them.
var MMIO Space = mmio{}

type mmio struct{}

func (mmio) Load8(addr uintptr) uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(addr)))
}

func (mmio) Store8(addr uintptr, v uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), v)
}
