// Package peripheral provides the ownership container for a physical
// hardware block.
//
// Hazard: a Peripheral is usually a package-level variable reachable from
// anywhere. Take is the only thing standing between two code paths and the
// same registers, so a second Take panics instead of handing out a value.
package peripheral

import (
	"errors"
	"sync/atomic"
)

var ErrAlreadyTaken = errors.New("peripheral: already taken")

type Peripheral[T any] struct {
	inner atomic.Pointer[T]
}

func New[T any](v T) *Peripheral[T] {
	p := &Peripheral[T]{}
	p.inner.Store(&v)
	return p
}

// Take moves the value out and leaves the container empty. The emptiness
// check and the clear are one atomic swap, so concurrent or interrupt
// re-entrant callers cannot both succeed.
func (p *Peripheral[T]) Take() T {
	v := p.inner.Swap(nil)
	if v == nil {
		panic(ErrAlreadyTaken)
	}
	return *v
}

// Taken reports whether the value has already been moved out.
func (p *Peripheral[T]) Taken() bool {
	return p.inner.Load() == nil
}
