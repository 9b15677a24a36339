//go:build tinygo && avr

package atmega328p

import "emuavr/register"

// USART0 is the on-chip USART0. Take it once:
//
//	d := atmega328p.USART0.Take().Commit()
var USART0 = NewUSART0(register.MMIO)
