package usart

import "errors"

// ErrIncompatibleSettings is returned when a clock/baud pair cannot be
// expressed as a 12-bit baud divisor. The configuration is left unchanged and
// the caller may retry with other values.
var ErrIncompatibleSettings = errors.New("incompatible settings")
