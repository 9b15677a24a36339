package usart

// TxReady is the UDREn flag in UCSRnA: the transmit buffer is empty.
const TxReady uint8 = 1 << 5

// Driver is an initialized USART. Its registers were programmed by Commit
// and are assumed to hold the committed settings for the rest of the
// program.
//
// Transmission is blocking and has no timeout: a peripheral that never
// reports ready blocks the caller forever.
type Driver struct {
	cfg Config
}

// Config returns the committed settings. The copy still refers to the same
// registers; committing it again takes the hardware over behind the
// driver's back and is not checked.
func (d *Driver) Config() Config { return d.cfg }

// TransmitByte waits for UDREn, then writes b to UDRn.
func (d *Driver) TransmitByte(b byte) {
	for d.cfg.regs.StatusA.Read()&TxReady == 0 {
	}
	d.cfg.regs.Data.Write(b)
}

// TransmitString sends the bytes of s in order.
func (d *Driver) TransmitString(s string) {
	for i := 0; i < len(s); i++ {
		d.TransmitByte(s[i])
	}
}

// Write implements io.Writer. It never fails.
func (d *Driver) Write(p []byte) (int, error) {
	for _, b := range p {
		d.TransmitByte(b)
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (d *Driver) WriteString(s string) (int, error) {
	d.TransmitString(s)
	return len(s), nil
}
