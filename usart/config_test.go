package usart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDivisor(t *testing.T) {
	tests := []struct {
		name    string
		clockHz uint32
		baud    uint32
		want    uint16
		wantErr bool
	}{
		{name: "reference 9600", clockHz: 16_000_000, baud: 9600, want: 103},
		{name: "115200 floors", clockHz: 16_000_000, baud: 115200, want: 7},
		{name: "fastest", clockHz: 16_000_000, baud: 1_000_000, want: 0},
		{name: "slowest at 16 MHz", clockHz: 16_000_000, baud: 245, want: 4080},
		{name: "exact 12-bit edge", clockHz: 16 * 4096, baud: 1, want: 4095},
		{name: "one past 12 bits", clockHz: 16 * 4097, baud: 1, wantErr: true},
		{name: "too slow", clockHz: 16_000_000, baud: 15, wantErr: true},
		{name: "would underflow", clockHz: 16_000_000, baud: 1_000_001, wantErr: true},
		{name: "tiny clock", clockHz: 15, baud: 1, wantErr: true},
		{name: "zero baud", clockHz: 16_000_000, baud: 0, wantErr: true},
		{name: "zero clock", clockHz: 0, baud: 9600, wantErr: true},
		{name: "16*baud overflows uint32", clockHz: 4_000_000_000, baud: 300_000_000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Divisor(tt.clockHz, tt.baud)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrIncompatibleSettings), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetClockAndBaudStoresDivisor(t *testing.T) {
	cfg, err := New(testRegisters(newBusySpace(0))).SetClockAndBaud(8_000_000, 38400)
	require.NoError(t, err)

	assert.Equal(t, uint32(8_000_000), cfg.ClockHz())
	assert.Equal(t, uint32(38400), cfg.Baud())
	assert.Equal(t, uint16(12), cfg.Divisor())
}

func TestSetClockAndBaudRejectLeavesConfigUnchanged(t *testing.T) {
	before, err := New(testRegisters(newBusySpace(0))).SetClockAndBaud(8_000_000, 19200)
	require.NoError(t, err)

	for _, in := range [][2]uint32{{16_000_000, 10}, {16_000_000, 2_000_000}} {
		after, err := before.SetClockAndBaud(in[0], in[1])
		assert.ErrorIs(t, err, ErrIncompatibleSettings)
		assert.Equal(t, before, after)
		assert.Equal(t, uint16(25), after.Divisor())
		assert.Equal(t, uint32(8_000_000), after.ClockHz())
	}
}

func TestConfigurationTouchesNoHardware(t *testing.T) {
	space := newBusySpace(0)
	cfg, err := New(testRegisters(space)).SetClockAndBaud(16_000_000, 57600)
	require.NoError(t, err)
	cfg.SetStopBits(OneStopBit).SetCharSize(SevenBit).SetMode(TransmitAndReceive)

	assert.Empty(t, space.log)
}

func TestSettersCommute(t *testing.T) {
	base := New(testRegisters(newBusySpace(0)))

	a := base.SetStopBits(OneStopBit).SetCharSize(SixBit)
	b := base.SetCharSize(SixBit).SetStopBits(OneStopBit)

	assert.Equal(t, a, b)
	assert.Equal(t, TwoStopBits, base.StopBits(), "setters must not alias the receiver")
}

func TestDefaults(t *testing.T) {
	cfg := New(testRegisters(newBusySpace(0)))

	assert.Equal(t, uint32(DefaultClockHz), cfg.ClockHz())
	assert.Equal(t, uint16(103), cfg.Divisor())
	assert.Equal(t, TwoStopBits, cfg.StopBits())
	assert.Equal(t, EightBit, cfg.CharSize())
	assert.Equal(t, Transmit, cfg.Mode())

	d, err := Divisor(cfg.ClockHz(), cfg.Baud())
	require.NoError(t, err)
	assert.Equal(t, cfg.Divisor(), d)
}

func TestBaudError(t *testing.T) {
	cfg, err := New(testRegisters(newBusySpace(0))).SetClockAndBaud(16_000_000, 9600)
	require.NoError(t, err)

	// 16e6 / (16*104) = 9615 baud, +0.2%
	assert.Equal(t, uint32(9615), cfg.ActualBaud())
	assert.InDelta(t, 0.0016, cfg.BaudError(), 0.0001)
}

func TestCommitWriteOrder(t *testing.T) {
	space := newBusySpace(0)
	cfg, err := New(testRegisters(space)).SetClockAndBaud(1_000_000, 300)
	require.NoError(t, err)
	require.Equal(t, uint16(207), cfg.Divisor())

	cfg.SetStopBits(TwoStopBits).SetCharSize(EightBit).SetMode(Transmit).Commit()

	assert.Equal(t, []access{
		{"w", addrBaudLow, 207},
		{"w", addrBaudHigh, 0},
		{"w", addrControlC, 14},
		{"w", addrControlB, 8},
	}, space.log)
}

func TestCommitHighByte(t *testing.T) {
	space := newBusySpace(0)
	cfg, err := New(testRegisters(space)).SetClockAndBaud(16_000_000, 300)
	require.NoError(t, err)
	require.Equal(t, uint16(3332), cfg.Divisor())

	cfg.Commit()

	assert.Equal(t, uint8(3332&0xFF), space.mem[addrBaudLow])
	assert.Equal(t, uint8(3332>>8), space.mem[addrBaudHigh])
}

type mockSpace struct{ mock.Mock }

func (m *mockSpace) Load8(addr uintptr) uint8 {
	return m.Called(addr).Get(0).(uint8)
}

func (m *mockSpace) Store8(addr uintptr, v uint8) { m.Called(addr, v) }

func TestCommitReferenceScenario(t *testing.T) {
	space := new(mockSpace)
	mock.InOrder(
		space.On("Store8", uintptr(addrBaudLow), uint8(103)).Once(),
		space.On("Store8", uintptr(addrBaudHigh), uint8(0)).Once(),
		space.On("Store8", uintptr(addrControlC), uint8(TwoStopBits)|uint8(EightBit)).Once(),
		space.On("Store8", uintptr(addrControlB), uint8(Transmit)).Once(),
	)

	cfg, err := New(testRegisters(space)).SetClockAndBaud(16_000_000, 9600)
	require.NoError(t, err)
	d := cfg.Commit()

	space.AssertExpectations(t)
	space.AssertNotCalled(t, "Load8", mock.Anything)
	assert.Equal(t, cfg, d.Config())
}

func TestFrameFormat(t *testing.T) {
	tests := []struct {
		stop StopBits
		size CharSize
		want uint8
	}{
		{OneStopBit, FiveBit, 0},
		{OneStopBit, EightBit, 6},
		{TwoStopBits, FiveBit, 8},
		{TwoStopBits, SevenBit, 12},
		{TwoStopBits, EightBit, 14},
	}
	for _, tt := range tests {
		t.Run(tt.stop.String()+"/"+tt.size.String(), func(t *testing.T) {
			space := newBusySpace(0)
			New(testRegisters(space)).SetStopBits(tt.stop).SetCharSize(tt.size).Commit()
			assert.Equal(t, tt.want, space.mem[addrControlC])
		})
	}
}

func TestParseSettings(t *testing.T) {
	s, err := ParseStopBits("Two")
	require.NoError(t, err)
	assert.Equal(t, TwoStopBits, s)

	c, err := ParseCharSize("7-bit")
	require.NoError(t, err)
	assert.Equal(t, SevenBit, c)
	assert.Equal(t, 7, c.Bits())

	m, err := ParseMode("txrx")
	require.NoError(t, err)
	assert.Equal(t, TransmitAndReceive, m)
	assert.Equal(t, "transmit-receive", m.String())

	_, err = ParseStopBits("3")
	assert.Error(t, err)
	_, err = ParseCharSize("9")
	assert.Error(t, err)
	_, err = ParseMode("loopback")
	assert.Error(t, err)
}
