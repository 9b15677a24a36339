package sim

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type Op uint8

const (
	OpRead Op = iota + 1
	OpWrite
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "R"
	case OpWrite:
		return "W"
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Tracer observes every successful bus access.
type Tracer interface {
	Access(op Op, addr uint32, v uint8)
}

// Header starts a trace stream.
type Header struct {
	Session string    `cbor:"1,keyasint"`
	Device  string    `cbor:"2,keyasint"`
	ClockHz uint32    `cbor:"3,keyasint"`
	Started time.Time `cbor:"4,keyasint"`
}

// Event is one bus access.
type Event struct {
	Seq   uint64 `cbor:"1,keyasint"`
	Op    Op     `cbor:"2,keyasint"`
	Addr  uint32 `cbor:"3,keyasint"`
	Value uint8  `cbor:"4,keyasint"`
}

func (e Event) String() string {
	return fmt.Sprintf("%6d %s 0x%04x 0x%02x", e.Seq, e.Op, e.Addr, e.Value)
}

var (
	traceEncMode cbor.EncMode
	traceDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	traceEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}
	traceDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// Recorder streams bus accesses to w as CBOR: one Header, then Events.
// The first encoding error stops the recording; see Err.
type Recorder struct {
	enc *cbor.Encoder
	seq uint64
	err error
}

func NewRecorder(w io.Writer, device string, clockHz uint32) (*Recorder, error) {
	enc := traceEncMode.NewEncoder(w)
	h := Header{
		Session: uuid.New().String(),
		Device:  device,
		ClockHz: clockHz,
		Started: time.Now().UTC(),
	}
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("write trace header: %w", err)
	}
	return &Recorder{enc: enc}, nil
}

func (r *Recorder) Access(op Op, addr uint32, v uint8) {
	if r.err != nil {
		return
	}
	r.seq++
	if err := r.enc.Encode(Event{Seq: r.seq, Op: op, Addr: addr, Value: v}); err != nil {
		r.err = fmt.Errorf("write trace event %d: %w", r.seq, err)
	}
}

func (r *Recorder) Err() error { return r.err }

// ReadTrace decodes a stream written by a Recorder.
func ReadTrace(rd io.Reader) (Header, []Event, error) {
	dec := traceDecMode.NewDecoder(rd)

	var h Header
	if err := dec.Decode(&h); err != nil {
		return Header{}, nil, fmt.Errorf("read trace header: %w", err)
	}
	if _, err := uuid.Parse(h.Session); err != nil {
		return Header{}, nil, fmt.Errorf("trace session id: %w", err)
	}

	var events []Event
	for {
		var e Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return h, events, nil
		}
		if err != nil {
			return h, events, fmt.Errorf("read trace event %d: %w", len(events)+1, err)
		}
		events = append(events, e)
	}
}
