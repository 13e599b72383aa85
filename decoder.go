package sctp

import "fmt"

type decoderState uint8

const (
	stateReady decoderState = iota
	stateDecoding
	stateDone
	stateAborted
)

// Handler receives one decoded field per call during Decoder.Run. For
// fixed-width scalars and vectors the payload is a zero-copy view into the
// source buffer; for LEB128 and SHORT fields it is a scratch buffer holding
// the materialized value, valid only until the handler returns. The terminal
// EOF call receives a nil payload.
//
// Returning a non-nil error aborts the pass and propagates out of Run.
type Handler func(typ Type, payload []byte) error

// Decoder reads SCTP fields from a byte buffer with a forward-only cursor.
// The buffer is either borrowed (NewDecoderBuffer) or owned by the decoder
// and filled by the caller before decoding begins (NewDecoder).
//
// The decoder moves Ready → Decoding → Done across a pass. Any malformed
// input latches a terminal error: the pass aborts, no partial field is ever
// surfaced, and every later call reports the same error. No read ever goes
// outside the buffer's bounds.
//
// A Decoder is not safe for concurrent use, and Run must not be re-entered
// from inside its handler.
type Decoder struct {
	data  []byte
	pos   int
	state decoderState
	err   error // first error encountered. Subsequent calls become no-ops.

	last    Field
	lastRaw []byte  // payload view for fixed-width and vector fields
	scratch [8]byte // materialized LEB128/SHORT payload for Run
}

// NewDecoder creates a Decoder that owns a buffer of the given size. The
// caller fills it through Buffer before the first call to Next or Run.
func NewDecoder(size int) *Decoder {
	return &Decoder{data: make([]byte, size)}
}

// NewDecoderBuffer creates a Decoder that reads the caller's buffer in
// place, without copying. The buffer must stay alive and unmodified for the
// duration of the decode pass.
func NewDecoderBuffer(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Buffer returns the decoder's backing buffer. For decoders created with
// NewDecoder this is the writable buffer the caller fills with the encoded
// stream before decoding.
func (d *Decoder) Buffer() []byte { return d.data }

// Err returns the latched error, if the decoder has aborted.
func (d *Decoder) Err() error { return d.err }

// Field returns the last decoded (type, value, size) triple. It is valid
// after a call to Next that returned a non-EOF type.
func (d *Decoder) Field() Field { return d.last }

// Position returns the current read offset. The cursor only ever advances.
func (d *Decoder) Position() int { return d.pos }

// Reset rewinds the decoder to the start of its buffer and clears any
// latched error, beginning a new, unrelated pass over the same bytes.
func (d *Decoder) Reset() {
	d.pos = 0
	d.state = stateReady
	d.err = nil
	d.last = Field{}
	d.lastRaw = nil
}

func (d *Decoder) abort(err error) error {
	d.state = stateAborted
	d.err = err
	d.last = Field{}
	d.lastRaw = nil
	return err
}

// view returns the next n source bytes without copying and advances the
// cursor past them.
func (d *Decoder) view(n int) ([]byte, error) {
	if n > len(d.data)-d.pos {
		return nil, fmt.Errorf("%w: need %d bytes, %d remain", ErrTruncated, n, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Next decodes one field and returns its type. The decoded triple is
// available through Field. Reaching an EOF field, or exhausting the buffer
// without one, returns TypeEOF; further calls keep returning TypeEOF. A
// malformed field aborts the decoder and returns one of ErrTruncated,
// ErrOverflow or ErrUnknownType.
func (d *Decoder) Next() (Type, error) {
	switch d.state {
	case stateAborted:
		return 0, d.err
	case stateDone:
		return TypeEOF, nil
	}
	d.state = stateDecoding

	if d.pos >= len(d.data) {
		// Buffer exhaustion is an implicit EOF, indistinguishable from the
		// explicit sentinel.
		d.state = stateDone
		d.last = Field{Type: TypeEOF}
		d.lastRaw = nil
		return TypeEOF, nil
	}

	typ, meta := UnpackHeader(d.data[d.pos])
	d.pos++

	switch {
	case typ == TypeEOF:
		d.state = stateDone
		d.last = Field{Type: TypeEOF}
		d.lastRaw = nil
		return TypeEOF, nil

	case fixedWidth[typ] > 0:
		// Metadata on fixed-width types is ignored.
		w := fixedWidth[typ]
		raw, err := d.view(w)
		if err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.last = Field{Type: typ, Value: numValue(typ, getLE(raw)), Size: w}
		d.lastRaw = raw

	case typ == TypeUleb128:
		v, n, err := Uleb128(d.data[d.pos:])
		if err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.pos += n
		d.last = Field{Type: typ, Value: numValue(typ, v), Size: 8}
		d.lastRaw = nil

	case typ == TypeSleb128:
		v, n, err := Sleb128(d.data[d.pos:])
		if err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.pos += n
		d.last = Field{Type: typ, Value: numValue(typ, uint64(v)), Size: 8}
		d.lastRaw = nil

	case typ == TypeShort:
		// The header byte is the whole field; the value is its metadata.
		d.last = Field{Type: typ, Value: numValue(typ, uint64(meta)), Size: 1}
		d.lastRaw = nil

	case typ == TypeVector:
		length := int(meta)
		if meta == vectorLargeFlag {
			v, n, err := Uleb128(d.data[d.pos:])
			if err != nil {
				return 0, d.abort(fmt.Errorf("vector length: %w", err))
			}
			if v > uint64(len(d.data)-d.pos-n) {
				return 0, d.abort(fmt.Errorf("%w: vector length %d exceeds remaining input", ErrTruncated, v))
			}
			d.pos += n
			length = int(v)
		}
		raw, err := d.view(length)
		if err != nil {
			return 0, d.abort(fmt.Errorf("vector payload: %w", err))
		}
		d.last = Field{Type: typ, Value: vecValue(raw), Size: length}
		d.lastRaw = raw

	default: // reserved type 14
		return 0, d.abort(fmt.Errorf("%w: type %d", ErrUnknownType, typ))
	}

	return typ, nil
}

// Run decodes the whole stream in one linear pass, invoking the handler for
// every field. After the last field the handler is called once more with
// (TypeEOF, nil) and Run returns nil. A malformed field or a handler error
// aborts the pass.
func (d *Decoder) Run(fn Handler) error {
	if fn == nil {
		return fmt.Errorf("%w: nil handler", ErrInvalidArgument)
	}
	for {
		typ, err := d.Next()
		if err != nil {
			return err
		}
		if typ == TypeEOF {
			return fn(TypeEOF, nil)
		}

		var payload []byte
		switch typ {
		case TypeUleb128, TypeSleb128:
			putLE(d.scratch[:8], d.last.Value.bits)
			payload = d.scratch[:8]
		case TypeShort:
			d.scratch[0] = uint8(d.last.Value.bits)
			payload = d.scratch[:1]
		default:
			payload = d.lastRaw
		}

		if err := fn(typ, payload); err != nil {
			return d.abort(err)
		}
	}
}
