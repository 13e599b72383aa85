package sctp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
)

type byteWriter interface {
	io.Writer
	io.ByteWriter
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// StreamEncoder writes the SCTP wire format directly to an io.Writer, for
// hosts that move transactions over sockets or files rather than through a
// staged buffer. Unlike Encoder there is no capacity limit; framing is the
// transport's concern.
//
// The first write error is latched and every later operation becomes a
// no-op, so a sequence of Add calls can be checked once via Result.
type StreamEncoder struct {
	w       byteWriter
	f       *bufio.Writer // owned buffer, nil when w buffers on its own
	count   int64         // total bytes written
	err     error         // first error encountered. Subsequent writes become no-ops.
	scratch [1 + MaxUleb128Len]byte
}

// NewStreamEncoder creates a StreamEncoder on top of w. Writers that are
// already byte-oriented (bytes.Buffer, bufio.Writer) are used directly;
// anything else is wrapped in a bufio.Writer, which Flush or Result must
// drain.
func NewStreamEncoder(w io.Writer) (*StreamEncoder, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	if bw, ok := w.(byteWriter); ok {
		return &StreamEncoder{w: bw}, nil
	}
	f := bufio.NewWriter(w)
	return &StreamEncoder{w: f, f: f}, nil
}

// setError records the first non-nil error.
func (e *StreamEncoder) setError(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

func (e *StreamEncoder) write(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.w.Write(p)
	e.count += int64(n)
	e.setError(err)
}

func (e *StreamEncoder) addFixed(typ Type, bits uint64, width int) {
	e.scratch[0] = byte(typ)
	putLE(e.scratch[1:1+width], bits)
	e.write(e.scratch[:1+width])
}

func (e *StreamEncoder) AddInt8(v int8)     { e.addFixed(TypeInt8, uint64(uint8(v)), 1) }
func (e *StreamEncoder) AddUint8(v uint8)   { e.addFixed(TypeUint8, uint64(v), 1) }
func (e *StreamEncoder) AddInt16(v int16)   { e.addFixed(TypeInt16, uint64(uint16(v)), 2) }
func (e *StreamEncoder) AddUint16(v uint16) { e.addFixed(TypeUint16, uint64(v), 2) }
func (e *StreamEncoder) AddInt32(v int32)   { e.addFixed(TypeInt32, uint64(uint32(v)), 4) }
func (e *StreamEncoder) AddUint32(v uint32) { e.addFixed(TypeUint32, uint64(v), 4) }
func (e *StreamEncoder) AddInt64(v int64)   { e.addFixed(TypeInt64, uint64(v), 8) }
func (e *StreamEncoder) AddUint64(v uint64) { e.addFixed(TypeUint64, v, 8) }

func (e *StreamEncoder) AddFloat32(v float32) {
	e.addFixed(TypeFloat32, uint64(math.Float32bits(v)), 4)
}

func (e *StreamEncoder) AddFloat64(v float64) {
	e.addFixed(TypeFloat64, math.Float64bits(v), 8)
}

func (e *StreamEncoder) AddUleb128(v uint64) {
	e.scratch[0] = byte(TypeUleb128)
	n := PutUleb128(e.scratch[1:], v)
	e.write(e.scratch[:1+n])
}

func (e *StreamEncoder) AddSleb128(v int64) {
	e.scratch[0] = byte(TypeSleb128)
	n := PutSleb128(e.scratch[1:], v)
	e.write(e.scratch[:1+n])
}

func (e *StreamEncoder) AddShort(v uint8) {
	if v > MaxShort {
		e.setError(fmt.Errorf("%w: short value %d exceeds %d", ErrInvalidArgument, v, MaxShort))
		return
	}
	e.scratch[0] = byte(TypeShort) | v<<metaShift
	e.write(e.scratch[:1])
}

// AddBytes appends a vector field holding data. A stream has no buffer to
// reserve a span in, so the payload is copied from the caller's slice.
func (e *StreamEncoder) AddBytes(data []byte) {
	if len(data) < vectorLargeFlag {
		e.scratch[0] = byte(TypeVector) | uint8(len(data))<<metaShift
		e.write(e.scratch[:1])
	} else {
		e.scratch[0] = byte(TypeVector) | vectorLargeFlag<<metaShift
		n := PutUleb128(e.scratch[1:], uint64(len(data)))
		e.write(e.scratch[:1+n])
	}
	e.write(data)
}

// AddRaw appends unframed bytes with no header.
func (e *StreamEncoder) AddRaw(data []byte) { e.write(data) }

func (e *StreamEncoder) AddEOF() {
	e.scratch[0] = byte(TypeEOF)
	e.write(e.scratch[:1])
}

// Err returns the first error encountered, if any.
func (e *StreamEncoder) Err() error { return e.err }

// Count returns the total number of bytes written so far.
func (e *StreamEncoder) Count() int64 { return e.count }

// Flush writes any buffered data to the underlying io.Writer.
func (e *StreamEncoder) Flush() error {
	if e.err != nil || e.f == nil {
		return e.err
	}
	e.setError(e.f.Flush())
	return e.err
}

// Result flushes and returns the final count and error state.
func (e *StreamEncoder) Result() (int64, error) {
	e.Flush()
	return e.count, e.err
}

// StreamDecoder reads the SCTP wire format from an io.Reader. Because there
// is no backing buffer to borrow from, vector payloads are copied and owned
// by the caller. A clean EOF at a field boundary terminates the stream like
// an explicit EOF field; EOF inside a field is ErrTruncated.
type StreamDecoder struct {
	r     byteReader
	count int64
	done  bool
	err   error // first error encountered. Subsequent calls become no-ops.

	last    Field
	lastRaw []byte
	scratch [8]byte
}

// NewStreamDecoder creates a StreamDecoder on top of r. Readers that are
// already byte-oriented (bytes.Reader, bufio.Reader) are used directly;
// anything else is wrapped in a bufio.Reader.
func NewStreamDecoder(r io.Reader) (*StreamDecoder, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	if br, ok := r.(byteReader); ok {
		return &StreamDecoder{r: br}, nil
	}
	return &StreamDecoder{r: bufio.NewReader(r)}, nil
}

// Err returns the latched error, if the decoder has aborted.
func (d *StreamDecoder) Err() error { return d.err }

// Count returns the total number of bytes consumed from the reader.
func (d *StreamDecoder) Count() int64 { return d.count }

// Field returns the last decoded (type, value, size) triple.
func (d *StreamDecoder) Field() Field { return d.last }

func (d *StreamDecoder) abort(err error) error {
	d.err = err
	d.last = Field{}
	d.lastRaw = nil
	return err
}

// readFull reads exactly n bytes into dst, mapping any shortfall to
// ErrTruncated.
func (d *StreamDecoder) readFull(dst []byte) error {
	n, err := io.ReadFull(d.r, dst)
	d.count += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %d of %d payload bytes", ErrTruncated, n, len(dst))
	}
	return nil
}

// Next decodes one field from the stream. Semantics match Decoder.Next,
// except that vector payloads are freshly allocated copies.
func (d *StreamDecoder) Next() (Type, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.done {
		return TypeEOF, nil
	}

	header, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			d.done = true
			d.last = Field{Type: TypeEOF}
			d.lastRaw = nil
			return TypeEOF, nil
		}
		return 0, d.abort(err)
	}
	d.count++

	typ, meta := UnpackHeader(header)

	switch {
	case typ == TypeEOF:
		d.done = true
		d.last = Field{Type: TypeEOF}
		d.lastRaw = nil
		return TypeEOF, nil

	case fixedWidth[typ] > 0:
		w := fixedWidth[typ]
		if err := d.readFull(d.scratch[:w]); err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.last = Field{Type: typ, Value: numValue(typ, getLE(d.scratch[:w])), Size: w}
		d.lastRaw = d.scratch[:w]

	case typ == TypeUleb128:
		v, n, err := readUleb128(d.r)
		d.count += int64(n)
		if err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.last = Field{Type: typ, Value: numValue(typ, v), Size: 8}
		d.lastRaw = nil

	case typ == TypeSleb128:
		v, n, err := readSleb128(d.r)
		d.count += int64(n)
		if err != nil {
			return 0, d.abort(fmt.Errorf("%s payload: %w", typ, err))
		}
		d.last = Field{Type: typ, Value: numValue(typ, uint64(v)), Size: 8}
		d.lastRaw = nil

	case typ == TypeShort:
		d.last = Field{Type: typ, Value: numValue(typ, uint64(meta)), Size: 1}
		d.lastRaw = nil

	case typ == TypeVector:
		length := uint64(meta)
		if meta == vectorLargeFlag {
			v, n, err := readUleb128(d.r)
			d.count += int64(n)
			if err != nil {
				return 0, d.abort(fmt.Errorf("vector length: %w", err))
			}
			length = v
		}
		if length > math.MaxInt64 {
			return 0, d.abort(fmt.Errorf("%w: vector length %d", ErrTruncated, length))
		}
		// Grow with the data actually read rather than trusting the claimed
		// length with one big allocation.
		var buf bytes.Buffer
		n, err := io.CopyN(&buf, d.r, int64(length))
		d.count += n
		if err != nil {
			return 0, d.abort(fmt.Errorf("%w: %d of %d vector bytes", ErrTruncated, n, length))
		}
		raw := buf.Bytes()
		d.last = Field{Type: typ, Value: vecValue(raw), Size: int(length)}
		d.lastRaw = raw

	default: // reserved type 14
		return 0, d.abort(fmt.Errorf("%w: type %d", ErrUnknownType, typ))
	}

	return typ, nil
}

// Run decodes the stream in one linear pass, invoking the handler for every
// field and once more with (TypeEOF, nil) after the last one. Payload
// lifetime matches Decoder.Run, except vector payloads are owned copies.
func (d *StreamDecoder) Run(fn Handler) error {
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
