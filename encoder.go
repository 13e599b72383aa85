package sctp

import (
	"fmt"
	"math"
)

// putLE writes the low len(b) bytes of bits into b, least significant first.
func putLE(b []byte, bits uint64) {
	for i := range b {
		b[i] = byte(bits >> (8 * i))
	}
}

// getLE reads len(b) bytes from b as a little-endian unsigned integer.
func getLE(b []byte) uint64 {
	var bits uint64
	for i, c := range b {
		bits |= uint64(c) << (8 * i)
	}
	return bits
}

// Encoder appends SCTP fields to a fixed-capacity buffer. The buffer is
// allocated once at construction and never grows: a write that would exceed
// capacity latches ErrCapacity and every later operation becomes a no-op,
// so a sequence of Add calls can be checked once at the end via Err or
// Bytes.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	buf []byte
	pos int
	err error // first error encountered. Subsequent writes become no-ops.
}

// NewEncoder creates an Encoder with a fixed capacity of n bytes.
func NewEncoder(n int) *Encoder {
	return &Encoder{buf: make([]byte, n)}
}

// NewEncoderBuffer creates an Encoder that writes into the caller-provided
// slice. The full capacity of p is used; the slice is never reallocated.
func NewEncoderBuffer(p []byte) *Encoder {
	return &Encoder{buf: p[:cap(p)]}
}

// setError records the first non-nil error.
func (e *Encoder) setError(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

// ensure checks that n more bytes fit in the buffer.
func (e *Encoder) ensure(n int) bool {
	if e.err != nil {
		return false
	}
	if e.pos+n > len(e.buf) {
		e.setError(fmt.Errorf("%w: need %d bytes, %d available", ErrCapacity, n, len(e.buf)-e.pos))
		return false
	}
	return true
}

func (e *Encoder) writeHeader(typ Type, meta uint8) {
	e.buf[e.pos] = byte(typ) | meta<<metaShift
	e.pos++
}

// addFixed writes a header with metadata 0 followed by the low width bytes
// of bits in little-endian order. One routine covers all ten fixed-width
// types.
func (e *Encoder) addFixed(typ Type, bits uint64, width int) {
	if !e.ensure(1 + width) {
		return
	}
	e.writeHeader(typ, 0)
	putLE(e.buf[e.pos:e.pos+width], bits)
	e.pos += width
}

func (e *Encoder) AddInt8(v int8)     { e.addFixed(TypeInt8, uint64(uint8(v)), 1) }
func (e *Encoder) AddUint8(v uint8)   { e.addFixed(TypeUint8, uint64(v), 1) }
func (e *Encoder) AddInt16(v int16)   { e.addFixed(TypeInt16, uint64(uint16(v)), 2) }
func (e *Encoder) AddUint16(v uint16) { e.addFixed(TypeUint16, uint64(v), 2) }
func (e *Encoder) AddInt32(v int32)   { e.addFixed(TypeInt32, uint64(uint32(v)), 4) }
func (e *Encoder) AddUint32(v uint32) { e.addFixed(TypeUint32, uint64(v), 4) }
func (e *Encoder) AddInt64(v int64)   { e.addFixed(TypeInt64, uint64(v), 8) }
func (e *Encoder) AddUint64(v uint64) { e.addFixed(TypeUint64, v, 8) }

func (e *Encoder) AddFloat32(v float32) {
	e.addFixed(TypeFloat32, uint64(math.Float32bits(v)), 4)
}

func (e *Encoder) AddFloat64(v float64) {
	e.addFixed(TypeFloat64, math.Float64bits(v), 8)
}

// AddUleb128 appends an unsigned variable-length integer field.
func (e *Encoder) AddUleb128(v uint64) {
	if !e.ensure(1 + Uleb128Len(v)) {
		return
	}
	e.writeHeader(TypeUleb128, 0)
	e.pos += PutUleb128(e.buf[e.pos:], v)
}

// AddSleb128 appends a signed variable-length integer field.
func (e *Encoder) AddSleb128(v int64) {
	if !e.ensure(1 + Sleb128Len(v)) {
		return
	}
	e.writeHeader(TypeSleb128, 0)
	e.pos += PutSleb128(e.buf[e.pos:], v)
}

// AddShort appends a small integer carried entirely by the header byte.
// v must be at most MaxShort.
func (e *Encoder) AddShort(v uint8) {
	if v > MaxShort {
		e.setError(fmt.Errorf("%w: short value %d exceeds %d", ErrInvalidArgument, v, MaxShort))
		return
	}
	if !e.ensure(1) {
		return
	}
	e.writeHeader(TypeShort, v)
}

// AddVector appends a vector field of the given length and returns a
// writable span into the output buffer for its payload. The caller must fill
// all length bytes before the next encode operation; the span is only
// meaningful until then. Lengths below 15 are carried in the header's
// metadata nibble, larger ones as a ULEB128 integer after the header.
func (e *Encoder) AddVector(length int) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if length < 0 {
		e.setError(fmt.Errorf("%w: negative vector length", ErrInvalidArgument))
		return nil, e.err
	}
	if length < vectorLargeFlag {
		if !e.ensure(1 + length) {
			return nil, e.err
		}
		e.writeHeader(TypeVector, uint8(length))
	} else {
		if !e.ensure(1 + Uleb128Len(uint64(length)) + length) {
			return nil, e.err
		}
		e.writeHeader(TypeVector, vectorLargeFlag)
		e.pos += PutUleb128(e.buf[e.pos:], uint64(length))
	}
	span := e.buf[e.pos : e.pos+length]
	e.pos += length
	return span, nil
}

// AddBytes appends a vector field holding a copy of data.
func (e *Encoder) AddBytes(data []byte) {
	span, err := e.AddVector(len(data))
	if err != nil {
		return
	}
	copy(span, data)
}

// AddRaw appends unframed bytes with no header. The caller is responsible
// for the bytes forming valid fields; this exists for splicing pre-encoded
// streams.
func (e *Encoder) AddRaw(data []byte) {
	if !e.ensure(len(data)) {
		return
	}
	e.pos += copy(e.buf[e.pos:], data)
}

// AddEOF appends the end-of-stream sentinel field.
func (e *Encoder) AddEOF() {
	if !e.ensure(1) {
		return
	}
	e.writeHeader(TypeEOF, 0)
}

// Err returns the first error encountered, if any.
func (e *Encoder) Err() error { return e.err }

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int { return e.pos }

// Cap returns the fixed capacity of the output buffer.
func (e *Encoder) Cap() int { return len(e.buf) }

// Available returns the number of bytes left before the capacity is reached.
func (e *Encoder) Available() int { return len(e.buf) - e.pos }

// Bytes returns the encoded stream, or the first error encountered during
// encoding. The slice is a view of the encoder's buffer and is invalidated
// by Reset.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf[:e.pos], nil
}

// Reset discards all encoded data and any latched error, reusing the buffer
// for a new, unrelated stream.
func (e *Encoder) Reset() {
	e.pos = 0
	e.err = nil
}
