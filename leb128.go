package sctp

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Little-Endian Base-128 integer codec: 7 payload bits per byte, least
// significant group first, bit 7 set on every byte except the last. The
// signed form is two's-complement with sign extension from bit 6 of the
// terminating byte. Both directions use the minimal encoding: no value is
// ever written with superfluous continuation groups.

const (
	// MaxUleb128Len is the maximum encoded length of a uint64.
	MaxUleb128Len = 10
	// MaxSleb128Len is the maximum encoded length of an int64.
	MaxSleb128Len = 10
)

// Uleb128Len returns the encoded length of v in bytes. Always at least 1.
func Uleb128Len[T constraints.Unsigned](v T) int {
	n := 1
	x := uint64(v)
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// Sleb128Len returns the encoded length of v in bytes. Always at least 1.
func Sleb128Len[T constraints.Signed](v T) int {
	n := 0
	x := int64(v)
	for {
		b := byte(x & 0x7F)
		x >>= 7
		n++
		if (x == 0 && b&0x40 == 0) || (x == -1 && b&0x40 != 0) {
			return n
		}
	}
}

// PutUleb128 encodes v into buf and returns the number of bytes written.
// It panics if buf is too small; buf must hold at least Uleb128Len(v) bytes.
func PutUleb128(buf []byte, v uint64) int {
	i := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[i] = b
		i++
		if v == 0 {
			return i
		}
	}
}

// PutSleb128 encodes v into buf and returns the number of bytes written.
// It panics if buf is too small; buf must hold at least Sleb128Len(v) bytes.
func PutSleb128(buf []byte, v int64) int {
	i := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		buf[i] = b
		i++
		if done {
			return i
		}
	}
}

// Uleb128 decodes an unsigned value from the start of data. It returns the
// value and the number of bytes consumed. It fails with ErrTruncated if data
// ends before a terminating byte, and with ErrOverflow if the accumulated
// shift reaches 64 bits before termination.
func Uleb128(data []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
	}
}

// Sleb128 decodes a signed value from the start of data. It returns the
// value and the number of bytes consumed. Failure conditions match Uleb128.
func Sleb128(data []byte) (int64, int, error) {
	var v int64
	var shift uint
	for i := 0; ; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		v |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -(int64(1) << shift)
			}
			return v, i + 1, nil
		}
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
	}
}

// readUleb128 is the io.ByteReader form of Uleb128, used by the stream
// decoder. A clean EOF mid-value is reported as ErrTruncated.
func readUleb128(r io.ByteReader) (uint64, int, error) {
	var v uint64
	var shift uint
	for n := 1; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, ErrTruncated
		}
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, n, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
	}
}

// readSleb128 is the io.ByteReader form of Sleb128.
func readSleb128(r io.ByteReader) (int64, int, error) {
	var v int64
	var shift uint
	for n := 1; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, ErrTruncated
		}
		v |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -(int64(1) << shift)
			}
			return v, n, nil
		}
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
	}
}
