// Package sctp implements the Simple Compact Transaction Protocol, a dense
// binary serialization format for sequences of typed scalar and vector
// fields.
//
// Every field on the wire starts with one header byte holding a 4-bit type
// tag in the low nibble and a 4-bit metadata value in the high nibble. The
// payload that follows depends on the type: fixed-width little-endian
// scalars, LEB128 variable-length integers, a 4-bit inline "short" integer
// carried entirely by the header, or a length-prefixed byte vector. A stream
// is terminated by an EOF field, or implicitly by running out of bytes.
package sctp

// Type identifies the kind of a field. It occupies the low nibble of the
// header byte.
type Type uint8

const (
	TypeInt8    Type = 0
	TypeUint8   Type = 1
	TypeInt16   Type = 2
	TypeUint16  Type = 3
	TypeInt32   Type = 4
	TypeUint32  Type = 5
	TypeInt64   Type = 6
	TypeUint64  Type = 7
	TypeUleb128 Type = 8
	TypeSleb128 Type = 9
	TypeFloat32 Type = 10
	TypeFloat64 Type = 11
	TypeShort   Type = 12
	TypeVector  Type = 13
	// Type value 14 is reserved. Decoding it fails with ErrUnknownType.
	TypeEOF Type = 15
)

const (
	typeMask  = 0x0F
	metaShift = 4

	// vectorLargeFlag in a vector header's metadata signals that the true
	// length follows as a ULEB128 integer.
	vectorLargeFlag = 0x0F

	// MaxShort is the largest value representable by a SHORT field.
	MaxShort = 15
)

var typeNames = [16]string{
	"INT8", "UINT8", "INT16", "UINT16",
	"INT32", "UINT32", "INT64", "UINT64",
	"ULEB128", "SLEB128", "FLOAT32", "FLOAT64",
	"SHORT", "VECTOR", "RESERVED", "EOF",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "INVALID"
}

// fixedWidth maps a type to its payload width in bytes, or -1 for types
// without a fixed-width payload. This single table replaces a per-type
// family of encode/decode routines.
var fixedWidth = [16]int{
	TypeInt8:    1,
	TypeUint8:   1,
	TypeInt16:   2,
	TypeUint16:  2,
	TypeInt32:   4,
	TypeUint32:  4,
	TypeInt64:   8,
	TypeUint64:  8,
	TypeUleb128: -1,
	TypeSleb128: -1,
	TypeFloat32: 4,
	TypeFloat64: 8,
	TypeShort:   -1,
	TypeVector:  -1,
	14:          -1,
	TypeEOF:     -1,
}

// PackHeader combines a type tag and a metadata nibble into a header byte.
// Both arguments must fit in 4 bits; violating that returns
// ErrInvalidArgument.
func PackHeader(typ Type, meta uint8) (byte, error) {
	if typ > 15 || meta > 15 {
		return 0, ErrInvalidArgument
	}
	return byte(typ) | meta<<metaShift, nil
}

// UnpackHeader splits a header byte into its type tag and metadata nibble.
func UnpackHeader(b byte) (Type, uint8) {
	return Type(b & typeMask), b >> metaShift
}

// Field is one decoded (type, value, size) triple. Size is the payload size
// in bytes as delivered to the caller: the scalar width for fixed-width
// types, 8 for the materialized LEB128 value, 1 for a SHORT (the field is
// self-contained in its header byte), the byte length for a vector, and 0
// for EOF.
type Field struct {
	Type  Type
	Value Value
	Size  int
}
