package sctp

import "math"

// Value is a tagged variant over the 14 value-carrying field kinds. Each
// accessor checks the tag and returns ErrTypeMismatch when the Value holds a
// different kind, so a wrong-variant read is always a detected failure.
//
// Numeric kinds are stored as raw 64-bit little-endian bits; vectors are a
// borrowed view into the decoder's source buffer.
type Value struct {
	typ  Type
	bits uint64
	vec  []byte
}

func numValue(typ Type, bits uint64) Value { return Value{typ: typ, bits: bits} }
func vecValue(data []byte) Value           { return Value{typ: TypeVector, vec: data} }

// Type reports which variant the Value holds. A zero Value reports TypeInt8;
// decoders only ever produce values for fields actually present on the wire.
func (v Value) Type() Type { return v.typ }

func (v Value) check(typ Type) error {
	if v.typ != typ {
		return ErrTypeMismatch
	}
	return nil
}

func (v Value) Int8() (int8, error)   { return int8(v.bits), v.check(TypeInt8) }
func (v Value) Uint8() (uint8, error) { return uint8(v.bits), v.check(TypeUint8) }

func (v Value) Int16() (int16, error)   { return int16(v.bits), v.check(TypeInt16) }
func (v Value) Uint16() (uint16, error) { return uint16(v.bits), v.check(TypeUint16) }

func (v Value) Int32() (int32, error)   { return int32(v.bits), v.check(TypeInt32) }
func (v Value) Uint32() (uint32, error) { return uint32(v.bits), v.check(TypeUint32) }

func (v Value) Int64() (int64, error)   { return int64(v.bits), v.check(TypeInt64) }
func (v Value) Uint64() (uint64, error) { return v.bits, v.check(TypeUint64) }

func (v Value) Uleb128() (uint64, error) { return v.bits, v.check(TypeUleb128) }
func (v Value) Sleb128() (int64, error)  { return int64(v.bits), v.check(TypeSleb128) }

func (v Value) Float32() (float32, error) {
	return math.Float32frombits(uint32(v.bits)), v.check(TypeFloat32)
}

func (v Value) Float64() (float64, error) {
	return math.Float64frombits(v.bits), v.check(TypeFloat64)
}

func (v Value) Short() (uint8, error) { return uint8(v.bits), v.check(TypeShort) }

// Vector returns the field's payload as a view into the source buffer. The
// slice stays valid for the lifetime of that buffer; callers that outlive it
// must copy.
func (v Value) Vector() ([]byte, error) { return v.vec, v.check(TypeVector) }
