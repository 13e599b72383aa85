package sctp

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// Marshaler is implemented by types that append themselves to an Encoder as
// a sequence of fields.
type Marshaler interface {
	MarshalSCTP(e *Encoder) error
}

// Unmarshaler is implemented by types that consume their fields from a
// Decoder.
type Unmarshaler interface {
	UnmarshalSCTP(d *Decoder) error
}

// fieldPlan describes how one struct field maps onto the wire.
type fieldPlan struct {
	index int
	typ   Type
	name  string
}

type plan struct {
	fields []fieldPlan
}

// planCache avoids re-walking a struct type with reflection on every call.
// Plans are immutable once built, so a concurrent map makes Marshal and
// Unmarshal safe to use from multiple goroutines on distinct instances.
var planCache = xsync.NewMap[reflect.Type, *plan]()

// planFor compiles (or fetches) the field plan for a struct type.
//
// Field kinds map as: exact-width integers and floats to their fixed-width
// field type, int/uint to SLEB128/ULEB128, string and []byte to vectors.
// A `sctp:"short"` tag on a uint8 field maps it to a SHORT field, and
// `sctp:"-"` skips a field. Unexported fields are skipped. Any other kind
// fails with ErrUnsupportedKind.
func planFor(t reflect.Type) (*plan, error) {
	if p, ok := planCache.Load(t); ok {
		return p, nil
	}

	p := &plan{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("sctp")
		if tag == "-" {
			continue
		}

		var typ Type
		switch f.Type.Kind() {
		case reflect.Int8:
			typ = TypeInt8
		case reflect.Uint8:
			typ = TypeUint8
			if tag == "short" {
				typ = TypeShort
			}
		case reflect.Int16:
			typ = TypeInt16
		case reflect.Uint16:
			typ = TypeUint16
		case reflect.Int32:
			typ = TypeInt32
		case reflect.Uint32:
			typ = TypeUint32
		case reflect.Int64:
			typ = TypeInt64
		case reflect.Uint64:
			typ = TypeUint64
		case reflect.Int:
			typ = TypeSleb128
		case reflect.Uint:
			typ = TypeUleb128
		case reflect.Float32:
			typ = TypeFloat32
		case reflect.Float64:
			typ = TypeFloat64
		case reflect.String:
			typ = TypeVector
		case reflect.Slice:
			if f.Type.Elem().Kind() != reflect.Uint8 {
				return nil, fmt.Errorf("%w: field %s is %s", ErrUnsupportedKind, f.Name, f.Type)
			}
			typ = TypeVector
		default:
			return nil, fmt.Errorf("%w: field %s is %s", ErrUnsupportedKind, f.Name, f.Type)
		}
		p.fields = append(p.fields, fieldPlan{index: i, typ: typ, name: f.Name})
	}

	planCache.Store(t, p)
	return p, nil
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil pointer", ErrInvalidArgument)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a struct", ErrInvalidArgument, v)
	}
	return rv, nil
}

// Marshal appends the exported fields of the struct v (or the value a
// Marshaler produces) to e, in declaration order. See planFor for the kind
// mapping.
func Marshal(e *Encoder, v any) error {
	if m, ok := v.(Marshaler); ok {
		return m.MarshalSCTP(e)
	}
	rv, err := structValue(v)
	if err != nil {
		return err
	}
	p, err := planFor(rv.Type())
	if err != nil {
		return err
	}

	for _, f := range p.fields {
		fv := rv.Field(f.index)
		switch f.typ {
		case TypeInt8:
			e.AddInt8(int8(fv.Int()))
		case TypeUint8:
			e.AddUint8(uint8(fv.Uint()))
		case TypeInt16:
			e.AddInt16(int16(fv.Int()))
		case TypeUint16:
			e.AddUint16(uint16(fv.Uint()))
		case TypeInt32:
			e.AddInt32(int32(fv.Int()))
		case TypeUint32:
			e.AddUint32(uint32(fv.Uint()))
		case TypeInt64:
			e.AddInt64(fv.Int())
		case TypeUint64:
			e.AddUint64(fv.Uint())
		case TypeSleb128:
			e.AddSleb128(fv.Int())
		case TypeUleb128:
			e.AddUleb128(fv.Uint())
		case TypeFloat32:
			e.AddFloat32(float32(fv.Float()))
		case TypeFloat64:
			e.AddFloat64(fv.Float())
		case TypeShort:
			e.AddShort(uint8(fv.Uint()))
		case TypeVector:
			if fv.Kind() == reflect.String {
				s := fv.String()
				span, err := e.AddVector(len(s))
				if err != nil {
					return err
				}
				copy(span, s)
			} else {
				e.AddBytes(fv.Bytes())
			}
		}
	}
	return e.Err()
}

// Unmarshal fills the struct pointed to by v from the next fields of d, in
// declaration order. A field of the wrong wire type fails with
// ErrTypeMismatch. Vector payloads are copied out of the decoder's buffer.
func Unmarshal(d *Decoder, v any) error {
	if u, ok := v.(Unmarshaler); ok {
		return u.UnmarshalSCTP(d)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil struct pointer, got %T", ErrInvalidArgument, v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a struct pointer", ErrInvalidArgument, v)
	}
	p, err := planFor(rv.Type())
	if err != nil {
		return err
	}

	for _, f := range p.fields {
		typ, err := d.Next()
		if err != nil {
			return err
		}
		if typ != f.typ {
			return fmt.Errorf("%w: field %s expects %s, stream has %s", ErrTypeMismatch, f.name, f.typ, typ)
		}

		fv := rv.Field(f.index)
		val := d.Field().Value
		switch f.typ {
		case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
			fv.SetInt(int64(val.bits))
		case TypeUint8, TypeUint16, TypeUint32, TypeUint64, TypeShort:
			fv.SetUint(val.bits)
		case TypeSleb128:
			n, _ := val.Sleb128()
			fv.SetInt(n)
		case TypeUleb128:
			n, _ := val.Uleb128()
			fv.SetUint(n)
		case TypeFloat32:
			n, _ := val.Float32()
			fv.SetFloat(float64(n))
		case TypeFloat64:
			n, _ := val.Float64()
			fv.SetFloat(n)
		case TypeVector:
			raw, _ := val.Vector()
			if fv.Kind() == reflect.String {
				fv.SetString(string(raw))
			} else {
				fv.SetBytes(append([]byte(nil), raw...))
			}
		}
	}
	return nil
}

// Size returns the exact encoded size of v's fields in bytes, excluding any
// EOF sentinel, so callers can allocate an Encoder of matching capacity.
func Size(v any) (int, error) {
	rv, err := structValue(v)
	if err != nil {
		return 0, err
	}
	p, err := planFor(rv.Type())
	if err != nil {
		return 0, err
	}

	total := 0
	for _, f := range p.fields {
		fv := rv.Field(f.index)
		switch f.typ {
		case TypeShort:
			total++
		case TypeSleb128:
			total += 1 + Sleb128Len(fv.Int())
		case TypeUleb128:
			total += 1 + Uleb128Len(fv.Uint())
		case TypeVector:
			n := fv.Len()
			total += 1 + n
			if n >= vectorLargeFlag {
				total += Uleb128Len(uint(n))
			}
		default:
			total += 1 + fixedWidth[f.typ]
		}
	}
	return total, nil
}
