package sctp

import "errors"

var (
	// ErrTruncated indicates that the source buffer ended before all bytes
	// of the current field could be read.
	ErrTruncated = errors.New("sctp: truncated stream")

	// ErrOverflow indicates a LEB128 value whose encoding needs 64 or more
	// bits of shift before terminating.
	ErrOverflow = errors.New("sctp: leb128 overflow")

	// ErrCapacity indicates an encode operation that would exceed the
	// encoder's fixed buffer capacity. The encoder never grows its buffer;
	// this error is fatal to the instance.
	ErrCapacity = errors.New("sctp: encoder capacity exceeded")

	// ErrInvalidArgument indicates a caller-side precondition violation,
	// such as a short value above 15 or an out-of-range header nibble.
	ErrInvalidArgument = errors.New("sctp: invalid argument")

	// ErrUnknownType indicates the reserved type tag 14 in the stream.
	ErrUnknownType = errors.New("sctp: unknown field type")

	// ErrTypeMismatch indicates a Value accessed under the wrong variant.
	ErrTypeMismatch = errors.New("sctp: value type mismatch")

	// ErrNilIO indicates that NewStreamEncoder/NewStreamDecoder was called
	// with a nil io.Writer/io.Reader.
	ErrNilIO = errors.New("sctp: nil io.Reader/io.Writer")

	// ErrUnsupportedKind is returned by Marshal/Unmarshal/Size for struct
	// fields with no SCTP representation (maps, nested structs, channels...).
	ErrUnsupportedKind = errors.New("sctp: unsupported struct field kind")
)
