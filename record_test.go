package sctp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferRecord struct {
	Version uint8 `sctp:"short"`
	Kind    int8
	Nonce   uint64
	Amount  int
	Fee     uint
	Rate    float64
	Memo    string
	Payload []byte

	internal int    // unexported, skipped
	Skipped  uint32 `sctp:"-"`
}

func TestRecordRoundTrip(t *testing.T) {
	in := transferRecord{
		Version:  3,
		Kind:     -7,
		Nonce:    9000000000000000000,
		Amount:   -123456,
		Fee:      624485,
		Rate:     0.0375,
		Memo:     "invoice 42",
		Payload:  []byte{0xDE, 0xAD, 0xBE, 0xEF},
		internal: 99,
		Skipped:  7,
	}

	size, err := Size(in)
	require.NoError(t, err)

	e := NewEncoder(size)
	require.NoError(t, Marshal(e, in))
	data, err := e.Bytes()
	require.NoError(t, err)
	assert.Equal(t, size, len(data), "Size must predict the encoded length exactly")

	var out transferRecord
	d := NewDecoderBuffer(data)
	require.NoError(t, Unmarshal(d, &out))

	assert.Equal(t, in.Version, out.Version)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.Nonce, out.Nonce)
	assert.Equal(t, in.Amount, out.Amount)
	assert.Equal(t, in.Fee, out.Fee)
	assert.Equal(t, in.Rate, out.Rate)
	assert.Equal(t, in.Memo, out.Memo)
	assert.Equal(t, in.Payload, out.Payload)
	assert.Zero(t, out.internal)
	assert.Zero(t, out.Skipped)

	// The buffer is fully consumed.
	typ, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeEOF, typ)
}

func TestRecordVectorIsCopied(t *testing.T) {
	e := NewEncoder(64)
	require.NoError(t, Marshal(e, struct{ Data []byte }{Data: []byte("abc")}))
	data, err := e.Bytes()
	require.NoError(t, err)

	var out struct{ Data []byte }
	require.NoError(t, Unmarshal(NewDecoderBuffer(data), &out))

	data[1] = 'X'
	assert.Equal(t, []byte("abc"), out.Data, "unmarshalled vectors must not alias the decode buffer")
}

func TestRecordTypeMismatch(t *testing.T) {
	e := NewEncoder(16)
	e.AddUint32(7)
	data, err := e.Bytes()
	require.NoError(t, err)

	var out struct{ V uint64 }
	err = Unmarshal(NewDecoderBuffer(data), &out)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestRecordUnsupportedKind(t *testing.T) {
	e := NewEncoder(16)
	err := Marshal(e, struct{ M map[string]int }{})
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	_, err = Size(struct{ C chan int }{})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestRecordArgumentErrors(t *testing.T) {
	e := NewEncoder(16)
	assert.ErrorIs(t, Marshal(e, 42), ErrInvalidArgument)

	var v transferRecord
	assert.ErrorIs(t, Unmarshal(NewDecoderBuffer(nil), v), ErrInvalidArgument)
	var p *transferRecord
	assert.ErrorIs(t, Unmarshal(NewDecoderBuffer(nil), p), ErrInvalidArgument)
}

func TestRecordShortBounds(t *testing.T) {
	e := NewEncoder(16)
	err := Marshal(e, struct {
		V uint8 `sctp:"short"`
	}{V: 16})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

type selfCodec struct {
	n uint64
}

func (c selfCodec) MarshalSCTP(e *Encoder) error {
	e.AddUleb128(c.n)
	return e.Err()
}

func (c *selfCodec) UnmarshalSCTP(d *Decoder) error {
	typ, err := d.Next()
	if err != nil {
		return err
	}
	if typ != TypeUleb128 {
		return ErrTypeMismatch
	}
	c.n, err = d.Field().Value.Uleb128()
	return err
}

func TestRecordInterfaceDispatch(t *testing.T) {
	e := NewEncoder(16)
	require.NoError(t, Marshal(e, selfCodec{n: 300}))
	data, err := e.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(TypeUleb128), 0xAC, 0x02}, data)

	var out selfCodec
	require.NoError(t, Unmarshal(NewDecoderBuffer(data), &out))
	assert.Equal(t, uint64(300), out.n)
}

// Verify the plan cache is shared and safe under concurrent use.
func TestRecordPlanCacheConcurrency(t *testing.T) {
	in := transferRecord{Memo: "m", Payload: []byte{1}}
	want, err := Size(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Size(transferRecord{Memo: "m", Payload: []byte{1}})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
