package sctp

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUleb128RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 0x7F, 0x80, 300, 624485,
		0x3FFF, 0x4000, 1 << 32, 1234567890123,
		math.MaxUint64 - 1, math.MaxUint64,
	}
	buf := make([]byte, MaxUleb128Len)
	for _, v := range values {
		n := PutUleb128(buf, v)
		require.Equal(t, Uleb128Len(v), n, "length mismatch for %d", v)

		got, read, err := Uleb128(buf[:n])
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, n, read, "decode must consume the whole encoding of %d", v)
	}
}

func TestSleb128RoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 63, 64, -64, -65, 127, 128,
		-123456, 1234567890123, -9876543210987,
		math.MaxInt64, math.MinInt64,
	}
	buf := make([]byte, MaxSleb128Len)
	for _, v := range values {
		n := PutSleb128(buf, v)
		require.Equal(t, Sleb128Len(v), n, "length mismatch for %d", v)

		got, read, err := Sleb128(buf[:n])
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, n, read)
	}
}

// Known encodings from the LEB128 literature; also pins minimality, since
// any superfluous continuation group would change the byte count.
func TestLeb128KnownBytes(t *testing.T) {
	buf := make([]byte, MaxUleb128Len)

	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{20, []byte{0x14}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xE5, 0x8E, 0x26}},
		{math.MaxUint64, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}
	for _, c := range cases {
		n := PutUleb128(buf, c.v)
		assert.Equal(t, c.want, buf[:n], "uleb128(%d)", c.v)
	}

	signed := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x7F}},
		{63, []byte{0x3F}},
		{64, []byte{0xC0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xBF, 0x7F}},
		{-123456, []byte{0xC0, 0xBB, 0x78}},
		{math.MinInt64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7F}},
	}
	for _, c := range signed {
		n := PutSleb128(buf, c.v)
		assert.Equal(t, c.want, buf[:n], "sleb128(%d)", c.v)
	}
}

func TestLeb128Errors(t *testing.T) {
	t.Run("TruncatedUnsigned", func(t *testing.T) {
		_, _, err := Uleb128(nil)
		assert.ErrorIs(t, err, ErrTruncated)

		_, _, err = Uleb128([]byte{0x80, 0x80})
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("TruncatedSigned", func(t *testing.T) {
		_, _, err := Sleb128([]byte{0xFF})
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("Overflow", func(t *testing.T) {
		// Ten continuation bytes push the shift to 70 bits.
		_, _, err := Uleb128(bytes.Repeat([]byte{0x80}, 11))
		assert.ErrorIs(t, err, ErrOverflow)

		_, _, err = Sleb128(bytes.Repeat([]byte{0xFF}, 11))
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("TenByteTerminatedIsAccepted", func(t *testing.T) {
		// The canonical MaxUint64 encoding is exactly ten bytes.
		v, n, err := Uleb128([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), v)
		assert.Equal(t, 10, n)
	})
}

func TestLeb128ByteReader(t *testing.T) {
	buf := make([]byte, MaxUleb128Len)
	n := PutUleb128(buf, 1234567890123)
	v, read, err := readUleb128(bytes.NewReader(buf[:n]))
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567890123), v)
	assert.Equal(t, n, read)

	n = PutSleb128(buf, -9876543210987)
	s, read, err := readSleb128(bytes.NewReader(buf[:n]))
	require.NoError(t, err)
	assert.Equal(t, int64(-9876543210987), s)
	assert.Equal(t, n, read)

	_, _, err = readUleb128(bytes.NewReader([]byte{0x80}))
	assert.ErrorIs(t, err, ErrTruncated)
}
