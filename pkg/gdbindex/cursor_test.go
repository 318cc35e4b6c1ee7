package gdbindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorFixedWidth(t *testing.T) {
	blob := (&enc{}).u8(0xab).u16(0x1234).u32(0xdeadbeef).u64(0x0102030405060708).b
	c, err := newCursor(blob, 0, "test")
	require.NoError(t, err)

	v, err := c.u8()
	require.NoError(t, err)
	require.Equal(t, uint64(0xab), v)

	v, err = c.u16()
	require.NoError(t, err)
	require.Equal(t, uint64(0x1234), v)

	v, err = c.u32()
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeef), v)

	v, err = c.u64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v)
	require.Equal(t, 0, c.remaining())
}

func TestCursorULEB(t *testing.T) {
	tests := []struct {
		blob []byte
		want uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, ^uint64(0)},
	}
	for _, tc := range tests {
		c, err := newCursor(tc.blob, 0, "test")
		require.NoError(t, err)
		v, err := c.uleb()
		require.NoError(t, err)
		require.Equal(t, tc.want, v)
		require.Equal(t, 0, c.remaining())
	}
}

func TestCursorBounds(t *testing.T) {
	c, err := newCursor([]byte{0x01, 0x02}, 0, ".debug_info")
	require.NoError(t, err)
	_, err = c.u32()
	require.Error(t, err)
	require.True(t, IsCorruption(err))

	_, err = newCursor([]byte{0x01}, 2, ".debug_info")
	require.Error(t, err)
	require.True(t, IsCorruption(err))
}

func TestCursorUnterminatedString(t *testing.T) {
	c, err := newCursor([]byte("abc"), 0, ".debug_info")
	require.NoError(t, err)
	require.Error(t, c.skipCstr())

	c, err = newCursor([]byte("abc\x00def"), 0, ".debug_info")
	require.NoError(t, err)
	require.NoError(t, c.skipCstr())
	require.Equal(t, uint64(4), c.pos())
}

func TestReadScalarUnknownForm(t *testing.T) {
	c, err := newCursor([]byte{0x01}, 0, ".debug_info")
	require.NoError(t, err)
	_, err = readScalar(c, 0x7f, 8)
	require.Error(t, err)
	require.True(t, IsUnsupportedFormat(err))
}
