package gdbindex

import (
	"bytes"
	"encoding/binary"
)

// cursor is a bounds-checked little-endian reader over a debug section.
// Every read consumes exactly the encoded width and fails explicitly on
// out-of-bounds access instead of reading past the buffer.
type cursor struct {
	buf []byte
	off int
	sec string // section name, for error attribution
}

func newCursor(buf []byte, off uint64, sec string) (*cursor, error) {
	if off > uint64(len(buf)) {
		return nil, corruptf(sec, off, "offset beyond section end (size %d)", len(buf))
	}
	return &cursor{buf: buf, off: int(off), sec: sec}, nil
}

func (c *cursor) pos() uint64 { return uint64(c.off) }

func (c *cursor) remaining() int { return len(c.buf) - c.off }

func (c *cursor) take(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, corruptf(c.sec, c.pos(), "truncated: need %d bytes, have %d", n, c.remaining())
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u8() (uint64, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return uint64(b[0]), nil
}

func (c *cursor) u16() (uint64, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return uint64(binary.LittleEndian.Uint16(b)), nil
}

func (c *cursor) u24() (uint64, error) {
	b, err := c.take(3)
	if err != nil {
		return 0, err
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16, nil
}

func (c *cursor) u32() (uint64, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return uint64(binary.LittleEndian.Uint32(b)), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// word reads one target-word-sized value (4 or 8 bytes).
func (c *cursor) word(wordSize int) (uint64, error) {
	if wordSize == 4 {
		return c.u32()
	}
	return c.u64()
}

// uleb reads one unsigned LEB128-encoded value.
func (c *cursor) uleb() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := c.u8()
		if err != nil {
			return 0, err
		}
		if shift == 63 && b > 1 {
			return 0, corruptf(c.sec, c.pos(), "ULEB128 value overflows 64 bits")
		}
		v |= (b & 0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// skipCstr consumes a null-terminated string, including the terminator.
func (c *cursor) skipCstr() error {
	i := bytes.IndexByte(c.buf[c.off:], 0)
	if i < 0 {
		return corruptf(c.sec, c.pos(), "unterminated string")
	}
	c.off += i + 1
	return nil
}
