// Package elfutil loads named debug sections from ELF images as flat byte
// buffers, transparently decompressing SHF_COMPRESSED sections. It is the
// host-side collaborator of the index builder: the builder itself only
// ever sees plain bytes.
package elfutil

import (
	"bytes"
	"debug/elf"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Image is an opened ELF file with raw section access. debug/elf's own
// Section.Data decompresses zlib but not zstd, so compressed sections are
// read raw from the underlying file and decompressed here.
type Image struct {
	f *elf.File
	r io.ReaderAt
	c io.Closer
}

func Open(path string) (*Image, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	f, err := elf.NewFile(osf)
	if err != nil {
		osf.Close()
		return nil, errors.Wrapf(err, "parse ELF %s", path)
	}
	return &Image{f: f, r: osf, c: osf}, nil
}

func (im *Image) Close() error {
	return im.c.Close()
}

// WordSize returns the target address size in bytes.
func (im *Image) WordSize() int {
	if im.f.Class == elf.ELFCLASS32 {
		return 4
	}
	return 8
}

// Section returns the contents of the named section, or nil if the image
// has no such section. SHF_COMPRESSED sections are decompressed.
func (im *Image) Section(name string) ([]byte, error) {
	sec := im.f.Section(name)
	if sec == nil {
		return nil, nil
	}
	if sec.Type == elf.SHT_NOBITS {
		return nil, nil
	}

	raw := make([]byte, sec.FileSize)
	if _, err := im.r.ReadAt(raw, int64(sec.Offset)); err != nil {
		return nil, errors.Wrapf(err, "read section %s", name)
	}

	if sec.Flags&elf.SHF_COMPRESSED == 0 {
		return raw, nil
	}
	return im.decompress(name, raw)
}

func (im *Image) decompress(name string, raw []byte) ([]byte, error) {
	var (
		chdrSize int
		ctype    elf.CompressionType
		size     uint64
	)
	bo := im.f.ByteOrder
	if im.f.Class == elf.ELFCLASS32 {
		chdrSize = 12
		if len(raw) < chdrSize {
			return nil, errors.Errorf("section %s: truncated compression header", name)
		}
		ctype = elf.CompressionType(bo.Uint32(raw[0:]))
		size = uint64(bo.Uint32(raw[4:]))
	} else {
		chdrSize = 24
		if len(raw) < chdrSize {
			return nil, errors.Errorf("section %s: truncated compression header", name)
		}
		ctype = elf.CompressionType(bo.Uint32(raw[0:]))
		size = bo.Uint64(raw[8:])
	}

	out, err := inflate(ctype, raw[chdrSize:], size)
	return out, errors.Wrapf(err, "decompress section %s", name)
}

func inflate(ctype elf.CompressionType, data []byte, size uint64) ([]byte, error) {
	switch ctype {
	case elf.COMPRESS_ZLIB:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		out := make([]byte, size)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, err
		}
		return out, nil
	case elf.COMPRESS_ZSTD:
		d, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return d.DecodeAll(data, make([]byte, 0, size))
	default:
		return nil, errors.Errorf("unsupported compression type 0x%x", uint32(ctype))
	}
}
