package gdbindex

import "encoding/binary"

// enc builds little-endian test blobs: debug sections, abbrev tables,
// pubnames sets.
type enc struct {
	b []byte
}

func (e *enc) u8(v byte) *enc {
	e.b = append(e.b, v)
	return e
}

func (e *enc) u16(v uint16) *enc {
	e.b = binary.LittleEndian.AppendUint16(e.b, v)
	return e
}

func (e *enc) u32(v uint32) *enc {
	e.b = binary.LittleEndian.AppendUint32(e.b, v)
	return e
}

func (e *enc) u64(v uint64) *enc {
	e.b = binary.LittleEndian.AppendUint64(e.b, v)
	return e
}

func (e *enc) uleb(v uint64) *enc {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		e.b = append(e.b, c)
		if v == 0 {
			return e
		}
	}
}

func (e *enc) cstr(s string) *enc {
	e.b = append(e.b, s...)
	e.b = append(e.b, 0)
	return e
}

func (e *enc) raw(b []byte) *enc {
	e.b = append(e.b, b...)
	return e
}

// abbrevAttr is one (attribute, form) pair of a synthetic abbrev record.
type abbrevAttr struct {
	name uint64
	form uint64
}

// buildAbbrev encodes one abbreviation record with the given code plus the
// table terminator.
func buildAbbrev(code uint64, tag uint64, attrs []abbrevAttr) []byte {
	e := &enc{}
	e.uleb(code).uleb(tag).u8(1) // has_children
	for _, a := range attrs {
		e.uleb(a.name).uleb(a.form)
	}
	e.uleb(0).uleb(0)
	e.uleb(0) // end of table
	return e.b
}

// buildUnitV4 encodes a DWARF4 compilation unit whose root record holds
// the given raw attribute values (already form-encoded by the caller).
func buildUnitV4(abbrevOffset uint32, addressSize byte, attrValues []byte) []byte {
	body := &enc{}
	body.u16(4)              // version
	body.u32(abbrevOffset)   // abbrev table offset
	body.u8(addressSize)     // address size
	body.uleb(1)             // abbreviation code
	body.raw(attrValues)     // root record values

	e := &enc{}
	e.u32(uint32(len(body.b))) // unit length, excluding this field
	e.raw(body.b)
	return e.b
}

// buildUnitV5 encodes a DWARF5 compilation unit of the given unit type.
func buildUnitV5(unitType byte, abbrevOffset uint32, addressSize byte, attrValues []byte) []byte {
	body := &enc{}
	body.u16(5)            // version
	body.u8(unitType)      // unit type
	body.u8(addressSize)   // address size
	body.u32(abbrevOffset) // abbrev table offset
	if unitType == dwUTSkeleton || unitType == dwUTSplitCompile {
		body.u64(0) // dwo_id
	}
	body.uleb(1)
	body.raw(attrValues)

	e := &enc{}
	e.u32(uint32(len(body.b)))
	e.raw(body.b)
	return e.b
}

// pubEntry is one (unit offset, kind, name) tuple of a pubnames set.
type pubEntry struct {
	offset uint32
	kind   byte
	name   string
}

// buildPubSection encodes one pubnames/pubtypes set covering the unit at
// infoOffset, including the zero-offset terminator.
func buildPubSection(infoOffset uint32, infoSize uint32, entries []pubEntry) []byte {
	body := &enc{}
	body.u16(2) // format version
	body.u32(infoOffset)
	body.u32(infoSize)
	for _, ent := range entries {
		body.u32(ent.offset)
		body.u8(ent.kind)
		body.cstr(ent.name)
	}
	body.u32(0) // terminator

	e := &enc{}
	e.u32(uint32(len(body.b))) // set length, excluding this field
	e.raw(body.b)
	return e.b
}
