package gdbindex

import "encoding/binary"

// IndexInfo is a parsed view of a finished index section, used by the
// inspect command and by round-trip tests.
type IndexInfo struct {
	Version   uint32
	CompUnits []CompUnitInfo
	Addresses []AddressInfo
	Slots     int
	UsedSlots int
}

// CompUnitInfo is one CU-list record.
type CompUnitInfo struct {
	Offset uint64
	Length uint64
}

// AddressInfo is one address-area record.
type AddressInfo struct {
	Start uint64
	End   uint64
	CU    uint32
}

// Inspect parses the header and fixed-size regions of an index buffer.
func Inspect(buf []byte) (*IndexInfo, error) {
	if len(buf) < indexHeaderSize {
		return nil, corruptf("gdb_index", 0, "buffer smaller than header")
	}
	le := binary.LittleEndian

	info := &IndexInfo{Version: le.Uint32(buf[0:])}
	if info.Version != indexVersion {
		return nil, unsupportedf("index version %d, want %d", info.Version, indexVersion)
	}

	cuListOff := uint64(le.Uint32(buf[4:]))
	cuTypesOff := uint64(le.Uint32(buf[8:]))
	rangesOff := uint64(le.Uint32(buf[12:]))
	symtabOff := uint64(le.Uint32(buf[16:]))
	constPoolOff := uint64(le.Uint32(buf[20:]))

	ordered := cuListOff <= cuTypesOff && cuTypesOff <= rangesOff &&
		rangesOff <= symtabOff && symtabOff <= constPoolOff &&
		constPoolOff <= uint64(len(buf))
	if !ordered {
		return nil, corruptf("gdb_index", 0, "region offsets out of order")
	}

	for p := cuListOff; p+cuEntrySize <= cuTypesOff; p += cuEntrySize {
		info.CompUnits = append(info.CompUnits, CompUnitInfo{
			Offset: le.Uint64(buf[p:]),
			Length: le.Uint64(buf[p+8:]),
		})
	}

	for p := rangesOff; p+addrEntrySize <= symtabOff; p += addrEntrySize {
		info.Addresses = append(info.Addresses, AddressInfo{
			Start: le.Uint64(buf[p:]),
			End:   le.Uint64(buf[p+8:]),
			CU:    le.Uint32(buf[p+16:]),
		})
	}

	info.Slots = int((constPoolOff - symtabOff) / symSlotSize)
	for p := symtabOff; p+symSlotSize <= constPoolOff; p += symSlotSize {
		if le.Uint32(buf[p:]) != 0 || le.Uint32(buf[p+4:]) != 0 {
			info.UsedSlots++
		}
	}
	return info, nil
}

// LookupName probes the symbol hash table of a finished index buffer for
// name, returning true if a slot for it exists. This mirrors the
// debugger's probe sequence and exists for verification.
func LookupName(buf []byte, name string) bool {
	if len(buf) < indexHeaderSize {
		return false
	}
	le := binary.LittleEndian
	symtabOff := uint64(le.Uint32(buf[16:]))
	constPoolOff := uint64(le.Uint32(buf[20:]))
	slots := (constPoolOff - symtabOff) / symSlotSize
	if slots == 0 || slots&(slots-1) != 0 || constPoolOff > uint64(len(buf)) {
		return false
	}

	hash := gdbHash(name)
	mask := uint32(slots - 1)
	j := hash & mask
	step := (hash & mask) | 1

	for probes := uint64(0); probes < slots; probes++ {
		slot := symtabOff + uint64(j)*symSlotSize
		nameOff := le.Uint32(buf[slot:])
		typeOff := le.Uint32(buf[slot+4:])
		if nameOff == 0 && typeOff == 0 {
			return false
		}
		if stored, ok := cstrAt(buf, constPoolOff+uint64(nameOff)); ok && stored == name {
			return true
		}
		j = (j + step) & mask
	}
	return false
}

func cstrAt(buf []byte, off uint64) (string, bool) {
	if off >= uint64(len(buf)) {
		return "", false
	}
	end := off
	for end < uint64(len(buf)) && buf[end] != 0 {
		end++
	}
	if end == uint64(len(buf)) {
		return "", false
	}
	return string(buf[off:end]), true
}
