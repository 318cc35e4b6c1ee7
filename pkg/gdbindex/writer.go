package gdbindex

import (
	"context"
	"encoding/binary"

	"github.com/grafana/dskit/concurrency"
)

// sectionHeader is the fixed .gdb_index header: format version and the
// byte offsets of the four regions that follow. The CU-types region is
// empty (type units are not indexed), so its offset equals the CU-list
// end and the address area begins right there.
type sectionHeader struct {
	version      uint32
	cuListOff    uint32
	cuTypesOff   uint32
	rangesOff    uint32
	symtabOff    uint32
	constPoolOff uint32
}

// writeIndex lays out and serializes the finished section.
//
// All variable-length offsets are computed in two full passes over the
// sorted entry list (type arrays first, then name strings) before a single
// byte is written. That ordering is a correctness requirement: the
// type-array and name regions are populated by independent passes that
// must both see final offsets.
func (b *Builder) writeIndex(ctx context.Context, cus []*compUnit, entries []*symbolEntry) ([]byte, error) {
	hdr := sectionHeader{version: indexVersion}
	hdr.cuListOff = indexHeaderSize
	hdr.cuTypesOff = hdr.cuListOff + uint32(len(cus)*cuEntrySize)
	hdr.rangesOff = hdr.cuTypesOff

	hdr.symtabOff = hdr.rangesOff
	for _, cu := range cus {
		hdr.symtabOff += uint32(len(cu.ranges) * addrEntrySize)
	}

	htSize := bitCeil(uint64(len(entries)) * 5 / 4)
	hdr.constPoolOff = hdr.symtabOff + uint32(htSize*symSlotSize)

	// Pass one: size the per-name type arrays.
	offset := uint32(0)
	for _, ent := range entries {
		ent.typeOffset = offset
		offset += ent.count.Load()*4 + 4
	}
	// Pass two: size the name strings, appended after all type arrays.
	for _, ent := range entries {
		ent.nameOffset = offset
		offset += uint32(len(ent.name)) + 1
	}

	buf := make([]byte, uint64(hdr.constPoolOff)+uint64(offset))
	le := binary.LittleEndian

	// Header.
	le.PutUint32(buf[0:], hdr.version)
	le.PutUint32(buf[4:], hdr.cuListOff)
	le.PutUint32(buf[8:], hdr.cuTypesOff)
	le.PutUint32(buf[12:], hdr.rangesOff)
	le.PutUint32(buf[16:], hdr.symtabOff)
	le.PutUint32(buf[20:], hdr.constPoolOff)

	// CU list, in extraction order. The address area's compunit indices
	// refer to positions in this list.
	p := uint64(hdr.cuListOff)
	for _, cu := range cus {
		le.PutUint64(buf[p:], cu.offset)
		le.PutUint64(buf[p+8:], cu.length)
		p += cuEntrySize
	}

	// Address areas.
	p = uint64(hdr.rangesOff)
	for i, cu := range cus {
		for _, r := range cu.ranges {
			le.PutUint64(buf[p:], r.start)
			le.PutUint64(buf[p+8:], r.end)
			le.PutUint32(buf[p+16:], uint32(i))
			p += addrEntrySize
		}
	}

	// Symbol hash table. The step is forced odd and the size is a power
	// of two, so the probe sequence visits every slot. Entries are placed
	// in sorted order, which makes slot assignment deterministic.
	mask := uint32(htSize - 1)
	for _, ent := range entries {
		j := ent.hash & mask
		step := (ent.hash & mask) | 1
		for {
			slot := uint64(hdr.symtabOff) + uint64(j)*symSlotSize
			if le.Uint32(buf[slot:]) == 0 && le.Uint32(buf[slot+4:]) == 0 {
				le.PutUint32(buf[slot:], ent.nameOffset)
				le.PutUint32(buf[slot+4:], ent.typeOffset)
				break
			}
			j = (j + step) & mask
		}
	}

	// Constant pool, type arrays: each record appends (kind << 24 | cu
	// index) to its entry's array, bumping the leading count. Multiple
	// compunits append to the same array, so this pass is sequential.
	pool := uint64(hdr.constPoolOff)
	for i, cu := range cus {
		for j, nt := range cu.names {
			arr := pool + uint64(cu.entries[j].typeOffset)
			n := le.Uint32(buf[arr:]) + 1
			le.PutUint32(buf[arr:], n)
			le.PutUint32(buf[arr+uint64(n)*4:], uint32(nt.kind)<<24|uint32(i))
		}
	}

	// Constant pool, name strings. Entries own disjoint byte ranges, so
	// the writes fan out freely; the terminating NUL is already there.
	err := concurrency.ForEachJob(ctx, len(entries), b.workers, func(_ context.Context, i int) error {
		copy(buf[pool+uint64(entries[i].nameOffset):], entries[i].name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}
