package gdbindex

import (
	"context"
	"encoding/binary"

	"github.com/grafana/dskit/concurrency"
)

// compUnit is one compilation unit of the merged .debug_info section. Its
// identity is the offset, which is unique and serves as the join key for
// the public-name harvester. Ranges and name records are filled by later
// phases; nothing mutates a compUnit once the write phase begins.
type compUnit struct {
	offset uint64
	length uint64
	ranges []addrRange
	names  []nameRecord

	// entries[i] is the deduplicated symbol that names[i] resolved to.
	entries []*symbolEntry
}

// nameRecord is one exported name harvested from a pubnames/pubtypes
// section. kind distinguishes functions, variables and types as encoded by
// the producer.
type nameRecord struct {
	name string
	hash uint32
	kind byte
}

// extractCompunits splits the merged .debug_info section into consecutive
// units by their 4-byte length prefixes, then fills each unit's address
// ranges in parallel.
func (b *Builder) extractCompunits(ctx context.Context, secs DebugSections) ([]*compUnit, error) {
	info := secs.Info
	var cus []*compUnit

	for off := uint64(0); off < uint64(len(info)); {
		if uint64(len(info))-off < 4 {
			return nil, corruptf(secInfo, off, "truncated unit length prefix")
		}
		raw := binary.LittleEndian.Uint32(info[off:])
		if raw == 0xffffffff {
			return nil, unsupportedf("DWARF64 is not supported")
		}
		length := uint64(raw) + 4
		if off+length > uint64(len(info)) {
			return nil, corruptf(secInfo, off, "unit length %d overruns section end", length)
		}
		cus = append(cus, &compUnit{offset: off, length: length})
		off += length
	}

	err := concurrency.ForEachJob(ctx, len(cus), b.workers, func(_ context.Context, i int) error {
		ranges, err := readAddressRanges(secs, cus[i].offset, b.wordSize)
		if err != nil {
			return err
		}
		// Some compilers emit placeholder ranges starting at zero, and
		// empty ranges are useless to the debugger. Drop both.
		kept := ranges[:0]
		for _, r := range ranges {
			if r.start != 0 && r.start != r.end {
				kept = append(kept, r)
			}
		}
		cus[i].ranges = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cus, nil
}
