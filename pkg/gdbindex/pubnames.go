package gdbindex

import (
	"context"
	"slices"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/grafana/dskit/concurrency"
)

// pubSectionHeaderSize covers the per-set header of .debug_gnu_pubnames
// and .debug_gnu_pubtypes: length (u32), version (u16), debug-info offset
// (u32) and debug-info size (u32).
const pubSectionHeaderSize = 14

// harvestNames parses each input file's pubnames/pubtypes sections and
// appends the decoded name records to the owning compunit, matching by the
// unit's offset in the merged .debug_info. Files contribute to disjoint
// compunits, so the per-file fan-out needs no locking.
func (b *Builder) harvestNames(ctx context.Context, files []InputFile, cus []*compUnit) error {
	byOffset := swiss.NewMap[uint64, int](uint32(len(cus)))
	for i, cu := range cus {
		byOffset.Put(cu.offset, i)
	}

	err := concurrency.ForEachJob(ctx, len(files), b.workers, func(_ context.Context, i int) error {
		file := files[i]
		if err := readPubSection(file, secPubnames, file.Pubnames, byOffset, cus); err != nil {
			return err
		}
		return readPubSection(file, secPubtypes, file.Pubtypes, byOffset, cus)
	})
	if err != nil {
		return err
	}

	// Uniquify per-compunit records: some producers (GCC with comdat
	// groups, notably) emit one record per group, and duplicates would
	// inflate the reference counts.
	return concurrency.ForEachJob(ctx, len(cus), b.workers, func(_ context.Context, i int) error {
		cu := cus[i]
		slices.SortFunc(cu.names, compareNameRecords)
		cu.names = slices.CompactFunc(cu.names, func(a, b nameRecord) bool {
			return a.hash == b.hash && a.kind == b.kind && a.name == b.name
		})
		return nil
	})
}

func compareNameRecords(a, b nameRecord) int {
	if a.hash != b.hash {
		if a.hash < b.hash {
			return -1
		}
		return 1
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.name, b.name)
}

// readPubSection decodes one pubnames/pubtypes section: a stream of sets,
// each a 14-byte header followed by (4-byte offset-into-unit, 1-byte kind,
// null-terminated name) tuples terminated by offset zero.
func readPubSection(file InputFile, section string, data []byte, byOffset *swiss.Map[uint64, int], cus []*compUnit) error {
	if len(data) == 0 {
		return nil
	}

	c, err := newCursor(data, 0, section)
	if err != nil {
		return err
	}

	for c.remaining() > 0 {
		if c.remaining() < pubSectionHeaderSize {
			return corruptf(section, c.pos(), "%s: truncated set header", file.Name)
		}
		setStart := c.pos()
		rawLen, err := c.u32()
		if err != nil {
			return err
		}
		setLen := rawLen + 4
		if _, err := c.u16(); err != nil { // version
			return err
		}
		infoOffset, err := c.u32()
		if err != nil {
			return err
		}
		if _, err := c.u32(); err != nil { // debug-info size
			return err
		}
		if setLen < pubSectionHeaderSize || setStart+setLen > uint64(len(data)) {
			return corruptf(section, setStart, "%s: set length %d overruns section end", file.Name, setLen)
		}

		idx, ok := byOffset.Get(file.InfoOffset + infoOffset)
		if !ok {
			return corruptf(section, setStart, "%s: debug-info offset 0x%x matches no compunit",
				file.Name, file.InfoOffset+infoOffset)
		}
		cu := cus[idx]

		setEnd := setStart + setLen
		for c.pos() < setEnd {
			offset, err := c.u32()
			if err != nil {
				return err
			}
			if offset == 0 {
				break
			}
			kind, err := c.u8()
			if err != nil {
				return err
			}
			nameStart := c.pos()
			if err := c.skipCstr(); err != nil {
				return err
			}
			name := string(data[nameStart : c.pos()-1])
			cu.names = append(cu.names, nameRecord{name: name, hash: gdbHash(name), kind: byte(kind)})
		}

		// Sets are length-prefixed; resync in case the tuple stream ended
		// early.
		if c.pos() != setEnd {
			if c, err = newCursor(data, setEnd, section); err != nil {
				return err
			}
		}
	}
	return nil
}
