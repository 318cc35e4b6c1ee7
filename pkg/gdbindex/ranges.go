package gdbindex

// addrRange is one half-open [start, end) interval of code addresses.
type addrRange struct {
	start uint64
	end   uint64
}

// attrValue is a captured attribute: the form tells us how to interpret the
// value later (direct address vs. index into .debug_addr vs. length).
type attrValue struct {
	form  uint64
	value uint64
}

// readAddressRanges returns the address ranges described by the compunit at
// the given offset in the merged .debug_info section.
//
// If the unit has a DW_AT_ranges attribute, the ranges come from
// .debug_ranges (DWARF 2-4) or .debug_rnglists/.debug_addr (DWARF 5).
// Otherwise a single contiguous range is derived from DW_AT_low_pc and
// DW_AT_high_pc, possibly via .debug_addr for index forms.
func readAddressRanges(secs DebugSections, offset uint64, wordSize int) ([]addrRange, error) {
	info, err := newCursor(secs.Info, offset+4, secInfo)
	if err != nil {
		return nil, err
	}
	version, err := info.u16()
	if err != nil {
		return nil, err
	}

	abbrev, err := findUnitAbbrev(info, secs.Abbrev, int(version), wordSize)
	if err != nil {
		return nil, err
	}

	var lowPC, highPC, ranges attrValue
	addrBase := attrValue{}
	var rnglistsBase uint64
	haveRnglistsBase := false

	// Walk the root record's attributes, decoding every value to keep the
	// info cursor in sync, and capture the ones we care about.
	for {
		name, err := abbrev.uleb()
		if err != nil {
			return nil, err
		}
		form, err := abbrev.uleb()
		if err != nil {
			return nil, err
		}
		if name == 0 && form == 0 {
			break
		}
		if form == dwFormImplicitConst {
			// The value lives in the abbreviation table, not in
			// .debug_info. None of the captured attributes use it.
			if _, err := abbrev.uleb(); err != nil {
				return nil, err
			}
			continue
		}

		val, err := readScalar(info, form, wordSize)
		if err != nil {
			return nil, err
		}

		switch name {
		case dwAtLowPC:
			lowPC = attrValue{form, val}
		case dwAtHighPC:
			highPC = attrValue{form, val}
		case dwAtRnglistsBase:
			rnglistsBase = val
			haveRnglistsBase = true
		case dwAtAddrBase:
			addrBase = attrValue{form, val}
		case dwAtRanges:
			ranges = attrValue{form, val}
		}
	}

	resolve := addrResolver{
		addr:     secs.Addr,
		base:     addrBase.value,
		haveBase: addrBase.form != 0,
		wordSize: wordSize,
	}

	// Non-contiguous address ranges.
	if ranges.form != 0 {
		if version <= 4 {
			return readLegacyRanges(secs.Ranges, ranges.value, lowPC.value, wordSize)
		}

		switch ranges.form {
		case dwFormSecOffset:
			return readRnglist(secs.RngLists, ranges.value, resolve, lowPC.value)
		case dwFormRnglistx:
			if !haveRnglistsBase {
				return nil, corruptf(secInfo, offset, "missing DW_AT_rnglists_base")
			}
			return readRnglistTable(secs.RngLists, rnglistsBase, resolve, lowPC.value)
		default:
			return nil, unsupportedf("unhandled form for DW_AT_ranges: 0x%x", ranges.form)
		}
	}

	// A single contiguous range.
	if lowPC.form != 0 && highPC.form != 0 {
		lo, err := resolve.address(lowPC, "DW_AT_low_pc")
		if err != nil {
			return nil, err
		}

		switch highPC.form {
		case dwFormAddr, dwFormAddrx, dwFormAddrx1, dwFormAddrx2, dwFormAddrx3, dwFormAddrx4:
			hi, err := resolve.address(highPC, "DW_AT_high_pc")
			if err != nil {
				return nil, err
			}
			return []addrRange{{lo, hi}}, nil
		case dwFormUdata, dwFormData1, dwFormData2, dwFormData4, dwFormData8:
			return []addrRange{{lo, lo + highPC.value}}, nil
		default:
			return nil, unsupportedf("unhandled form for DW_AT_high_pc: 0x%x", highPC.form)
		}
	}

	return nil, nil
}

// addrResolver turns direct or .debug_addr-indexed attribute values into
// absolute addresses.
type addrResolver struct {
	addr     []byte
	base     uint64
	haveBase bool
	wordSize int
}

func (r addrResolver) address(a attrValue, attr string) (uint64, error) {
	switch a.form {
	case dwFormAddr:
		return a.value, nil
	case dwFormAddrx, dwFormAddrx1, dwFormAddrx2, dwFormAddrx3, dwFormAddrx4:
		return r.at(a.value)
	default:
		return 0, unsupportedf("unhandled form for %s: 0x%x", attr, a.form)
	}
}

// at reads entry idx of the unit's .debug_addr table.
func (r addrResolver) at(idx uint64) (uint64, error) {
	if !r.haveBase {
		return 0, corruptf(secInfo, 0, "address index %d without DW_AT_addr_base", idx)
	}
	c, err := newCursor(r.addr, r.base+idx*uint64(r.wordSize), secAddr)
	if err != nil {
		return 0, err
	}
	return c.word(r.wordSize)
}

// readLegacyRanges reads a DWARF 2-4 .debug_ranges list: (begin, end) word
// pairs terminated by a zero pair. A pair whose first word is all ones
// resets the running base address to the second word.
func readLegacyRanges(rangesSec []byte, offset, base uint64, wordSize int) ([]addrRange, error) {
	c, err := newCursor(rangesSec, offset, secRanges)
	if err != nil {
		return nil, err
	}

	allOnes := ^uint64(0)
	if wordSize == 4 {
		allOnes = 0xffffffff
	}

	var out []addrRange
	for {
		first, err := c.word(wordSize)
		if err != nil {
			return nil, err
		}
		second, err := c.word(wordSize)
		if err != nil {
			return nil, err
		}
		switch {
		case first == 0 && second == 0:
			return out, nil
		case first == allOnes:
			base = second
		default:
			out = append(out, addrRange{first + base, second + base})
		}
	}
}

// readRnglist decodes one DWARF5 range list, a byte stream of typed
// entries, starting at the given offset into .debug_rnglists.
func readRnglist(rnglistsSec []byte, offset uint64, resolve addrResolver, base uint64) ([]addrRange, error) {
	var out []addrRange
	return appendRnglist(out, rnglistsSec, offset, resolve, base)
}

func appendRnglist(out []addrRange, rnglistsSec []byte, offset uint64, resolve addrResolver, base uint64) ([]addrRange, error) {
	c, err := newCursor(rnglistsSec, offset, secRnglists)
	if err != nil {
		return nil, err
	}

	for {
		kind, err := c.u8()
		if err != nil {
			return nil, err
		}
		switch kind {
		case dwRLEEndOfList:
			return out, nil
		case dwRLEBaseAddressx:
			idx, err := c.uleb()
			if err != nil {
				return nil, err
			}
			if base, err = resolve.at(idx); err != nil {
				return nil, err
			}
		case dwRLEStartxEndx:
			i1, err := c.uleb()
			if err != nil {
				return nil, err
			}
			i2, err := c.uleb()
			if err != nil {
				return nil, err
			}
			start, err := resolve.at(i1)
			if err != nil {
				return nil, err
			}
			end, err := resolve.at(i2)
			if err != nil {
				return nil, err
			}
			out = append(out, addrRange{start, end})
		case dwRLEStartxLength:
			i1, err := c.uleb()
			if err != nil {
				return nil, err
			}
			length, err := c.uleb()
			if err != nil {
				return nil, err
			}
			start, err := resolve.at(i1)
			if err != nil {
				return nil, err
			}
			out = append(out, addrRange{start, start + length})
		case dwRLEOffsetPair:
			o1, err := c.uleb()
			if err != nil {
				return nil, err
			}
			o2, err := c.uleb()
			if err != nil {
				return nil, err
			}
			out = append(out, addrRange{base + o1, base + o2})
		case dwRLEBaseAddress:
			if base, err = c.word(resolve.wordSize); err != nil {
				return nil, err
			}
		case dwRLEStartEnd:
			start, err := c.word(resolve.wordSize)
			if err != nil {
				return nil, err
			}
			end, err := c.word(resolve.wordSize)
			if err != nil {
				return nil, err
			}
			out = append(out, addrRange{start, end})
		case dwRLEStartLength:
			start, err := c.word(resolve.wordSize)
			if err != nil {
				return nil, err
			}
			length, err := c.uleb()
			if err != nil {
				return nil, err
			}
			out = append(out, addrRange{start, start + length})
		default:
			return nil, unsupportedf("unknown DW_RLE_* entry kind 0x%x", kind)
		}
	}
}

// readRnglistTable decodes every range list referenced by the per-unit
// offset table that precedes rnglistsBase: a 4-byte offset count sits
// immediately before the base, the offsets themselves follow it.
func readRnglistTable(rnglistsSec []byte, rnglistsBase uint64, resolve addrResolver, base uint64) ([]addrRange, error) {
	if rnglistsBase < 4 {
		return nil, corruptf(secRnglists, rnglistsBase, "DW_AT_rnglists_base before offset count")
	}
	countCur, err := newCursor(rnglistsSec, rnglistsBase-4, secRnglists)
	if err != nil {
		return nil, err
	}
	numOffsets, err := countCur.u32()
	if err != nil {
		return nil, err
	}

	offsets, err := newCursor(rnglistsSec, rnglistsBase, secRnglists)
	if err != nil {
		return nil, err
	}

	var out []addrRange
	for i := uint64(0); i < numOffsets; i++ {
		off, err := offsets.u32()
		if err != nil {
			return nil, err
		}
		if out, err = appendRnglist(out, rnglistsSec, rnglistsBase+off, resolve, base); err != nil {
			return nil, err
		}
	}
	return out, nil
}
