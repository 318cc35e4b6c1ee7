package gdbindex

// findUnitAbbrev consumes the version-specific remainder of a unit header
// from info (positioned just past the 2-byte version field), locates the
// matching record in .debug_abbrev and returns a cursor positioned at the
// record's first (attribute, form) pair.
//
// The root record of a unit is assumed to be DW_TAG_compile_unit or
// DW_TAG_skeleton_unit; anything else means the .debug_info and
// .debug_abbrev sections don't belong together.
func findUnitAbbrev(info *cursor, abbrevSec []byte, version int, wordSize int) (*cursor, error) {
	var abbrevOffset uint64

	switch version {
	case 2, 3, 4:
		var err error
		if abbrevOffset, err = info.u32(); err != nil {
			return nil, err
		}
		addressSize, err := info.u8()
		if err != nil {
			return nil, err
		}
		if int(addressSize) != wordSize {
			return nil, unsupportedf("address size %d does not match target word size %d", addressSize, wordSize)
		}
	case 5:
		unitType, err := info.u8()
		if err != nil {
			return nil, err
		}
		addressSize, err := info.u8()
		if err != nil {
			return nil, err
		}
		if int(addressSize) != wordSize {
			return nil, unsupportedf("address size %d does not match target word size %d", addressSize, wordSize)
		}
		if abbrevOffset, err = info.u32(); err != nil {
			return nil, err
		}
		switch unitType {
		case dwUTCompile, dwUTPartial:
		case dwUTSkeleton, dwUTSplitCompile:
			// Skeleton and split units carry an 8-byte dwo_id after the
			// abbrev offset.
			if _, err := info.u64(); err != nil {
				return nil, err
			}
		default:
			return nil, unsupportedf("unknown DW_UT_* value 0x%x", unitType)
		}
	default:
		return nil, unsupportedf("unknown DWARF version %d", version)
	}

	abbrevCode, err := info.uleb()
	if err != nil {
		return nil, err
	}

	abbrev, err := newCursor(abbrevSec, abbrevOffset, secAbbrev)
	if err != nil {
		return nil, err
	}

	for {
		code, err := abbrev.uleb()
		if err != nil {
			return nil, err
		}
		if code == 0 {
			return nil, corruptf(secAbbrev, abbrevOffset, "no record for abbreviation code %d", abbrevCode)
		}

		tag, err := abbrev.uleb()
		if err != nil {
			return nil, err
		}
		if _, err := abbrev.u8(); err != nil { // has_children
			return nil, err
		}

		if code == abbrevCode {
			if tag != dwTagCompileUnit && tag != dwTagSkeletonUnit {
				return nil, corruptf(secAbbrev, abbrevOffset,
					"root record tag is 0x%x, not DW_TAG_compile_unit/DW_TAG_skeleton_unit", tag)
			}
			return abbrev, nil
		}

		// Skip an uninteresting record.
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
				if _, err := abbrev.uleb(); err != nil {
					return nil, err
				}
			}
		}
	}
}
