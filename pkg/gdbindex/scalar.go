package gdbindex

// readScalar reads one attribute value of the given DWARF form from the
// cursor, consuming exactly the encoded width. Presence-only flags and
// inline strings yield zero; everything the range reconstructor cares
// about comes back as an unsigned 64-bit value.
func readScalar(c *cursor, form uint64, wordSize int) (uint64, error) {
	switch form {
	case dwFormFlagPresent:
		return 0, nil
	case dwFormData1, dwFormFlag, dwFormStrx1, dwFormAddrx1, dwFormRef1:
		return c.u8()
	case dwFormData2, dwFormStrx2, dwFormAddrx2, dwFormRef2:
		return c.u16()
	case dwFormStrx3, dwFormAddrx3:
		return c.u24()
	case dwFormData4, dwFormStrp, dwFormSecOffset, dwFormLineStrp,
		dwFormStrx4, dwFormAddrx4, dwFormRef4:
		return c.u32()
	case dwFormData8, dwFormRef8:
		return c.u64()
	case dwFormAddr, dwFormRefAddr:
		return c.word(wordSize)
	case dwFormStrx, dwFormAddrx, dwFormUdata, dwFormRefUdata,
		dwFormLoclistx, dwFormRnglistx:
		return c.uleb()
	case dwFormString:
		return 0, c.skipCstr()
	default:
		return 0, unsupportedf("unhandled debug info form 0x%x", form)
	}
}
