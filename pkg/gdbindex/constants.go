package gdbindex

// DWARF constants, limited to what the index builder needs to read. Values
// are from the DWARF specification (sections 7.5.1, 7.5.6 and 7.25 of
// DWARF5).
const (
	dwTagCompileUnit  uint64 = 0x11
	dwTagSkeletonUnit uint64 = 0x4a

	dwUTCompile      = 0x01
	dwUTPartial      = 0x03
	dwUTSkeleton     = 0x04
	dwUTSplitCompile = 0x05

	dwAtLowPC        uint64 = 0x11
	dwAtHighPC       uint64 = 0x12
	dwAtRanges       uint64 = 0x55
	dwAtAddrBase     uint64 = 0x73
	dwAtRnglistsBase uint64 = 0x74

	dwFormAddr          uint64 = 0x01
	dwFormData2         uint64 = 0x05
	dwFormData4         uint64 = 0x06
	dwFormData8         uint64 = 0x07
	dwFormString        uint64 = 0x08
	dwFormData1         uint64 = 0x0b
	dwFormFlag          uint64 = 0x0c
	dwFormStrp          uint64 = 0x0e
	dwFormUdata         uint64 = 0x0f
	dwFormRefAddr       uint64 = 0x10
	dwFormRef1          uint64 = 0x11
	dwFormRef2          uint64 = 0x12
	dwFormRef4          uint64 = 0x13
	dwFormRef8          uint64 = 0x14
	dwFormRefUdata      uint64 = 0x15
	dwFormSecOffset     uint64 = 0x17
	dwFormFlagPresent   uint64 = 0x19
	dwFormStrx          uint64 = 0x1a
	dwFormAddrx         uint64 = 0x1b
	dwFormLineStrp      uint64 = 0x1f
	dwFormImplicitConst uint64 = 0x21
	dwFormLoclistx      uint64 = 0x22
	dwFormRnglistx      uint64 = 0x23
	dwFormStrx1         uint64 = 0x25
	dwFormStrx2         uint64 = 0x26
	dwFormStrx3         uint64 = 0x27
	dwFormStrx4         uint64 = 0x28
	dwFormAddrx1        uint64 = 0x29
	dwFormAddrx2        uint64 = 0x2a
	dwFormAddrx3        uint64 = 0x2b
	dwFormAddrx4        uint64 = 0x2c

	// .debug_rnglists entry kinds.
	dwRLEEndOfList    = 0x00
	dwRLEBaseAddressx = 0x01
	dwRLEStartxEndx   = 0x02
	dwRLEStartxLength = 0x03
	dwRLEOffsetPair   = 0x04
	dwRLEBaseAddress  = 0x05
	dwRLEStartEnd     = 0x06
	dwRLEStartLength  = 0x07
)

// .gdb_index on-disk constants. The format is described at
// https://sourceware.org/gdb/onlinedocs/gdb/Index-Section-Format.html
const (
	indexVersion = 7

	// Fixed header: version plus five region offsets, all 32-bit.
	indexHeaderSize = 24

	cuEntrySize   = 16 // (offset u64, length u64)
	addrEntrySize = 20 // (start u64, end u64, cu index u32)
	symSlotSize   = 8  // (name offset u32, type-array offset u32)
)

// Section names of the post-relocated debug sections this builder reads.
const (
	secInfo     = ".debug_info"
	secAbbrev   = ".debug_abbrev"
	secRanges   = ".debug_ranges"
	secAddr     = ".debug_addr"
	secRnglists = ".debug_rnglists"
	secPubnames = ".debug_gnu_pubnames"
	secPubtypes = ".debug_gnu_pubtypes"
)
