package gdbindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLegacyRangesBaseReset(t *testing.T) {
	// (0x10, 0x20), then a base reset to 0x500, then (0x0, 0x10) relative
	// to the new base, then the terminating zero pair.
	sec := (&enc{}).
		u64(0x10).u64(0x20).
		u64(^uint64(0)).u64(0x500).
		u64(0x0).u64(0x10).
		u64(0).u64(0).b

	got, err := readLegacyRanges(sec, 0, 0, 8)
	require.NoError(t, err)
	require.Equal(t, []addrRange{{0x10, 0x20}, {0x500, 0x510}}, got)
}

func TestLegacyRangesLowPCBase(t *testing.T) {
	sec := (&enc{}).u64(0x10).u64(0x20).u64(0).u64(0).b
	got, err := readLegacyRanges(sec, 0, 0x1000, 8)
	require.NoError(t, err)
	require.Equal(t, []addrRange{{0x1010, 0x1020}}, got)
}

func TestLegacyRangesWord32(t *testing.T) {
	sec := (&enc{}).
		u32(0xffffffff).u32(0x2000).
		u32(0x4).u32(0x8).
		u32(0).u32(0).b
	got, err := readLegacyRanges(sec, 0, 0, 4)
	require.NoError(t, err)
	require.Equal(t, []addrRange{{0x2004, 0x2008}}, got)
}

func TestLegacyRangesTruncated(t *testing.T) {
	sec := (&enc{}).u64(0x10).u64(0x20).b // no terminator
	_, err := readLegacyRanges(sec, 0, 0, 8)
	require.Error(t, err)
	require.True(t, IsCorruption(err))
}

func TestRnglistEntries(t *testing.T) {
	// .debug_addr with a 16-byte header (the unit's addr_base points past
	// it) and three address entries.
	addrSec := (&enc{}).
		u64(0). // header padding
		u64(0).
		u64(0x7000).u64(0x7040).u64(0x9000).b
	resolve := addrResolver{addr: addrSec, base: 16, haveBase: true, wordSize: 8}

	list := (&enc{}).
		u8(dwRLEBaseAddress).u64(0x1000).
		u8(dwRLEOffsetPair).uleb(0x10).uleb(0x20).
		u8(dwRLEStartEnd).u64(0x3000).u64(0x3100).
		u8(dwRLEStartLength).u64(0x4000).uleb(0x80).
		u8(dwRLEStartxEndx).uleb(0).uleb(1).
		u8(dwRLEStartxLength).uleb(2).uleb(0x10).
		u8(dwRLEBaseAddressx).uleb(2).
		u8(dwRLEOffsetPair).uleb(0x1).uleb(0x2).
		u8(dwRLEEndOfList).b

	got, err := readRnglist(list, 0, resolve, 0)
	require.NoError(t, err)
	require.Equal(t, []addrRange{
		{0x1010, 0x1020},
		{0x3000, 0x3100},
		{0x4000, 0x4080},
		{0x7000, 0x7040},
		{0x9000, 0x9010},
		{0x9001, 0x9002},
	}, got)
}

func TestRnglistUnknownKind(t *testing.T) {
	list := (&enc{}).u8(0x4f).b
	_, err := readRnglist(list, 0, addrResolver{wordSize: 8}, 0)
	require.Error(t, err)
	require.True(t, IsUnsupportedFormat(err))
}

func TestRnglistTable(t *testing.T) {
	// Layout: [count u32][offset u32 x2][list A][list B], with
	// rnglists_base pointing at the offset array.
	listA := (&enc{}).
		u8(dwRLEStartEnd).u64(0x100).u64(0x200).
		u8(dwRLEEndOfList).b
	listB := (&enc{}).
		u8(dwRLEStartEnd).u64(0x300).u64(0x400).
		u8(dwRLEEndOfList).b

	base := uint64(4)
	offA := uint32(8) // relative to base: past the two offsets
	offB := offA + uint32(len(listA))
	sec := (&enc{}).u32(2).u32(offA).u32(offB).raw(listA).raw(listB).b

	got, err := readRnglistTable(sec, base, addrResolver{wordSize: 8}, 0)
	require.NoError(t, err)
	require.Equal(t, []addrRange{{0x100, 0x200}, {0x300, 0x400}}, got)
}

func TestRnglistTableBaseTooSmall(t *testing.T) {
	_, err := readRnglistTable([]byte{0, 0}, 2, addrResolver{wordSize: 8}, 0)
	require.Error(t, err)
	require.True(t, IsCorruption(err))
}

func TestAddrResolverMissingBase(t *testing.T) {
	r := addrResolver{wordSize: 8}
	_, err := r.at(3)
	require.Error(t, err)
	require.True(t, IsCorruption(err))
}
