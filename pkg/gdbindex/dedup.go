package gdbindex

import (
	"context"
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/dskit/concurrency"
	"go.uber.org/atomic"

	"github.com/grafana/gdbindex/pkg/util/hyperloglog"
)

// hllPrecision trades sketch size for accuracy; 14 gives ~0.8% standard
// error, plenty for sizing a hash table with 50% headroom.
const hllPrecision = 14

// symbolEntry is one distinct name across the whole link. count is the
// number of compunits that define the name and is final before offsets are
// computed; the two offsets are filled by the layout pass.
type symbolEntry struct {
	name  string
	hash  uint32
	count atomic.Uint32

	typeOffset uint32
	nameOffset uint32
}

// symbolTable is a fixed-capacity, lock-free open-addressing map keyed by
// (hash, name). It never grows: capacity comes from the cardinality
// estimate with 50% headroom, so running out of slots means the estimate
// was catastrophically wrong.
type symbolTable struct {
	slots []atomic.Pointer[symbolEntry]
}

func newSymbolTable(capacity uint64) *symbolTable {
	if capacity < 16 {
		capacity = 16
	}
	return &symbolTable{slots: make([]atomic.Pointer[symbolEntry], bitCeil(capacity))}
}

// insert returns the canonical entry for (name, hash), creating it if this
// is the first writer. Safe for concurrent use; the first CAS to claim an
// empty slot wins and everyone else observes that entry.
func (t *symbolTable) insert(name string, hash uint32) (*symbolEntry, error) {
	mask := uint32(len(t.slots) - 1)
	i := hash & mask
	for probes := 0; probes < len(t.slots); probes++ {
		slot := &t.slots[i]
		e := slot.Load()
		if e == nil {
			fresh := &symbolEntry{name: name, hash: hash}
			if slot.CompareAndSwap(nil, fresh) {
				return fresh, nil
			}
			e = slot.Load()
		}
		if e.hash == hash && e.name == name {
			return e, nil
		}
		i = (i + 1) & mask
	}
	return nil, fmt.Errorf("symbol table full after %d probes (cardinality estimate too low)", len(t.slots))
}

// hashedName adapts a precomputed xxhash value to the estimator's Hash64
// interface.
type hashedName uint64

func (h hashedName) Sum64() uint64 { return uint64(h) }

// estimateDistinct sketches the number of distinct names across all
// compunits. Per-unit sketches are built in parallel and merged
// associatively, so no exact two-pass count is needed.
func (b *Builder) estimateDistinct(ctx context.Context, cus []*compUnit) (uint64, error) {
	global, err := hyperloglog.NewPlus(hllPrecision)
	if err != nil {
		return 0, err
	}

	err = concurrency.ForEachJob(ctx, len(cus), b.workers, func(_ context.Context, i int) error {
		local, err := hyperloglog.NewPlus(hllPrecision)
		if err != nil {
			return err
		}
		for _, nt := range cus[i].names {
			local.Add(hashedName(xxhash.Sum64String(nt.name)))
		}
		return global.Merge(local)
	})
	if err != nil {
		return 0, err
	}
	return global.Count(), nil
}

// dedupSymbols merges every compunit's name records into one table of
// distinct names, counting per name how many compunits define it. Each
// compunit keeps a reference to the entry behind each of its records for
// the later type-array pass. The result is sorted by (hash, name) so the
// output is reproducible no matter how the concurrent inserts interleaved.
func (b *Builder) dedupSymbols(ctx context.Context, cus []*compUnit) ([]*symbolEntry, error) {
	estimate, err := b.estimateDistinct(ctx, cus)
	if err != nil {
		return nil, err
	}

	table := newSymbolTable(estimate * 3 / 2)

	err = concurrency.ForEachJob(ctx, len(cus), b.workers, func(_ context.Context, i int) error {
		cu := cus[i]
		cu.entries = make([]*symbolEntry, 0, len(cu.names))
		for _, nt := range cu.names {
			ent, err := table.insert(nt.name, nt.hash)
			if err != nil {
				return err
			}
			ent.count.Inc()
			cu.entries = append(cu.entries, ent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*symbolEntry, 0, estimate)
	for i := range table.slots {
		if e := table.slots[i].Load(); e != nil {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b *symbolEntry) int {
		if a.hash != b.hash {
			if a.hash < b.hash {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	})
	return entries, nil
}

// bitCeil rounds up to the next power of two. bitCeil(0) == 1, matching
// the semantics the on-disk table sizing relies on.
func bitCeil(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}
