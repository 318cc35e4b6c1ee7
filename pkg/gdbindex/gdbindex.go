// Package gdbindex builds the .gdb_index section for an already-linked
// binary from its relocated debug info sections.
//
// .gdb_index holds two maps: from function/variable/type names to
// compunits, and from instruction address ranges to compunits. gdb uses
// them to find the owning compilation unit without re-parsing the full
// debug info stream. The name-to-compunit mapping is 1:n (two objects may
// define the same type), the range mapping is 1:1.
//
// Names come from the per-object .debug_gnu_pubnames and
// .debug_gnu_pubtypes sections (emitted under -ggnu-pubnames); address
// ranges are parsed out of the merged .debug_info, with non-contiguous
// ranges read from .debug_ranges (DWARF 2-4) or
// .debug_rnglists/.debug_addr (DWARF 5).
//
// The format is documented at
// https://sourceware.org/gdb/onlinedocs/gdb/Index-Section-Format.html
package gdbindex

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DebugSections are the post-relocated debug sections of the output
// image, as flat byte buffers. Missing sections are nil. The builder
// never mutates them.
type DebugSections struct {
	Info     []byte
	Abbrev   []byte
	Ranges   []byte
	Addr     []byte
	RngLists []byte
}

// InputFile is one input object's contribution to the index: its optional
// exported-name sections (already decompressed) and the byte offset where
// its .debug_info contribution starts in the merged section.
type InputFile struct {
	Name       string
	Pubnames   []byte
	Pubtypes   []byte
	InfoOffset uint64
}

// Builder builds .gdb_index sections. A Builder is stateless between
// builds and safe to reuse.
type Builder struct {
	logger   log.Logger
	metrics  *metrics
	workers  int
	wordSize int
}

func NewBuilder(opts ...Option) *Builder {
	o := options{
		logger:   log.NewNopLogger(),
		workers:  runtime.GOMAXPROCS(0),
		wordSize: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{
		logger:   o.logger,
		metrics:  newMetrics(o.registerer),
		workers:  o.workers,
		wordSize: o.wordSize,
	}
}

// Build produces the finished index section. The returned buffer is owned
// by the caller, ready to be spliced into the output image.
//
// A missing .debug_info section is not an error: there is nothing to
// index and Build returns (nil, nil). Any structural violation of the
// debug info aborts the whole build; there is no partial index, because a
// wrong index is worse for the debugger than none.
func (b *Builder) Build(ctx context.Context, secs DebugSections, files []InputFile) ([]byte, error) {
	if len(secs.Info) == 0 {
		level.Debug(b.logger).Log("msg", "no .debug_info section, skipping index build")
		return nil, nil
	}

	buf, err := b.build(ctx, secs, files)
	if err != nil {
		b.metrics.buildErrors.WithLabelValues(errorClass(err)).Inc()
		return nil, err
	}
	return buf, nil
}

func (b *Builder) build(ctx context.Context, secs DebugSections, files []InputFile) ([]byte, error) {
	start := time.Now()

	cus, err := b.extractCompunits(ctx, secs)
	if err != nil {
		return nil, fmt.Errorf("extract compunits: %w", err)
	}
	b.observePhase(phaseExtract, start)

	t := time.Now()
	if err := b.harvestNames(ctx, files, cus); err != nil {
		return nil, fmt.Errorf("harvest names: %w", err)
	}
	b.observePhase(phaseHarvest, t)

	t = time.Now()
	entries, err := b.dedupSymbols(ctx, cus)
	if err != nil {
		return nil, fmt.Errorf("deduplicate symbols: %w", err)
	}
	b.metrics.distinctNames.Observe(float64(len(entries)))
	b.observePhase(phaseDedup, t)

	t = time.Now()
	buf, err := b.writeIndex(ctx, cus, entries)
	if err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	b.metrics.indexSizeBytes.Observe(float64(len(buf)))
	b.observePhase(phaseWrite, t)

	level.Debug(b.logger).Log(
		"msg", "built gdb index",
		"compunits", len(cus),
		"distinct_names", len(entries),
		"bytes", len(buf),
		"duration", time.Since(start),
	)
	return buf, nil
}

func (b *Builder) observePhase(phase string, start time.Time) {
	b.metrics.phaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
