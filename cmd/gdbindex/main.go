// Command gdbindex builds a .gdb_index section for an already-linked ELF
// binary, the same way `gdb-add-index` does: the pubnames offsets in a
// linked binary are already final, so the whole binary is treated as a
// single debug-info contribution starting at offset zero.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/grafana/gdbindex/pkg/elfutil"
	"github.com/grafana/gdbindex/pkg/gdbindex"
)

var cfg struct {
	verbose bool
	create  struct {
		binary  string
		output  string
		workers int
	}
	inspect struct {
		index string
	}
}

var logger = log.NewLogfmtLogger(os.Stderr)

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Build and inspect .gdb_index debug-index sections.").UsageWriter(os.Stdout)
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').Default("false").BoolVar(&cfg.verbose)

	createCmd := app.Command("create", "Build a .gdb_index section for a linked ELF binary.")
	createCmd.Arg("binary", "Path to the linked ELF binary.").Required().ExistingFileVar(&cfg.create.binary)
	createCmd.Flag("output", "Where to write the index section. Defaults to <binary>.gdb-index.").Short('o').StringVar(&cfg.create.output)
	createCmd.Flag("workers", "Worker count for the parallel phases. Defaults to GOMAXPROCS.").Default("0").IntVar(&cfg.create.workers)

	inspectCmd := app.Command("inspect", "Print a summary of a .gdb_index section.")
	inspectCmd.Arg("index", "Path to an index section file.").Required().ExistingFileVar(&cfg.inspect.index)

	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if !cfg.verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	var err error
	switch parsedCmd {
	case createCmd.FullCommand():
		err = create(context.Background())
	case inspectCmd.FullCommand():
		err = inspect()
	}
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func create(ctx context.Context) error {
	im, err := elfutil.Open(cfg.create.binary)
	if err != nil {
		return err
	}
	defer im.Close()

	var secs gdbindex.DebugSections
	for _, s := range []struct {
		name string
		dst  *[]byte
	}{
		{".debug_info", &secs.Info},
		{".debug_abbrev", &secs.Abbrev},
		{".debug_ranges", &secs.Ranges},
		{".debug_addr", &secs.Addr},
		{".debug_rnglists", &secs.RngLists},
	} {
		if *s.dst, err = im.Section(s.name); err != nil {
			return err
		}
	}

	pubnames, err := im.Section(".debug_gnu_pubnames")
	if err != nil {
		return err
	}
	pubtypes, err := im.Section(".debug_gnu_pubtypes")
	if err != nil {
		return err
	}

	builder := gdbindex.NewBuilder(
		gdbindex.WithLogger(logger),
		gdbindex.WithConcurrency(cfg.create.workers),
		gdbindex.WithWordSize(im.WordSize()),
	)
	buf, err := builder.Build(ctx, secs, []gdbindex.InputFile{{
		Name:     cfg.create.binary,
		Pubnames: pubnames,
		Pubtypes: pubtypes,
	}})
	if err != nil {
		return err
	}
	if buf == nil {
		level.Info(logger).Log("msg", "no .debug_info section, nothing to index", "binary", cfg.create.binary)
		return nil
	}

	output := cfg.create.output
	if output == "" {
		output = cfg.create.binary + ".gdb-index"
	}
	if err := os.WriteFile(output, buf, 0o644); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "wrote index", "output", output, "bytes", len(buf))
	return nil
}

func inspect() error {
	buf, err := os.ReadFile(cfg.inspect.index)
	if err != nil {
		return err
	}
	info, err := gdbindex.Inspect(buf)
	if err != nil {
		return err
	}

	fmt.Printf("version:        %d\n", info.Version)
	fmt.Printf("compunits:      %d\n", len(info.CompUnits))
	fmt.Printf("address areas:  %d\n", len(info.Addresses))
	fmt.Printf("symbol slots:   %d (%d used)\n", info.Slots, info.UsedSlots)
	for i, cu := range info.CompUnits {
		fmt.Printf("  cu %4d: offset 0x%x length 0x%x\n", i, cu.Offset, cu.Length)
	}
	return nil
}
