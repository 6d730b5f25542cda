package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/danielcbailey/mipsasm/asm"
)

/**
 * Arguments are as such:
 * flags assemblyFile
 * Flags:
 * 		-ts {starting address of text}, example: "-ts 0x00400000": Moves the start of the text region
 * 		-ds {starting address of data}, example: "-ds 0x10010000": Moves the start of the static data region
 * 		-symbols : Prints the symbol table after the listing.
 * 		-split : Includes the @hi/@lo halves in the symbol table.
 * 		-hex : Prints the initialized words of the memory image instead of a listing.
 * 		-d : Detailed op-code analysis.
 * 		-dump : Dumps the resolved program structure to stderr.
 * 		-o {file} : Writes the output to a file instead of stdout.
 */

type options struct {
	file      string
	textStart string
	dataStart string
	symbols   bool
	split     bool
	hex       bool
	detailed  bool
	dump      bool
	out       string
}

func main() {
	var opts options
	flag.StringVar(&opts.textStart, "ts", "", "start address of the text region")
	flag.StringVar(&opts.dataStart, "ds", "", "start address of the static data region")
	flag.BoolVar(&opts.symbols, "symbols", false, "print the symbol table")
	flag.BoolVar(&opts.split, "split", false, "include @hi/@lo entries in the symbol table")
	flag.BoolVar(&opts.hex, "hex", false, "print the memory image instead of a listing")
	flag.BoolVar(&opts.detailed, "d", false, "detailed op-code analysis")
	flag.BoolVar(&opts.dump, "dump", false, "dump the resolved program to stderr")
	flag.StringVar(&opts.out, "o", "", "output file (default stdout)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: mipsasm [flags] file.asm\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.file = flag.Arg(0)

	if err := run(opts); err != nil {
		reportErrors(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := configure(opts)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open assembly file: %w", err)
	}
	defer f.Close()

	prog, err := asm.Assemble(f, cfg)
	if err != nil {
		return err
	}

	if opts.dump {
		pp.Default.SetColoringEnabled(term.IsTerminal(int(os.Stderr.Fd())))
		pp.Fprintf(os.Stderr, "%v\n", prog.Parsed)
		pp.Fprintf(os.Stderr, "Symbols: %v\n", prog.Symbols.Map())
	}

	out, width := io.Writer(os.Stdout), 0
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	} else if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	if opts.hex {
		err = prog.Image.Dump(out)
	} else {
		err = asm.WriteListing(out, prog.Parsed, width)
	}
	if err != nil {
		return err
	}
	if opts.symbols {
		fmt.Fprintln(out)
		if err := asm.WriteSymbols(out, prog.Symbols, opts.split); err != nil {
			return err
		}
	}
	if opts.detailed {
		fmt.Fprintln(os.Stderr)
		displayGeneralResults(os.Stderr, opts.file, analyze(prog), true)
	}
	return nil
}

// configure builds the placement windows from the command line.
func configure(opts options) (asm.Config, error) {
	cfg := asm.DefaultConfig()
	if opts.textStart != "" {
		v, err := strconv.ParseUint(opts.textStart, 0, 32)
		if err != nil {
			return cfg, fmt.Errorf("invalid -ts %q: %w", opts.textStart, err)
		}
		cfg.Text.Start = uint32(v)
	}
	if opts.dataStart != "" {
		v, err := strconv.ParseUint(opts.dataStart, 0, 32)
		if err != nil {
			return cfg, fmt.Errorf("invalid -ds %q: %w", opts.dataStart, err)
		}
		cfg.Data.Start = uint32(v)
	}
	return cfg, nil
}

// reportErrors prints one line per assembler error followed by a count.
func reportErrors(w io.Writer, err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var le *asm.LineError
		if errors.As(e, &le) {
			fmt.Fprintf(w, "%d (%s): Error: %v\n", le.Line, truncate(le.Contents), le.Err)
			continue
		}
		fmt.Fprintf(w, "Error: %v\n", e)
	}
	fmt.Fprintf(w, "%d error(s) generated from assembler.\n", len(errs))
}

func truncate(s string) string {
	if len(s) > 64 {
		//shortening the line
		return s[:64]
	}
	return s
}
