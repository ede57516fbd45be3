// This tool converts a DST encoded DSDIFF file into a plain DSDIFF file.
// By default the output is stored next to the source as <name>_dec.dff.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/dff"
	"github.com/mattn/go-isatty"
)

const program = "dstcnv"

var version = "0.9"

var errUsage = errors.New("invalid usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix(program + ": ")

	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errUsage) {
		os.Exit(1)
	}

	log.Fatal(err)
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flagSet := flag.NewFlagSet(program, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	quiet := flagSet.Bool("q", false, "Quiet mode (except errors)")
	output := flagSet.String("o", "", "Specify output file name (default: <input-filename>_dec.dff)")
	help := flagSet.Bool("h", false, "Show option help")
	showVersion := flagSet.Bool("V", false, "Show version information")
	debug := flagSet.Bool("debug", false, "Log every chunk to stderr")

	err := flagSet.Parse(args)
	if err != nil {
		usage(stdout)
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s version %s\n", program, version)
		return nil
	}

	if *help {
		printHelp(stdout)
		return nil
	}

	if flagSet.NArg() == 0 {
		usage(stdout)
		return errUsage
	}

	inPath := flagSet.Arg(flagSet.NArg() - 1)

	err = dff.CheckInputPath(inPath)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = dff.DefaultOutputPath(inPath)
	}

	if _, err := os.Stat(outPath); err == nil && !*quiet {
		if !confirmOverwrite(stdin, stdout, outPath) {
			fmt.Fprintln(stdout, "Execution canceled.")
			return nil
		}
	}

	cfg := dff.Config{
		Quiet:    *quiet,
		Reporter: newConsoleReporter(stdout),
	}

	if *debug {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return dff.TranscodeFile(inPath, outPath, cfg)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [-q] [-o output-file] dst-encoded-dsdiff-file | -h | -V\n", program)
}

func printHelp(w io.Writer) {
	usage(w)
	fmt.Fprint(w, "\n-- option help --\n\n")
	fmt.Fprintln(w, "-q : Quiet mode (except errors)")
	fmt.Fprintln(w, "-o : Specify output file name (default: <input-filename>_dec.dff)")
	fmt.Fprintln(w, "-h : Show option help")
	fmt.Fprintln(w, "-V : Show version information")
}

func confirmOverwrite(stdin io.Reader, stdout io.Writer, path string) bool {
	fmt.Fprintf(stdout, "Output file '%s' exists already. Overwrite ? (y/n) ", path)

	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	answer = strings.TrimSpace(answer)

	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y")
}

// consoleReporter prints stream information and frame progress. The
// progress line is rewritten in place when stdout is a terminal.
type consoleReporter struct {
	out     io.Writer
	inPlace bool
	frames  uint32
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	r := &consoleReporter{out: out}

	if f, ok := out.(*os.File); ok {
		r.inPlace = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return r
}

func (r *consoleReporter) StreamInfo(info dff.StreamInfo) {
	fmt.Fprintf(r.out, "Source file  : %s\n", info.Source)
	fmt.Fprintf(r.out, "Output file  : %s\n", info.Output)
	fmt.Fprintf(r.out, "Sample freq. : %d Hz\n", info.SampleRate)
	fmt.Fprintf(r.out, "Channels     : %d (%s)\n", info.NumChans, info.ChannelLayout())
	fmt.Fprintf(r.out, "Duration     : %s\n", formatDuration(info.Duration()))
}

func (r *consoleReporter) FrameDecoded(frame, total uint32) {
	r.frames = frame

	if r.inPlace {
		fmt.Fprintf(r.out, "\033[GDecoding DST frames %d of %d ", frame, total)
	}
}

func (r *consoleReporter) Done() {
	if !r.inPlace && r.frames > 0 {
		fmt.Fprintf(r.out, "Decoded %d DST frames", r.frames)
	}

	fmt.Fprint(r.out, "\nDone.\n")
}

// formatDuration renders d as mm:ss.sss.
func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	minutes := int(seconds) / 60

	return fmt.Sprintf("%02d:%06.3f", minutes, seconds-float64(minutes*60))
}
