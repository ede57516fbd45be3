package dff

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cwbudde/dff/dst"
)

var errSameFile = errors.New("output file is the input file")

const (
	inputExt  = ".dff"
	outputExt = "_dec.dff"
)

// Config controls TranscodeFile.
type Config struct {
	// Quiet disables the Reporter.
	Quiet bool
	// NewDecoder creates the DST decoder, dst.NewPlainDecoder when nil.
	NewDecoder dst.NewDecoderFunc
	Reporter   Reporter
	Logger     *slog.Logger
}

// CheckInputPath verifies path names a .dff file (case insensitive).
func CheckInputPath(path string) error {
	if len(path) <= len(inputExt) || !strings.EqualFold(path[len(path)-len(inputExt):], inputExt) {
		return fmt.Errorf("%w: %s", ErrNotDSDIFF, path)
	}

	return nil
}

// DefaultOutputPath derives the output path by replacing the trailing .dff
// of in with _dec.dff.
func DefaultOutputPath(in string) string {
	return in[:len(in)-len(inputExt)] + outputExt
}

// TranscodeFile decodes the DST compressed DSDIFF file inPath into outPath.
// An empty outPath selects DefaultOutputPath. An existing output file is
// replaced. Whenever an error is returned the output file is removed.
func TranscodeFile(inPath, outPath string, cfg Config) (err error) {
	err = CheckInputPath(inPath)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = DefaultOutputPath(inPath)
	}

	order, err := resolveByteOrder()
	if err != nil {
		return err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", inPath, err)
	}
	defer in.Close()

	if err := checkDistinct(in, outPath); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", outPath, err)
	}

	defer func() {
		cerr := out.Close()
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}

		if err != nil {
			os.Remove(outPath)
		}
	}()

	t := newTranscoder(bufio.NewReader(in), out, order, cfg.NewDecoder)
	t.SourceName = inPath
	t.OutputName = outPath
	t.Logger = cfg.Logger

	if !cfg.Quiet {
		t.Reporter = cfg.Reporter
	}

	err = t.Transcode()
	if err != nil {
		return err
	}

	return out.Sync()
}

// checkDistinct refuses to truncate the input file by writing over it.
func checkDistinct(in *os.File, outPath string) error {
	outInfo, err := os.Stat(outPath)
	if err != nil {
		return nil
	}

	inInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input file: %w", err)
	}

	if os.SameFile(inInfo, outInfo) {
		return fmt.Errorf("%w: %s", errSameFile, outPath)
	}

	return nil
}
