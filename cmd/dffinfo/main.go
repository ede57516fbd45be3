// This tool prints the chunk layout and stream format of a DSDIFF file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/dff"
)

const missingPathMessage = "You must pass the path of the DSDIFF file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := dff.ReadInfo(file)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Form size: %d\n", info.FormSize)
	fmt.Fprintln(out, "Chunks:")

	for i, c := range info.Chunks {
		fmt.Fprintf(out, "\tchunk [%d]:\t%s\n", i, c)
	}

	fmt.Fprintln(out, "Properties:")

	for i, c := range info.Properties {
		fmt.Fprintf(out, "\tproperty [%d]:\t%s\n", i, c)
	}

	format := info.Format()
	fmt.Fprintf(out, "Channels: %d\n", format.NumChannels)
	fmt.Fprintf(out, "Sample rate: %d\n", format.SampleRate)
	fmt.Fprintf(out, "Compression: %q %s\n", info.Compression[:], info.CompressionName)
	fmt.Fprintf(out, "Sound data size: %d\n", info.SoundSize)

	if info.Compressed() {
		fmt.Fprintf(out, "DST frames: %d at %d fps\n", info.NumFrames, info.FrameRate)
	}

	return nil
}
