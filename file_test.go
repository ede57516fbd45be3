package dff

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/dff/dst"
)

func writeTempInput(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	return path
}

func TestCheckInputPath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{path: "track.dff", ok: true},
		{path: "/music/Track.DFF", ok: true},
		{path: "a.Dff", ok: true},
		{path: ".dff", ok: false},
		{path: "track.dsf", ok: false},
		{path: "track.dff.bak", ok: false},
		{path: "dff", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckInputPath(tt.path)
			if tt.ok && err != nil {
				t.Fatalf("CheckInputPath(%q)=%v", tt.path, err)
			}

			if !tt.ok && !errors.Is(err, ErrNotDSDIFF) {
				t.Fatalf("CheckInputPath(%q)=%v, want ErrNotDSDIFF", tt.path, err)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "track.dff", want: "track_dec.dff"},
		{in: "/music/Track.DFF", want: "/music/Track_dec.dff"},
		{in: "a.b.dff", want: "a.b_dec.dff"},
	}

	for _, tt := range tests {
		if got := DefaultOutputPath(tt.in); got != tt.want {
			t.Fatalf("DefaultOutputPath(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranscodeFileDefaultOutput(t *testing.T) {
	inPath := writeTempInput(t, "track.dff", makeDSTInput())

	rep := &recordingReporter{}

	err := TranscodeFile(inPath, "", Config{
		NewDecoder: newStubDecoderFunc(0, nil),
		Reporter:   rep,
	})
	if err != nil {
		t.Fatalf("transcode file: %v", err)
	}

	outPath := filepath.Join(filepath.Dir(inPath), "track_dec.dff")

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if !bytes.Equal(got, expectedDSDOutput()) {
		t.Fatal("output mismatch")
	}

	if len(rep.info) != 1 || rep.info[0].Source != inPath || rep.info[0].Output != outPath {
		t.Fatalf("unexpected reported names %+v", rep.info)
	}

	if rep.done != 1 {
		t.Fatal("expected Done to be reported")
	}
}

func TestTranscodeFileQuietSkipsReporter(t *testing.T) {
	inPath := writeTempInput(t, "track.dff", makeDSTInput())
	outPath := filepath.Join(t.TempDir(), "quiet.dff")

	rep := &recordingReporter{}

	err := TranscodeFile(inPath, outPath, Config{
		Quiet:      true,
		NewDecoder: newStubDecoderFunc(0, nil),
		Reporter:   rep,
	})
	if err != nil {
		t.Fatalf("transcode file: %v", err)
	}

	if len(rep.info) != 0 || len(rep.frames) != 0 || rep.done != 0 {
		t.Fatalf("quiet run reported %+v", rep)
	}
}

func TestTranscodeFileRemovesOutputOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		failAt int
		want   error
	}{
		{
			name: "already decoded",
			input: formBytes(
				propBytes(chnlBytes(2), fsBytes(2822400), cmprBytes("DST ", "DST Encoded")),
				chunkBytes("DSD ", make([]byte, 32)),
			),
			want: ErrNotDSTEncoded,
		},
		{
			name:   "frame failure",
			input:  makeDSTInput(),
			failAt: 1,
			want:   errStubFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inPath := writeTempInput(t, "track.dff", tt.input)
			outPath := filepath.Join(t.TempDir(), "out.dff")

			err := TranscodeFile(inPath, outPath, Config{NewDecoder: newStubDecoderFunc(tt.failAt, nil)})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if _, err := os.Stat(outPath); !os.IsNotExist(err) {
				t.Fatalf("expected output to be removed, stat error: %v", err)
			}
		})
	}
}

func TestTranscodeFileRejectsExtension(t *testing.T) {
	inPath := writeTempInput(t, "track.dsf", makeDSTInput())

	err := TranscodeFile(inPath, "", Config{})
	if !errors.Is(err, ErrNotDSDIFF) {
		t.Fatalf("expected ErrNotDSDIFF, got %v", err)
	}
}

func TestTranscodeFileMissingInput(t *testing.T) {
	inPath := filepath.Join(t.TempDir(), "missing.dff")

	err := TranscodeFile(inPath, "", Config{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not exist error, got %v", err)
	}

	if _, err := os.Stat(DefaultOutputPath(inPath)); !os.IsNotExist(err) {
		t.Fatal("no output should be created for a missing input")
	}
}

func TestTranscodeFileRefusesToOverwriteInput(t *testing.T) {
	input := makeDSTInput()
	inPath := writeTempInput(t, "track.dff", input)

	err := TranscodeFile(inPath, inPath, Config{NewDecoder: dst.NewPlainDecoder})
	if !errors.Is(err, errSameFile) {
		t.Fatalf("expected errSameFile, got %v", err)
	}

	got, err := os.ReadFile(inPath)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, input) {
		t.Fatal("input file was modified")
	}
}
