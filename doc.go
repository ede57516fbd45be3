// Package dff transcodes DST compressed DSDIFF files into plain DSDIFF files.
//
// The Transcoder walks the chunk stream of the input in a single forward
// pass:
//
//   - the PROP chunk is copied with its CMPR sub-chunk rewritten to
//     "not compressed", and the channel count and sample rate are captured;
//   - the "DST " sound chunk is replaced by a "DSD " chunk whose payload is
//     produced frame by frame by a dst.Decoder;
//   - DSTI index chunks are dropped and every other chunk is copied verbatim.
//
// Sizes that are only known after decoding (the FRM8 form and the decoded
// "DSD " chunk) are written as placeholders and patched once the pass ends,
// so the output must be an io.WriteSeeker.
//
// TranscodeFile wraps the engine with file handling and removes the partial
// output file whenever the run fails.
package dff
