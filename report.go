package dff

import (
	"time"

	"github.com/go-audio/audio"
)

// Reporter receives progress information while a file is transcoded.
type Reporter interface {
	// StreamInfo is called once the frame information is known.
	StreamInfo(info StreamInfo)
	// FrameDecoded is called after each decoded frame, frame is 1-based.
	FrameDecoded(frame, total uint32)
	// Done is called once the output is complete.
	Done()
}

// StreamInfo describes the stream being decoded.
type StreamInfo struct {
	Source string
	Output string

	NumChans   uint32
	SampleRate uint32
	NumFrames  uint32
	FrameRate  uint16
	// DecodedSize is the expected size in bytes of the decoded DSD data.
	DecodedSize uint64
}

// Format returns the audio format of the decoded stream.
func (i StreamInfo) Format() *audio.Format {
	return &audio.Format{
		NumChannels: int(i.NumChans),
		SampleRate:  int(i.SampleRate),
	}
}

// ChannelLayout returns a short description of the channel setup.
func (i StreamInfo) ChannelLayout() string {
	if i.NumChans == 2 {
		return "Stereo"
	}

	return "Multi ch."
}

// Duration returns the play time of the decoded stream.
func (i StreamInfo) Duration() time.Duration {
	if i.NumChans == 0 || i.SampleRate == 0 {
		return 0
	}

	samples := i.DecodedSize * 8 / uint64(i.NumChans)
	seconds := float64(samples) / float64(i.SampleRate)

	return time.Duration(seconds * float64(time.Second))
}

// StreamInfo returns what is known so far about the stream.
func (t *Transcoder) StreamInfo() StreamInfo {
	return StreamInfo{
		Source:      t.SourceName,
		Output:      t.OutputName,
		NumChans:    t.NumChans,
		SampleRate:  t.SampleRate,
		NumFrames:   t.NumFrames,
		FrameRate:   t.FrameRate,
		DecodedSize: t.ExpectedSize,
	}
}
