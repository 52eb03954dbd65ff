package sink

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/QEStudios/trackermod/player"
)

// WAVE format tags.
const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// Wav encodes buffers into a RIFF WAVE stream.
// The header is only complete once Close has been called.
type Wav struct {
	enc    *wav.Encoder
	format player.OutputFormat
	buf    *audio.IntBuffer
	closed bool
}

// NewWav creates a WAV sink writing to w. I16 and U16 output is stored as
// 16-bit PCM, F32 output as 32-bit IEEE float.
func NewWav(w io.WriteSeeker, format player.OutputFormat) (*Wav, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	bitDepth, wavFormat := 16, wavFormatPCM
	if format.SampleFormat == player.F32 {
		bitDepth, wavFormat = 32, wavFormatFloat
	}

	enc := wav.NewEncoder(w, int(format.SampleRate), bitDepth, int(format.ChannelCount), wavFormat)
	return &Wav{
		enc:    enc,
		format: format,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: int(format.ChannelCount),
				SampleRate:  int(format.SampleRate),
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (s *Wav) Write(buf player.Buffer) error {
	if s.closed {
		return ErrClosed
	}
	if buf.Format != s.format.SampleFormat {
		return fmt.Errorf("%w: got %v, want %v", ErrFormatMismatch, buf.Format, s.format.SampleFormat)
	}
	if buf.Len() == 0 {
		return nil
	}

	data := s.buf.Data[:0]
	switch buf.Format {
	case player.I16:
		for _, v := range buf.I16 {
			data = append(data, int(v))
		}
	case player.U16:
		// WAV only knows unsigned samples at 8 bits.
		for _, v := range buf.U16 {
			data = append(data, int(toSigned(v)))
		}
	case player.F32:
		// The encoder only writes integers; the IEEE bits survive a trip through int32.
		for _, v := range buf.F32 {
			data = append(data, int(int32(math.Float32bits(v))))
		}
	}
	s.buf.Data = data

	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("cannot write WAV data: %w", err)
	}
	return nil
}

// Close finishes the WAV header. It doesn't close the underlying writer.
func (s *Wav) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("cannot finish WAV file: %w", err)
	}
	return nil
}
