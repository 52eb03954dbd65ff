package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/QEStudios/trackermod/player"
)

// How often Close checks whether the device has played everything.
const drainPollInterval = 10 * time.Millisecond

// Oto plays buffers on the default audio device.
// Write blocks while the device is behind, so a render loop runs at playback speed.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	format player.OutputFormat
	bytes  []byte
	closed bool
}

// NewOto opens the audio device. oto allows a single context per process,
// so only one Oto sink can ever be created.
func NewOto(format player.OutputFormat) (*Oto, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	otoFormat := oto.FormatSignedInt16LE
	if format.SampleFormat == player.F32 {
		otoFormat = oto.FormatFloat32LE
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(format.SampleRate),
		ChannelCount: int(format.ChannelCount),
		Format:       otoFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open audio device: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	p := ctx.NewPlayer(pr)
	p.Play()

	return &Oto{
		ctx:    ctx,
		player: p,
		pw:     pw,
		format: format,
	}, nil
}

func (s *Oto) Write(buf player.Buffer) error {
	if s.closed {
		return ErrClosed
	}
	if buf.Format != s.format.SampleFormat {
		return fmt.Errorf("%w: got %v, want %v", ErrFormatMismatch, buf.Format, s.format.SampleFormat)
	}
	if err := s.player.Err(); err != nil {
		return fmt.Errorf("audio device error: %w", err)
	}

	s.bytes = encodePCM(s.bytes[:0], buf)
	if _, err := s.pw.Write(s.bytes); err != nil {
		return fmt.Errorf("cannot write to audio device: %w", err)
	}
	return nil
}

// Close waits until everything written has been played, then releases the player.
func (s *Oto) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.pw.Close()
	for s.player.IsPlaying() {
		time.Sleep(drainPollInterval)
	}
	return s.player.Close()
}

// encodePCM appends buf in the device's byte layout: little endian int16,
// or float32 for F32 buffers. U16 loses its bias and becomes signed.
func encodePCM(dst []byte, buf player.Buffer) []byte {
	switch buf.Format {
	case player.I16:
		for _, v := range buf.I16 {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
		}
	case player.U16:
		for _, v := range buf.U16 {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(toSigned(v)))
		}
	case player.F32:
		for _, v := range buf.F32 {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	}
	return dst
}
