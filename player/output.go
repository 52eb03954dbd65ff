// Package player holds the output side shared by the replayers: which PCM
// format to produce, which hardware clock to emulate, and the buffer a replayer
// hands back for every tick.
package player

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrChannelCount = errors.New("output channel count must be 1 or 2")
	ErrSampleRate   = errors.New("output sample rate must be positive")
	ErrSampleFormat = errors.New("unknown output sample format")
)

type SampleFormat int

const (
	I16 SampleFormat = iota // 16-bit signed.
	U16                     // 16-bit unsigned, biased by 16384.
	F32                     // 32-bit float, scaled by 1/16384.
)

// UnsignedBias is the U16 value of silence.
const UnsignedBias = 16384

func (f SampleFormat) isValid() bool {
	switch f {
	case I16, U16, F32:
		return true
	default:
		return false
	}
}

func (f SampleFormat) String() string {
	switch f {
	case I16:
		return "i16"
	case U16:
		return "u16"
	case F32:
		return "f32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// ParseSampleFormat accepts the names printed by SampleFormat.String, in any case.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "i16":
		return I16, nil
	case "u16":
		return U16, nil
	case "f32":
		return F32, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrSampleFormat, s)
	}
}

// The video standard of the emulated machine, which fixes the clock that periods count in.
type ClockFreq int

const (
	Pal ClockFreq = iota
	Ntsc
)

const (
	ClockFreqPal  = 7_093_789.2
	ClockFreqNtsc = 7_159_090.5
)

// Hz returns the clock frequency for the standard.
func (c ClockFreq) Hz() float64 {
	if c == Ntsc {
		return ClockFreqNtsc
	}
	return ClockFreqPal
}

func (c ClockFreq) String() string {
	if c == Ntsc {
		return "ntsc"
	}
	return "pal"
}

func ParseClockFreq(s string) (ClockFreq, error) {
	switch strings.ToLower(s) {
	case "pal":
		return Pal, nil
	case "ntsc":
		return Ntsc, nil
	default:
		return 0, fmt.Errorf("unknown clock %q, expected pal or ntsc", s)
	}
}

// What a replayer should produce.
type OutputFormat struct {
	SampleRate   uint32 // In Hz.
	SampleFormat SampleFormat
	ChannelCount uint16 // 1 for mono, 2 for interleaved stereo.
}

// Validate checks that the format can be produced.
func (f OutputFormat) Validate() error {
	if f.ChannelCount < 1 || f.ChannelCount > 2 {
		return fmt.Errorf("%w, got %d", ErrChannelCount, f.ChannelCount)
	}
	if f.SampleRate == 0 {
		return ErrSampleRate
	}
	if !f.SampleFormat.isValid() {
		return fmt.Errorf("%w: %v", ErrSampleFormat, f.SampleFormat)
	}
	return nil
}

// Buffer holds one tick of interleaved PCM. Only the slice matching Format is used.
type Buffer struct {
	Format SampleFormat
	I16    []int16
	U16    []uint16
	F32    []float32
}

// NewBuffer returns an empty buffer for format.
func NewBuffer(format SampleFormat) Buffer {
	return Buffer{Format: format}
}

// Len returns the number of samples (not frames) in the buffer.
func (b Buffer) Len() int {
	switch b.Format {
	case I16:
		return len(b.I16)
	case U16:
		return len(b.U16)
	default:
		return len(b.F32)
	}
}

// Resize sets the number of samples in the buffer, reusing its storage where possible.
func (b *Buffer) Resize(n int) {
	switch b.Format {
	case I16:
		b.I16 = resize(b.I16, n)
	case U16:
		b.U16 = resize(b.U16, n)
	default:
		b.F32 = resize(b.F32, n)
	}
}

// Empty returns a zero length view of the buffer in the same format.
func (b Buffer) Empty() Buffer {
	return Buffer{
		Format: b.Format,
		I16:    b.I16[:0:0],
		U16:    b.U16[:0:0],
		F32:    b.F32[:0:0],
	}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return append(s[:cap(s)], make([]T, n-cap(s))...)
	}
	return s[:n]
}
