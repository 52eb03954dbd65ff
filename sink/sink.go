// Package sink writes the PCM produced by a player somewhere useful.
package sink

import (
	"errors"
	"math"

	"github.com/QEStudios/trackermod/player"
)

// ErrFormatMismatch is returned when a buffer doesn't match the format the sink was opened with.
var ErrFormatMismatch = errors.New("buffer format does not match the sink")

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink is closed")

// A Sink consumes interleaved PCM buffers one tick at a time.
// Buffers may be reused by the caller once Write returns.
type Sink interface {
	Write(buf player.Buffer) error
	Close() error
}

// toSigned removes the U16 bias, saturating values above the int16 range.
func toSigned(v uint16) int16 {
	return int16(min(int(v)-player.UnsignedBias, math.MaxInt16))
}
