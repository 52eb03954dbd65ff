package protracker

import (
	"math"

	"github.com/QEStudios/trackermod/player"
)

// Scale from the mixed value to float output.
const floatScale = 16384.0

// mix renders samplesPerTick frames of all channels into the buffer.
func (p *Player) mix() {
	channels := p.state.Channels
	for i := range channels {
		channels[i].updateAdvance(p.clock.Hz(), p.format.SampleRate)
	}

	numInput := len(channels)

	// Modules with fewer than 4 channels still divide by 1.
	monoDivisor := float64(max(numInput/2, 1))
	stereoDivisor := float64(max(numInput/4, 1))

	for idx := range p.samplesPerTick {
		if p.format.ChannelCount == 1 {
			var val float64
			for c := range channels {
				val += p.channelSample(c)
			}
			val /= monoDivisor
			p.store(idx, val)
			continue
		}

		// Channels 0 and 3 of every group of four go left, 1 and 2 go right.
		// Both sums are divided again after every channel, so earlier channels end up quieter.
		var left, right float64
		for c := range channels {
			if c%4 == 0 || c%4 == 3 {
				left += p.channelSample(c)
			} else {
				right += p.channelSample(c)
			}
			left /= stereoDivisor
			right /= stereoDivisor
		}
		p.store(2*idx, left)
		p.store(2*idx+1, right)
	}
}

func (p *Player) channelSample(c int) float64 {
	ch := &p.state.Channels[c]
	return ch.nextSample(p.mod.Sample(ch.SampleNo))
}

// store converts a mixed value to the output format and writes it at index i.
func (p *Player) store(i int, val float64) {
	switch p.buffer.Format {
	case player.I16:
		p.buffer.I16[i] = toInt16(math.Floor(val))
	case player.U16:
		p.buffer.U16[i] = toUint16(math.Floor(val) + player.UnsignedBias)
	case player.F32:
		p.buffer.F32[i] = float32(val / floatScale)
	}
}

// toInt16 converts with saturation; NaN becomes 0.
func toInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= math.MinInt16:
		return math.MinInt16
	case v >= math.MaxInt16:
		return math.MaxInt16
	default:
		return int16(v)
	}
}

// toUint16 converts with saturation; NaN becomes 0.
func toUint16(v float64) uint16 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
