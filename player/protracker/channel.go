package protracker

import (
	"github.com/QEStudios/trackermod/parser/protracker"
)

// The playback state of a single channel.
type ChannelState struct {
	SampleNo uint8 // 1-based sample playing on the channel, 0 if none.

	Volume     uint16
	VolumeDiff int // Per tick volume change, reserved for volume slides.

	// Fractional read position into the sample data.
	Offset float64

	Period       int // Current period, 0 if the channel has never been given a pitch.
	PeriodDiff   int // Added to Period on every tick.
	PeriodTarget int // Where a slide to note stops, if HasTarget is set.
	HasTarget    bool

	// Whether playback has wrapped into the sample's loop region.
	InLoop bool

	// Offset increment per output frame, derived from Period each tick.
	advance float64
}

// reset starts a new note on the channel from the start of sample.
// A cell period of 0 keeps the current pitch.
func (ch *ChannelState) reset(cd protracker.ChannelData, sample *protracker.Sample) {
	ch.SampleNo = cd.Sample
	ch.Volume = uint16(sample.Volume)
	ch.VolumeDiff = 0
	ch.Offset = 0
	if cd.Period != 0 {
		ch.Period = int(cd.Period)
	}
	ch.PeriodDiff = 0
	ch.PeriodTarget = 0
	ch.HasTarget = false
	ch.InLoop = false
}

// slideTo glides the current pitch towards the cell's period by speed per tick,
// without restarting the sample. The cell's sample number and its volume are
// taken over at the current offset. A silent channel just starts the note.
func (ch *ChannelState) slideTo(cd protracker.ChannelData, sample *protracker.Sample, speed int) {
	if ch.SampleNo == 0 || ch.Period == 0 {
		ch.reset(cd, sample)
	}
	ch.SampleNo = cd.Sample
	ch.Volume = uint16(sample.Volume)

	if cd.Period != 0 {
		ch.PeriodTarget = int(cd.Period)
		ch.HasTarget = true
	}
	if !ch.HasTarget {
		ch.PeriodDiff = 0
		return
	}

	if ch.PeriodTarget < ch.Period {
		ch.PeriodDiff = -speed
	} else {
		ch.PeriodDiff = speed
	}
}

// updatePeriod applies the per tick period change, stopping at the slide target if one is set.
func (ch *ChannelState) updatePeriod() {
	if ch.PeriodDiff == 0 || ch.Period == 0 {
		return
	}

	ch.Period += ch.PeriodDiff
	if ch.HasTarget {
		if ch.PeriodDiff < 0 && ch.Period < ch.PeriodTarget {
			ch.Period = ch.PeriodTarget
		} else if ch.PeriodDiff > 0 && ch.Period > ch.PeriodTarget {
			ch.Period = ch.PeriodTarget
		}
	}

	// A period of 0 would mean an infinite playback rate.
	ch.Period = max(ch.Period, 1)
}

// updateAdvance recomputes how far to move through the sample per output frame.
func (ch *ChannelState) updateAdvance(clockHz float64, sampleRate uint32) {
	if ch.Period <= 0 {
		ch.advance = 0
		return
	}
	ch.advance = clockHz / float64(ch.Period) / (float64(sampleRate) * 2)
}

// nextSample returns the channel's current sample value scaled by volume,
// then moves the read position on, wrapping into the loop region if the sample has one.
func (ch *ChannelState) nextSample(sample *protracker.Sample) float64 {
	if sample == nil || ch.Period <= 0 {
		return 0
	}

	// Reads past the end of the data are silent.
	var val float64
	if ch.Offset < float64(len(sample.Data)) {
		val = float64(sample.Data[int(ch.Offset)]) * float64(ch.Volume)
	}

	ch.Offset += ch.advance
	ch.wrap(sample)

	return val
}

// wrap folds Offset back into the loop region once it runs past the end.
// Before the first wrap the end is the end of the sample, afterwards it is the end of the loop.
func (ch *ChannelState) wrap(sample *protracker.Sample) {
	if !sample.Loops() {
		return
	}

	loopStart := float64(sample.RepeatOffset)
	loopEnd := float64(sample.RepeatOffset + sample.RepeatLength)

	var overflow float64
	if ch.InLoop {
		overflow = ch.Offset - loopEnd
	} else {
		overflow = ch.Offset - float64(sample.Length)
		if overflow <= 0 {
			return
		}
		ch.InLoop = true
	}

	// An advance can be larger than the loop itself.
	for overflow > 0 {
		ch.Offset = loopStart + overflow
		overflow = ch.Offset - loopEnd
	}
}
