package protracker

import (
	"github.com/QEStudios/trackermod/parser/protracker"
)

// currentPattern returns the pattern being played, or nil if the sequence
// names a pattern that isn't stored in the module.
func (p *Player) currentPattern() *protracker.Pattern {
	if p.state.CurPattern >= len(p.mod.Patterns) {
		return nil
	}
	return &p.mod.Patterns[p.state.CurPattern]
}

// processDivision starts the notes of the current division and applies their effects.
// Only cells with a sample number do anything, everything else carries on from before.
func (p *Player) processDivision() {
	pat := p.currentPattern()
	if pat == nil {
		return
	}
	div := &pat.Divisions[p.state.CurDivision]

	for i, cd := range div.Channels {
		if i >= len(p.state.Channels) {
			break
		}
		if cd.Sample == 0 {
			continue
		}
		sample := p.mod.Sample(cd.Sample)
		if sample == nil {
			// Sample numbers past the end of the table are ignored.
			continue
		}

		ch := &p.state.Channels[i]
		effect, ok := cd.Effect.(protracker.NormalEffect)
		if !ok {
			// None of the extended effects are played.
			ch.reset(cd, sample)
			continue
		}
		p.applyEffect(ch, cd, sample, effect)
	}
}

func (p *Player) applyEffect(ch *ChannelState, cd protracker.ChannelData, sample *protracker.Sample, effect protracker.NormalEffect) {
	value := int(effect.Value())

	switch effect.Type {
	case protracker.SlideUp:
		ch.reset(cd, sample)
		ch.PeriodDiff = value

	case protracker.SlideDown:
		ch.reset(cd, sample)
		ch.PeriodDiff = -value

	case protracker.SlideToNote:
		ch.slideTo(cd, sample, value)

	case protracker.SetVolume:
		ch.reset(cd, sample)
		ch.Volume = uint16(value)

	case protracker.SetSpeed:
		ch.reset(cd, sample)
		p.setSpeed(value)

	default:
		ch.reset(cd, sample)
	}
}

// setSpeed applies a SetSpeed value: 1..32 is ticks per division, anything higher is a tempo.
func (p *Player) setSpeed(value int) {
	switch {
	case value == 0:
		// Ignored.
	case value <= 32:
		p.state.TicksPerDiv = uint8(value)
		p.logger.Printf("position %d division %d: speed %d ticks per division", p.state.SequencePos, p.state.CurDivision, value)
	default:
		p.state.TicksPerMin = uint16(4 * 6 * value)
		p.logger.Printf("position %d division %d: tempo %d BPM", p.state.SequencePos, p.state.CurDivision, value)
	}
}
