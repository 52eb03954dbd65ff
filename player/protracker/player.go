// Package protracker replays a parsed ProTracker module tick by tick.
//
// A Player is single threaded and does no I/O: every call to NextTick runs the
// state machine forward by one tick and mixes that tick's PCM into a buffer
// owned by the Player. Several players may share one Module.
package protracker

import (
	"errors"
	"log"

	"github.com/QEStudios/trackermod/parser/protracker"
	"github.com/QEStudios/trackermod/player"
)

// ErrEmptyModule is returned for modules without patterns or without a play sequence.
var ErrEmptyModule = errors.New("module has no patterns to play")

// Default speed: 6 ticks per division at 125 BPM.
const (
	defaultTicksPerDiv = 6
	defaultTicksPerMin = 4 * 6 * 125
)

// The position and timing of a song being played.
type PlayerState struct {
	SequencePos int   // Index into Module.Sequence.
	CurPattern  int   // Index into Module.Patterns.
	CurDivision int   // 0..63
	CurTick     uint8 // 0..TicksPerDiv-1

	TicksPerMin uint16
	TicksPerDiv uint8

	Channels []ChannelState
}

func newPlayerState(mod *protracker.Module) PlayerState {
	return PlayerState{
		CurPattern:  int(mod.Sequence[0]),
		TicksPerMin: defaultTicksPerMin,
		TicksPerDiv: defaultTicksPerDiv,
		Channels:    make([]ChannelState, mod.NumChannels()),
	}
}

type Player struct {
	mod    *protracker.Module
	clock  player.ClockFreq
	format player.OutputFormat
	logger *log.Logger

	state          PlayerState
	samplesPerTick int
	buffer         player.Buffer
}

// New creates a player for mod. The module is only read, never modified.
func New(mod *protracker.Module, clock player.ClockFreq, format player.OutputFormat, logger *log.Logger) (*Player, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	// The channel count comes from the first division of the first pattern.
	if len(mod.Patterns) == 0 || len(mod.Sequence) == 0 {
		return nil, ErrEmptyModule
	}

	p := &Player{
		mod:    mod,
		clock:  clock,
		format: format,
		logger: logger,
		state:  newPlayerState(mod),
		buffer: player.NewBuffer(format.SampleFormat),
	}
	logger.Printf("playing %q: %d channels, %d positions, %s clock, %d Hz %v x%d",
		mod.Title, len(p.state.Channels), len(mod.Sequence), clock, format.SampleRate, format.SampleFormat, format.ChannelCount)
	return p, nil
}

// Done returns true once the whole sequence has been played.
func (p *Player) Done() bool {
	return p.state.SequencePos >= len(p.mod.Sequence)
}

// Position returns the sequence position, division and tick that the next call to NextTick will play.
func (p *Player) Position() (sequencePos, division, tick int) {
	return p.state.SequencePos, p.state.CurDivision, int(p.state.CurTick)
}

// State returns a copy of the current player state.
func (p *Player) State() PlayerState {
	s := p.state
	s.Channels = append([]ChannelState(nil), p.state.Channels...)
	return s
}

// NextTick plays one tick and returns its PCM, interleaved when the output is stereo.
// The buffer is reused by the next call.
// An empty buffer means the song has ended; every later call returns an empty buffer too.
func (p *Player) NextTick() player.Buffer {
	if p.Done() {
		return p.buffer.Empty()
	}

	if p.state.CurTick == 0 {
		// New division: notes and effects are only read here.
		p.processDivision()

		p.samplesPerTick = samplesPerTick(p.format.SampleRate, p.state.TicksPerMin)
		p.buffer.Resize(p.samplesPerTick * int(p.format.ChannelCount))
	}

	for i := range p.state.Channels {
		p.state.Channels[i].updatePeriod()
	}

	p.mix()
	p.advance()

	return p.buffer
}

// samplesPerTick returns how many output frames one tick lasts.
// Computed in single precision.
func samplesPerTick(sampleRate uint32, ticksPerMin uint16) int {
	return int(float32(sampleRate) * 60 / float32(ticksPerMin))
}

// advance moves to the next tick, and from there to the next division and sequence position.
func (p *Player) advance() {
	s := &p.state

	s.CurTick = (s.CurTick + 1) % s.TicksPerDiv
	if s.CurTick != 0 {
		return
	}

	s.CurDivision = (s.CurDivision + 1) % protracker.DivisionsPerPattern
	if s.CurDivision != 0 {
		return
	}

	s.SequencePos++
	if s.SequencePos < len(p.mod.Sequence) {
		s.CurPattern = int(p.mod.Sequence[s.SequencePos])
	}
}
