package protracker

import "fmt"

type EffectType uint8

const (
	Arpeggio EffectType = iota
	SlideUp
	SlideDown
	SlideToNote
	Vibrato
	SlideToNoteVolumeSlide
	VibratoVolumeSlide
	Tremolo
	SetPanningPosition
	SetSampleOffset
	VolumeSlide
	PositionJump
	SetVolume
	PatternBreak
	Extended
	SetSpeed
)

var effectNames = [...]string{
	Arpeggio:               "Arpeggio",
	SlideUp:                "SlideUp",
	SlideDown:              "SlideDown",
	SlideToNote:            "SlideToNote",
	Vibrato:                "Vibrato",
	SlideToNoteVolumeSlide: "SlideToNoteVolumeSlide",
	VibratoVolumeSlide:     "VibratoVolumeSlide",
	Tremolo:                "Tremolo",
	SetPanningPosition:     "SetPanningPosition",
	SetSampleOffset:        "SetSampleOffset",
	VolumeSlide:            "VolumeSlide",
	PositionJump:           "PositionJump",
	SetVolume:              "SetVolume",
	PatternBreak:           "PatternBreak",
	Extended:               "Extended",
	SetSpeed:               "SetSpeed",
}

func (t EffectType) isValid() bool {
	return int(t) < len(effectNames)
}

func (t EffectType) String() string {
	if !t.isValid() {
		return fmt.Sprintf("EffectType(%d)", uint8(t))
	}
	return effectNames[t]
}

// EffectTypeFromNibble converts a 4-bit value into an EffectType.
func EffectTypeFromNibble(n uint8) (EffectType, error) {
	t := EffectType(n)
	if !t.isValid() {
		return 0, &EffectError{Nibble: n}
	}
	return t, nil
}

// The sub-kinds of the Extended (0xE) effect.
type EffectTypeExtended uint8

const (
	SetFilterOnOff EffectTypeExtended = iota
	FineslideUp
	FineslideDown
	Glissando
	SetVibratoWaveform
	SetFinetuneValue
	LoopPattern
	SetTremoloWaveform
	Unused
	RetriggerSample
	FineVolumeSlideUp
	FineVolumeSlideDown
	CutSample
	DelaySample
	DelayPattern
	InvertLoop
)

var extendedEffectNames = [...]string{
	SetFilterOnOff:      "SetFilterOnOff",
	FineslideUp:         "FineslideUp",
	FineslideDown:       "FineslideDown",
	Glissando:           "Glissando",
	SetVibratoWaveform:  "SetVibratoWaveform",
	SetFinetuneValue:    "SetFinetuneValue",
	LoopPattern:         "LoopPattern",
	SetTremoloWaveform:  "SetTremoloWaveform",
	Unused:              "Unused",
	RetriggerSample:     "RetriggerSample",
	FineVolumeSlideUp:   "FineVolumeSlideUp",
	FineVolumeSlideDown: "FineVolumeSlideDown",
	CutSample:           "CutSample",
	DelaySample:         "DelaySample",
	DelayPattern:        "DelayPattern",
	InvertLoop:          "InvertLoop",
}

func (t EffectTypeExtended) isValid() bool {
	return int(t) < len(extendedEffectNames)
}

func (t EffectTypeExtended) String() string {
	if !t.isValid() {
		return fmt.Sprintf("EffectTypeExtended(%d)", uint8(t))
	}
	return extendedEffectNames[t]
}

// ExtendedEffectTypeFromNibble converts a 4-bit value into an EffectTypeExtended.
func ExtendedEffectTypeFromNibble(n uint8) (EffectTypeExtended, error) {
	t := EffectTypeExtended(n)
	if !t.isValid() {
		return 0, &EffectError{Nibble: n, Extended: true}
	}
	return t, nil
}

// Effect is either a NormalEffect or an ExtendedEffect.
// No other implementations exist outside this package.
type Effect interface {
	fmt.Stringer
	isEffect()
}

// An effect with two 4-bit parameters.
type NormalEffect struct {
	Type   EffectType
	Param1 uint8 // High parameter nibble (x).
	Param2 uint8 // Low parameter nibble (y).
}

// Value returns both parameter nibbles combined into one byte (x*16+y).
func (e NormalEffect) Value() uint8 {
	return e.Param1<<4 | e.Param2
}

func (e NormalEffect) String() string {
	return fmt.Sprintf("%1x%1x%1x", uint8(e.Type), e.Param1, e.Param2)
}

func (NormalEffect) isEffect() {}

// An 0xE effect: the first parameter nibble selects the sub-kind.
type ExtendedEffect struct {
	Type  EffectTypeExtended
	Param uint8
}

func (e ExtendedEffect) String() string {
	return fmt.Sprintf("e%1x%1x", uint8(e.Type), e.Param)
}

func (ExtendedEffect) isEffect() {}

// decodeEffect builds an Effect from the effect type nibble t and the parameter nibbles x and y.
func decodeEffect(t, x, y uint8) (Effect, error) {
	effectType, err := EffectTypeFromNibble(t)
	if err != nil {
		return nil, err
	}

	if effectType != Extended {
		return NormalEffect{Type: effectType, Param1: x, Param2: y}, nil
	}

	// Decoders that look up the type nibble again here always get DelayPattern.
	extendedType, err := ExtendedEffectTypeFromNibble(x)
	if err != nil {
		return nil, err
	}
	return ExtendedEffect{Type: extendedType, Param: y}, nil
}
