package protracker

// Number of divisions (rows) in every pattern.
const DivisionsPerPattern = 64

// A complete tracker song. A Module is never modified after Parse returns it,
// so it can be shared between any number of players and the dump code.
type Module struct {
	Title string // The title of the song (can be blank).
	Tag   string // The 4-byte format tag found at offset 1080 (may be garbage for legacy files).

	// The instrument table. ChannelData.Sample refers to it 1-based,
	// with 0 meaning "no sample".
	Samples []Sample

	// The play order, as a slice of indices into Patterns.
	Sequence []uint8

	// Every pattern stored in the file.
	Patterns []Pattern
}

// NumChannels returns how many channels each division of the module has.
func (m *Module) NumChannels() int {
	if len(m.Patterns) == 0 {
		return 0
	}
	return len(m.Patterns[0].Divisions[0].Channels)
}

// Sample returns the sample referenced by the 1-based index no,
// or nil if there is no such sample.
func (m *Module) Sample(no uint8) *Sample {
	if no == 0 || int(no) > len(m.Samples) {
		return nil
	}
	return &m.Samples[no-1]
}

// A single instrument: header values plus its signed 8-bit PCM data.
type Sample struct {
	Name     string
	Finetune int8   // Selects one of the 16 period tables (-8..7).
	Length   uint32 // Length in bytes.
	Volume   uint8  // Default volume (0..64).

	// The loop region in bytes. A repeat length of 2 or less means the sample doesn't loop.
	RepeatOffset uint32
	RepeatLength uint32

	Data []int8
}

// Loops returns true if the sample has a loop region that should be replayed.
func (s *Sample) Loops() bool {
	return s.RepeatLength > 2
}

// A fixed block of DivisionsPerPattern rows.
type Pattern struct {
	Divisions [DivisionsPerPattern]Division
}

// One row of a pattern across all channels.
type Division struct {
	Channels []ChannelData
}

// The note data for one channel in one division.
type ChannelData struct {
	Sample uint8  // 1-based sample index, 0 keeps the current instrument.
	Period uint16 // 12-bit hardware period, 0 keeps the current pitch.
	Effect Effect
}
