package protracker

import (
	"bytes"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

var quietLogger = log.New(io.Discard, "", 0)

func parseBytes(t *testing.T, data []byte) (*Module, error) {
	t.Helper()
	return NewParser(bytes.NewReader(data), quietLogger).Parse()
}

func TestParsePatternCount(t *testing.T) {
	tests := []struct {
		tag          string
		maxIndex     byte
		wantPatterns int
	}{
		{"M.K.", 0, 1},
		{"M.K.", 3, 4},
		{"M.K.", 61, 62},
		{"M.K.", 62, 63},
		{"M.K.", 63, 63},
		{"M.K.", 70, 63},
		{"FLT8", 5, 6},
		{"M!K!", 100, 101},
	}
	for _, tt := range tests {
		tm := testModule{
			tag:         tt.tag,
			sequence:    []byte{0, tt.maxIndex, 1},
			numPatterns: tt.wantPatterns,
		}
		mod, err := parseBytes(t, tm.encode())
		if err != nil {
			t.Fatalf("%s max %d: unexpected error: %v", tt.tag, tt.maxIndex, err)
		}
		if len(mod.Patterns) != tt.wantPatterns {
			t.Errorf("%s max %d: got %d patterns, want %d", tt.tag, tt.maxIndex, len(mod.Patterns), tt.wantPatterns)
		}
		if len(mod.Samples) != 31 {
			t.Errorf("%s: got %d samples, want 31", tt.tag, len(mod.Samples))
		}
		for p := range mod.Patterns {
			for d, div := range mod.Patterns[p].Divisions {
				if len(div.Channels) != 4 {
					t.Fatalf("pattern %d division %d: got %d channels, want 4", p, d, len(div.Channels))
				}
			}
		}
		if mod.NumChannels() != 4 {
			t.Errorf("NumChannels() = %d, want 4", mod.NumChannels())
		}
	}
}

func TestParseContents(t *testing.T) {
	tm := testModule{
		title: "space debris",
		tag:   "M.K.",
		samples: []testSample{
			{name: "bass", finetune: -3, volume: 64, repeatOffset: 2, repeatLength: 3, data: []int8{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}},
			{},
			{name: "lead", finetune: 7, volume: 32, data: []int8{-128, 127}},
		},
		sequence:    []byte{1, 0, 1},
		numPatterns: 2,
		cells: map[cellPos]testCell{
			{0, 0, 0}:  {sample: 1, period: 856, effect: 0xc, x: 4, y: 0},
			{1, 63, 3}: {sample: 0x13, period: 0xfff, effect: 0xe, x: 0xd, y: 7},
			{1, 10, 2}: {sample: 0x20, period: 113, effect: 0xf, x: 0x7, y: 0xd},
		},
	}
	mod, err := parseBytes(t, tm.encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mod.Title != "space debris" {
		t.Errorf("got title %q", mod.Title)
	}
	if mod.Tag != "M.K." {
		t.Errorf("got tag %q", mod.Tag)
	}
	if !bytes.Equal(mod.Sequence, []byte{1, 0, 1}) {
		t.Errorf("got sequence %v", mod.Sequence)
	}

	wantBass := Sample{
		Name:         "bass",
		Finetune:     -3,
		Length:       10,
		Volume:       64,
		RepeatOffset: 4,
		RepeatLength: 6,
		Data:         []int8{1, -1, 2, -2, 3, -3, 4, -4, 5, -5},
	}
	if got := mod.Samples[0]; got.Name != wantBass.Name || got.Finetune != wantBass.Finetune ||
		got.Length != wantBass.Length || got.Volume != wantBass.Volume ||
		got.RepeatOffset != wantBass.RepeatOffset || got.RepeatLength != wantBass.RepeatLength ||
		!equalData(got.Data, wantBass.Data) {
		t.Errorf("sample 1 = %s, want %s", spew.Sdump(got), spew.Sdump(wantBass))
	}
	if !mod.Samples[0].Loops() {
		t.Errorf("sample 1 should loop")
	}
	if mod.Samples[1].Length != 0 || mod.Samples[1].Data != nil {
		t.Errorf("sample 2 should be empty, got %s", spew.Sdump(mod.Samples[1]))
	}
	if s := mod.Samples[2]; s.Name != "lead" || !equalData(s.Data, []int8{-128, 127}) || s.Loops() {
		t.Errorf("sample 3 = %s", spew.Sdump(s))
	}

	cells := []struct {
		pos  cellPos
		want ChannelData
	}{
		{cellPos{0, 0, 0}, ChannelData{Sample: 1, Period: 856, Effect: NormalEffect{Type: SetVolume, Param1: 4, Param2: 0}}},
		{cellPos{1, 63, 3}, ChannelData{Sample: 0x13, Period: 0xfff, Effect: ExtendedEffect{Type: DelaySample, Param: 7}}},
		{cellPos{1, 10, 2}, ChannelData{Sample: 0x20, Period: 113, Effect: NormalEffect{Type: SetSpeed, Param1: 7, Param2: 0xd}}},
		{cellPos{0, 1, 0}, ChannelData{Effect: NormalEffect{Type: Arpeggio}}},
	}
	for _, c := range cells {
		got := mod.Patterns[c.pos.pattern].Divisions[c.pos.division].Channels[c.pos.channel]
		if got != c.want {
			t.Errorf("cell %v = %s, want %s", c.pos, spew.Sdump(got), spew.Sdump(c.want))
		}
	}
}

func equalData(a, b []int8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseLegacy(t *testing.T) {
	tm := testModule{
		title:       "old",
		samples:     []testSample{{name: "kick", volume: 48, data: make([]int8, 600)}},
		sequence:    []byte{0},
		numPatterns: 1,
		cells: map[cellPos]testCell{
			{0, 0, 1}: {sample: 1, period: 428, effect: 1, x: 0, y: 3},
		},
	}
	mod, err := parseBytes(t, tm.encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Samples) != 15 {
		t.Errorf("got %d samples, want 15", len(mod.Samples))
	}
	if len(mod.Patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(mod.Patterns))
	}
	want := ChannelData{Sample: 1, Period: 428, Effect: NormalEffect{Type: SlideUp, Param2: 3}}
	if got := mod.Patterns[0].Divisions[0].Channels[1]; got != want {
		t.Errorf("got cell %s, want %s", spew.Sdump(got), spew.Sdump(want))
	}
	if got := mod.Patterns[0].Divisions[0].Channels[0]; got.Sample != 0 || got.Period != 0 {
		t.Errorf("bytes after the pattern table were read as a cell: %s", spew.Sdump(got))
	}
	if len(mod.Samples[0].Data) != 600 {
		t.Errorf("got %d bytes of sample data, want 600", len(mod.Samples[0].Data))
	}
}

func TestParseTruncated(t *testing.T) {
	tm := testModule{
		tag:         "M.K.",
		samples:     []testSample{{data: make([]int8, 64)}},
		sequence:    []byte{0, 1},
		numPatterns: 2,
	}
	full := tm.encode()
	if _, err := parseBytes(t, full); err != nil {
		t.Fatalf("full module: unexpected error: %v", err)
	}

	patternStart := tagOffset + tagLength
	cuts := []int{
		0,                         // empty file
		500,                       // inside the sample headers
		tagOffset + 2,             // inside the tag
		patternStart,              // right after the pattern table
		patternStart + 1024 + 500, // inside the second pattern
		len(full) - 1,             // last sample byte missing
	}
	for _, n := range cuts {
		mod, err := parseBytes(t, full[:n])
		if err == nil {
			t.Errorf("cut at %d: expected an error", n)
			continue
		}
		if mod != nil {
			t.Errorf("cut at %d: got a partial module", n)
		}
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("cut at %d: error %v is not ErrTruncated", n, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: error %v is not io.ErrUnexpectedEOF", n, err)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("cut at %d: error %v is not a *ParseError", n, err)
		}
	}
}

func TestParseSongLengthTooLong(t *testing.T) {
	tm := testModule{tag: "M.K.", sequence: []byte{0}, numPatterns: 1}
	data := tm.encode()
	data[titleLength+31*sampleHeaderLength] = 200

	_, err := parseBytes(t, data)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("got error %v, want ErrInvalidData", err)
	}
}

func TestParseEmptySequence(t *testing.T) {
	tm := testModule{tag: "M.K."}
	mod, err := parseBytes(t, tm.encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Patterns) != 0 || len(mod.Sequence) != 0 {
		t.Errorf("got %d patterns and sequence %v, want none", len(mod.Patterns), mod.Sequence)
	}
	if mod.NumChannels() != 0 {
		t.Errorf("NumChannels() = %d, want 0", mod.NumChannels())
	}
}

func TestParserSingleUse(t *testing.T) {
	tm := testModule{tag: "M.K.", sequence: []byte{0}, numPatterns: 1}
	p := NewParser(bytes.NewReader(tm.encode()), quietLogger)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Parse(); err == nil {
		t.Errorf("second Parse should fail")
	}
}

func TestParseWarnings(t *testing.T) {
	tm := testModule{
		tag: "M.K.",
		samples: []testSample{
			{name: "loud", finetune: 9, volume: 70, repeatOffset: 1, repeatLength: 4, data: []int8{1, 2, 3, 4}},
			{name: "fine", finetune: -8, volume: 64, data: []int8{1, 2}},
		},
		sequence:    []byte{70},
		numPatterns: 63,
	}
	p := NewParser(bytes.NewReader(tm.encode()), quietLogger)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sample1 := int64(titleLength)
	want := []int64{sample1 + 25, sample1 + 24, sample1 + 26, titleLength + 31*sampleHeaderLength + 2}
	got := p.Warnings()
	if len(got) != len(want) {
		t.Fatalf("got warnings %s, want %d", spew.Sdump(got), len(want))
	}
	for i, w := range got {
		if w.Offset != want[i] {
			t.Errorf("warning %d (%v): got offset %d, want %d", i, w, w.Offset, want[i])
		}
	}

	clean := testModule{tag: "M.K.", sequence: []byte{0}, numPatterns: 1}
	p = NewParser(bytes.NewReader(clean.encode()), quietLogger)
	if _, err := p.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w := p.Warnings(); len(w) != 0 {
		t.Errorf("got warnings %v for a clean file", w)
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("hello\x00\x00\x00"), "hello"},
		{[]byte("full"), "full"},
		{[]byte("a\x00b"), "a"},
		{[]byte{0, 'x'}, ""},
		{[]byte{'o', 0xff, 'k', 0}, ""},
		{[]byte("caf\xc3\xa9\x00"), "café"},
	}
	for _, tt := range tests {
		if got := decodeString(tt.in); got != tt.want {
			t.Errorf("decodeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
