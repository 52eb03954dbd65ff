package protracker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"unicode/utf8"
)

// Layout constants of the file format.
const (
	titleLength        = 20
	sampleNameLength   = 22
	sampleHeaderLength = sampleNameLength + 2 + 1 + 1 + 2 + 2
	patternTableLength = 128
	tagLength          = 4
	cellLength         = 4
	maxVolume          = 64

	// 20 + 31 * 30 + 1 + 1 + 128
	tagOffset = titleLength + 31*sampleHeaderLength + 1 + 1 + patternTableLength
)

// The layout selected by the format tag.
type formatInfo struct {
	numSamples  int
	numChannels int
	maxPattern  int
}

// lookupFormat returns the layout for a format tag. Unknown tags are old 15-sample modules.
// The 6 and 8 channel tags are read as 4 channel modules, matching the replayer this emulates.
func lookupFormat(tag string) (formatInfo, bool) {
	switch tag {
	case "M.K.", "FLT4", "4CHN":
		return formatInfo{31, 4, 63}, true
	case "M!K!":
		return formatInfo{31, 4, 255}, true
	case "6CHN":
		return formatInfo{31, 4, 63}, true
	case "FLT8", "8CHN":
		return formatInfo{31, 4, 63}, true
	default:
		return formatInfo{15, 4, 63}, false
	}
}

// A problem in the file that doesn't stop it from being played.
type ParseWarning struct {
	Offset  int64
	Message string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("offset %#x: %s", w.Offset, w.Message)
}

type Parser struct {
	r      io.ReadSeeker
	logger *log.Logger
	offset int64 // Current position in r.

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to read a module from r.
func NewParser(r io.ReadSeeker, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{
		r:      r,
		logger: logger,
	}
}

// Warnings returns the non-fatal problems found by Parse.
func (p *Parser) Warnings() []ParseWarning {
	return append([]ParseWarning(nil), p.warnings...)
}

// addWarning records a problem found at offset.
func (p *Parser) addWarning(offset int64, format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	})
}

// Deserialize reads a whole module from r using the default logger.
func Deserialize(r io.ReadSeeker) (*Module, error) {
	return NewParser(r, nil).Parse()
}

// Parse reads the module. Either a complete Module or an error is returned, never both.
func (p *Parser) Parse() (*Module, error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true

	// The format tag sits after the full 31 sample header block,
	// so look there first to find out how the rest of the file is laid out.
	if err := p.seek(tagOffset); err != nil {
		return nil, err
	}
	tagBytes, err := p.read(tagLength, "format tag")
	if err != nil {
		return nil, err
	}
	tag := string(tagBytes)
	format, known := lookupFormat(tag)
	if known {
		p.logger.Printf("format tag %q detected", tag)
	} else {
		p.logger.Printf("no known format tag (found %q), reading as a %d sample module", tag, format.numSamples)
	}

	// Go back to the start of the file.
	if err := p.seek(0); err != nil {
		return nil, err
	}

	titleBytes, err := p.read(titleLength, "title")
	if err != nil {
		return nil, err
	}
	mod := &Module{
		Title: decodeString(titleBytes),
		Tag:   tag,
	}

	mod.Samples = make([]Sample, format.numSamples)
	for i := range mod.Samples {
		if err := p.parseSampleHeader(&mod.Samples[i], i+1); err != nil {
			return nil, err
		}
	}

	songLength, err := p.readByte("song length")
	if err != nil {
		return nil, err
	}
	if int(songLength) > patternTableLength {
		return nil, p.errorf(p.offset-1, "song length", "%w: %d is longer than the %d entry pattern table", ErrInvalidData, songLength, patternTableLength)
	}
	// Legacy restart position, ignored.
	if _, err := p.readByte("restart position"); err != nil {
		return nil, err
	}

	tableStart := p.offset
	sequence, err := p.read(int(songLength), "pattern table")
	if err != nil {
		return nil, err
	}
	mod.Sequence = bytes.Clone(sequence)

	// Skip the rest of the pattern table and the already read tag.
	// Legacy 15 sample files have no tag, but the 4 bytes are skipped for them as well.
	padding := patternTableLength - int(songLength) + tagLength
	if _, err := p.read(padding, "pattern table padding"); err != nil {
		return nil, err
	}

	// The number of stored patterns is not in the file. It follows from the highest pattern index used.
	numPatterns := 0
	for _, pat := range mod.Sequence {
		numPatterns = max(numPatterns, int(pat)+1)
	}
	if numPatterns > format.maxPattern {
		p.addWarning(tableStart, "pattern table refers to pattern %d, only %d can be stored", numPatterns-1, format.maxPattern)
		numPatterns = format.maxPattern
	}

	mod.Patterns = make([]Pattern, numPatterns)
	for i := range mod.Patterns {
		if err := p.parsePattern(&mod.Patterns[i], i, format.numChannels); err != nil {
			return nil, err
		}
	}

	for i := range mod.Samples {
		if err := p.parseSampleData(&mod.Samples[i], i+1); err != nil {
			return nil, err
		}
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing file:")
		for _, warning := range p.warnings {
			p.logger.Print(warning)
		}
	}

	p.logger.Printf("read %q: %d samples, %d patterns, song length %d", mod.Title, len(mod.Samples), len(mod.Patterns), len(mod.Sequence))
	return mod, nil
}

// parseSampleHeader reads the 30 byte header of sample number no. The PCM data comes later.
func (p *Parser) parseSampleHeader(s *Sample, no int) error {
	what := fmt.Sprintf("sample %d header", no)
	start := p.offset
	buf, err := p.read(sampleHeaderLength, what)
	if err != nil {
		return err
	}

	// Lengths and offsets are stored in 16-bit words.
	s.Name = decodeString(buf[0:sampleNameLength])
	s.Length = uint32(binary.BigEndian.Uint16(buf[22:24])) * 2
	s.Finetune = int8(buf[24])
	s.Volume = buf[25]
	s.RepeatOffset = uint32(binary.BigEndian.Uint16(buf[26:28])) * 2
	s.RepeatLength = uint32(binary.BigEndian.Uint16(buf[28:30])) * 2

	if s.Volume > maxVolume {
		p.addWarning(start+25, "sample %d volume %d is above %d", no, s.Volume, maxVolume)
	}
	if s.Finetune < -8 || s.Finetune > 7 {
		p.addWarning(start+24, "sample %d finetune %d is outside -8..7", no, s.Finetune)
	}
	if s.Loops() && s.RepeatOffset+s.RepeatLength > s.Length {
		p.addWarning(start+26, "sample %d loop %d+%d runs past its length %d", no, s.RepeatOffset, s.RepeatLength, s.Length)
	}
	return nil
}

func (p *Parser) parsePattern(pat *Pattern, no int, numChannels int) error {
	what := fmt.Sprintf("pattern %d", no)
	for d := range pat.Divisions {
		start := p.offset
		buf, err := p.read(numChannels*cellLength, what)
		if err != nil {
			return err
		}

		channels := make([]ChannelData, numChannels)
		for c := range channels {
			cell := buf[c*cellLength : (c+1)*cellLength]
			cd, err := decodeChannelData(cell)
			if err != nil {
				return p.errorf(start+int64(c*cellLength), fmt.Sprintf("%s division %d channel %d", what, d, c), "%w", err)
			}
			channels[c] = cd
		}
		pat.Divisions[d].Channels = channels
	}
	return nil
}

// decodeChannelData splits a 4 byte cell into its fields.
//
//	byte 0: sample hi nibble | period bits 8-11
//	byte 1: period bits 0-7
//	byte 2: sample lo nibble | effect type
//	byte 3: effect x         | effect y
func decodeChannelData(cell []byte) (ChannelData, error) {
	sample := cell[0]&0xf0 | cell[2]>>4
	period := uint16(cell[0]&0x0f)<<8 | uint16(cell[1])

	effect, err := decodeEffect(cell[2]&0x0f, cell[3]>>4, cell[3]&0x0f)
	if err != nil {
		return ChannelData{}, err
	}

	return ChannelData{
		Sample: sample,
		Period: period,
		Effect: effect,
	}, nil
}

func (p *Parser) parseSampleData(s *Sample, no int) error {
	if s.Length == 0 {
		return nil
	}
	buf, err := p.read(int(s.Length), fmt.Sprintf("sample %d data", no))
	if err != nil {
		return err
	}

	// Reinterpret as signed, no scaling.
	s.Data = make([]int8, len(buf))
	for i, b := range buf {
		s.Data[i] = int8(b)
	}
	return nil
}

// decodeString converts a fixed length NUL padded field into a string.
// Fields that aren't valid UTF-8 come back empty.
func decodeString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

func (p *Parser) seek(offset int64) error {
	if _, err := p.r.Seek(offset, io.SeekStart); err != nil {
		return p.errorf(offset, "seek", "%w", err)
	}
	p.offset = offset
	return nil
}

// read reads exactly n bytes. A short read is reported as ErrTruncated.
func (p *Parser) read(n int, what string) ([]byte, error) {
	start := p.offset
	buf := make([]byte, n)
	got, err := io.ReadFull(p.r, buf)
	p.offset += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, p.errorf(start, what, "%w: %w", ErrTruncated, io.ErrUnexpectedEOF)
		}
		return nil, p.errorf(start, what, "%w", err)
	}
	return buf, nil
}

func (p *Parser) readByte(what string) (byte, error) {
	buf, err := p.read(1, what)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *Parser) errorf(offset int64, what string, format string, args ...any) error {
	return &ParseError{
		Offset: offset,
		What:   what,
		Err:    fmt.Errorf(format, args...),
	}
}
