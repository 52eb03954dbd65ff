package protracker

import (
	"bytes"
	"encoding/binary"
)

// Helpers to build module files in memory for the tests.

// Written where a legacy module would have no tag.
var legacyGap = []byte{0xde, 0xad, 0xbe, 0xef}

type testSample struct {
	name         string
	finetune     int8
	volume       uint8
	repeatOffset uint16 // In words.
	repeatLength uint16 // In words.
	data         []int8 // Must have an even length.
}

type testCell struct {
	sample uint8
	period uint16
	effect uint8
	x, y   uint8
}

type cellPos struct {
	pattern, division, channel int
}

type testModule struct {
	title       string
	tag         string // Empty for a legacy 15 sample module.
	samples     []testSample
	sequence    []byte
	numPatterns int
	cells       map[cellPos]testCell
}

func encodeCell(c testCell) []byte {
	return []byte{
		c.sample&0xf0 | byte(c.period>>8)&0x0f,
		byte(c.period),
		c.sample<<4 | c.effect&0x0f,
		c.x<<4 | c.y&0x0f,
	}
}

func padded(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func (tm testModule) encode() []byte {
	var buf bytes.Buffer
	numSamples := 31
	if tm.tag == "" {
		numSamples = 15
	}

	buf.Write(padded(tm.title, titleLength))
	for i := range numSamples {
		var s testSample
		if i < len(tm.samples) {
			s = tm.samples[i]
		}
		buf.Write(padded(s.name, sampleNameLength))
		binary.Write(&buf, binary.BigEndian, uint16(len(s.data)/2))
		buf.WriteByte(byte(s.finetune))
		buf.WriteByte(s.volume)
		binary.Write(&buf, binary.BigEndian, s.repeatOffset)
		binary.Write(&buf, binary.BigEndian, s.repeatLength)
	}

	buf.WriteByte(byte(len(tm.sequence)))
	buf.WriteByte(127)
	buf.Write(padded(string(tm.sequence), patternTableLength))
	if tm.tag != "" {
		buf.WriteString(tm.tag)
	} else {
		// Skipped by the parser like a tag.
		buf.Write(legacyGap)
	}

	for p := range tm.numPatterns {
		for d := range DivisionsPerPattern {
			for c := range 4 {
				buf.Write(encodeCell(tm.cells[cellPos{p, d, c}]))
			}
		}
	}

	for i := range numSamples {
		if i >= len(tm.samples) {
			break
		}
		for _, v := range tm.samples[i].data {
			buf.WriteByte(byte(v))
		}
	}
	return buf.Bytes()
}
