package protracker

import (
	"fmt"
	"strings"
)

// Info returns a human readable listing of the module: title, the samples that
// have data, the play sequence and every pattern.
func (m *Module) Info() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Title: %s\n", m.Title)

	b.WriteString("\nSamples:\n")
	b.WriteString(m.infoSamples())

	b.WriteString("\n\nSequence:\n")
	b.WriteString(infoSequence(m.Sequence))

	b.WriteString("\n\n")
	for i := range m.Patterns {
		fmt.Fprintf(&b, "Pattern %02x:\n", i)
		b.WriteString(m.infoPattern(&m.Patterns[i]))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Module) infoSamples() string {
	var lines []string
	for i, s := range m.Samples {
		if s.Length == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%02x %22s, ft: %2d, len: %04x, vol: %02x, roff: %04x, rlen:%04x",
			i+1, s.Name, s.Finetune, s.Length, s.Volume, s.RepeatOffset, s.RepeatLength))
	}
	return strings.Join(lines, "\n")
}

// infoSequence lays the sequence out in (up to) 8 rows, reading down the columns.
func infoSequence(sequence []uint8) string {
	var rows []string
	for k := range 8 {
		var entries []string
		for pos := k; pos < len(sequence); pos += 8 {
			entries = append(entries, fmt.Sprintf("%02x %02x", pos, sequence[pos]))
		}
		if len(entries) > 0 {
			rows = append(rows, strings.Join(entries, "   "))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Module) infoPattern(pat *Pattern) string {
	var b strings.Builder
	for i, div := range pat.Divisions {
		fmt.Fprintf(&b, "%02x      ", i)
		cells := make([]string, len(div.Channels))
		for c, cd := range div.Channels {
			cells[c] = m.infoChannel(cd)
		}
		b.WriteString(strings.Join(cells, "      "))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Module) infoChannel(cd ChannelData) string {
	if cd.Sample == 0 {
		return ".........."
	}

	// Samples beyond the table still get a name, using the default finetune.
	var finetune int8
	if s := m.Sample(cd.Sample); s != nil {
		finetune = s.Finetune
	}
	effect := "000"
	if cd.Effect != nil {
		effect = cd.Effect.String()
	}
	return fmt.Sprintf("%02x|%s|%s", cd.Sample, GetNote(finetune, cd.Period), effect)
}
