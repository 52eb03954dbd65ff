// Package config loads the render settings used by the command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/QEStudios/trackermod/player"
)

// Render describes the PCM to produce and the machine to emulate.
type Render struct {
	SampleRate   int    `yaml:"sample_rate"`
	SampleFormat string `yaml:"sample_format"` // i16, u16 or f32
	Channels     int    `yaml:"channels"`      // 1 or 2
	Clock        string `yaml:"clock"`         // pal or ntsc
}

// Default returns 48 kHz 16-bit stereo on a PAL machine.
func Default() Render {
	return Render{
		SampleRate:   48000,
		SampleFormat: "i16",
		Channels:     2,
		Clock:        "pal",
	}
}

// Load reads a YAML file on top of the defaults. Keys that aren't known are an error.
func Load(path string) (Render, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Render{}, fmt.Errorf("cannot read config file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return Render{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (Render, error) {
	r := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		// An empty document leaves the defaults alone.
		return Render{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Render{}, err
	}
	return r, nil
}

// Validate checks every field.
func (r Render) Validate() error {
	if _, err := r.OutputFormat(); err != nil {
		return err
	}
	if _, err := r.ClockFreq(); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	return nil
}

// OutputFormat converts the settings into the player's output format.
func (r Render) OutputFormat() (player.OutputFormat, error) {
	if r.SampleRate <= 0 || r.SampleRate > 1_000_000 {
		return player.OutputFormat{}, fmt.Errorf("sample_rate: %d is out of range", r.SampleRate)
	}
	if r.Channels != 1 && r.Channels != 2 {
		return player.OutputFormat{}, fmt.Errorf("channels: %w, got %d", player.ErrChannelCount, r.Channels)
	}
	sampleFormat, err := player.ParseSampleFormat(r.SampleFormat)
	if err != nil {
		return player.OutputFormat{}, fmt.Errorf("sample_format: %w", err)
	}
	return player.OutputFormat{
		SampleRate:   uint32(r.SampleRate),
		SampleFormat: sampleFormat,
		ChannelCount: uint16(r.Channels),
	}, nil
}

func (r Render) ClockFreq() (player.ClockFreq, error) {
	return player.ParseClockFreq(r.Clock)
}
