// Package trackermod loads ProTracker modules and renders them to PCM.
//
// The packages underneath do the work: parser/protracker reads the file,
// player/protracker plays it tick by tick and sink writes the result out.
package trackermod

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/QEStudios/trackermod/parser/protracker"
	"github.com/QEStudios/trackermod/player"
	ptplayer "github.com/QEStudios/trackermod/player/protracker"
	"github.com/QEStudios/trackermod/sink"
)

// LoadFile opens and parses the module at path.
func LoadFile(path string, logger *log.Logger) (*protracker.Module, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	mod, err := protracker.NewParser(file, logger).Parse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// Render plays mod from start to end into s and returns the number of frames written.
// The sink isn't closed. Cancelling ctx stops between ticks.
func Render(ctx context.Context, mod *protracker.Module, clock player.ClockFreq, format player.OutputFormat, s sink.Sink, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.Default()
	}

	p, err := ptplayer.New(mod, clock, format, logger)
	if err != nil {
		return 0, err
	}

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		buf := p.NextTick()
		if buf.Len() == 0 {
			break
		}
		if err := s.Write(buf); err != nil {
			pos, div, tick := p.Position()
			return frames, fmt.Errorf("position %d division %d tick %d: %w", pos, div, tick, err)
		}
		frames += buf.Len() / int(format.ChannelCount)
	}

	logger.Printf("rendered %d frames (%.1f s)", frames, float64(frames)/float64(format.SampleRate))
	return frames, nil
}
