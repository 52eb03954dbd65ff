package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"

	"github.com/QEStudios/trackermod"
	"github.com/QEStudios/trackermod/config"
	"github.com/QEStudios/trackermod/sink"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		outPath    string
		play       bool
		info       bool
		dump       bool
		configPath string
		render     = config.Default()
	)
	pflag.StringVarP(&outPath, "out", "o", "", "output WAV file (default: the module path with a .wav extension)")
	pflag.BoolVarP(&play, "play", "p", false, "play through the audio device instead of writing a file")
	pflag.BoolVarP(&info, "info", "i", false, "print the module contents and exit")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the parsed module structure")
	pflag.StringVarP(&configPath, "config", "c", "", "YAML render config")
	pflag.IntVarP(&render.SampleRate, "rate", "r", render.SampleRate, "output sample rate in Hz")
	pflag.StringVarP(&render.SampleFormat, "format", "f", render.SampleFormat, "output sample format (i16, u16, f32)")
	pflag.IntVarP(&render.Channels, "channels", "n", render.Channels, "output channels (1 or 2)")
	pflag.StringVar(&render.Clock, "clock", render.Clock, "Amiga clock (pal, ntsc)")
	pflag.Parse()

	render, err = loadRender(configPath, render)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	// Get the path of the module file.
	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	mod, err := trackermod.LoadFile(path, logger)
	if err != nil {
		logger.Fatalf("parse error: %v", err)
	}

	if dump {
		spew.Dump(mod)
	}
	if info {
		fmt.Print(mod.Info())
		return
	}

	format, err := render.OutputFormat()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	clock, err := render.ClockFreq()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var out sink.Sink
	if play {
		out, err = sink.NewOto(format)
		if err != nil {
			logger.Fatalf("audio error: %v", err)
		}
	} else {
		// Write to a .wav file in the same directory as the module unless told otherwise.
		if outPath == "" {
			outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
		}
		file, err := os.Create(outPath)
		if err != nil {
			logger.Fatalf("error creating output file: %v", err)
		}
		defer file.Close()

		out, err = sink.NewWav(file, format)
		if err != nil {
			logger.Fatalf("error creating output file: %v", err)
		}
		logger.Printf("Writing %v", outPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = trackermod.Render(ctx, mod, clock, format, out, logger)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, context.Canceled) {
		logger.Printf("Interrupted")
		return
	}
	if err != nil {
		logger.Fatalf("render error: %v", err)
	}
}

// loadRender applies a config file, if given, under the flags that were set explicitly.
func loadRender(path string, flags config.Render) (config.Render, error) {
	if path == "" {
		return flags, flags.Validate()
	}

	r, err := config.Load(path)
	if err != nil {
		return config.Render{}, err
	}
	set := pflag.CommandLine.Changed
	if set("rate") {
		r.SampleRate = flags.SampleRate
	}
	if set("format") {
		r.SampleFormat = flags.SampleFormat
	}
	if set("channels") {
		r.Channels = flags.Channels
	}
	if set("clock") {
		r.Clock = flags.Clock
	}
	return r, r.Validate()
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open ProTracker module").
		Filter("ProTracker modules (*.mod)", "mod").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", dialog.ErrCancelled
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath checks that p exists and is named like a module.
// Amiga style names put the extension first, as in "mod.intro".
func validatePath(p string) error {
	name := strings.ToLower(filepath.Base(p))
	if filepath.Ext(name) != ".mod" && !strings.HasPrefix(name, "mod.") {
		return fmt.Errorf("file must have .mod extension")
	}
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", p)
	}
	return nil
}
