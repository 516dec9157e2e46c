// Package main provides the console air quality tracker: it greets the user,
// asks for a city and reads the report aloud line by line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/app"
	"github.com/breatheroute/airtracker/internal/config"
	"github.com/breatheroute/airtracker/internal/narration"
	"github.com/breatheroute/airtracker/internal/report"
)

// Version is set at compile time via ldflags.
var Version = "dev"

// errNoCity is returned when input ends before a city is entered.
var errNoCity = errors.New("no city entered")

type reportGenerator interface {
	Generate(ctx context.Context, city string) (*report.Result, error)
}

func main() {
	city := flag.String("city", "", "city to report on (prompted when empty)")
	verbose := flag.Bool("v", false, "log provider activity to stderr")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("service", "airtracker").
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack := app.Build(app.Options{Config: cfg, Logger: log})
	speaker := &narration.ConsoleSpeaker{Out: os.Stdout, LineDelay: cfg.NarrationLineDelay}

	if err := run(ctx, stack.Reports, speaker, os.Stdin, os.Stdout, *city); err != nil {
		log.Debug().Err(err).Msg("tracker finished with error")
		os.Exit(1)
	}
}

// run greets the user, reads a city unless one was given, and narrates the
// report. Any failure is spoken as an apology and returned.
func run(ctx context.Context, reports reportGenerator, sp narration.Speaker, in io.Reader, out io.Writer, city string) error {
	if err := sp.Speak(ctx, narration.ConsoleGreeting+"\n"); err != nil {
		return err
	}

	if strings.TrimSpace(city) == "" {
		if err := sp.Speak(ctx, narration.CityPrompt); err != nil {
			return err
		}
		fmt.Fprint(out, "Enter City Name: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read city: %w", err)
		}
		city = strings.TrimSpace(line)
		if city == "" {
			_ = sp.Speak(ctx, narration.FetchFailure)
			return errNoCity
		}
	}

	result, err := reports.Generate(ctx, city)
	if err != nil {
		_ = sp.Speak(ctx, fmt.Sprintf("Error: %s\n%s", err, narration.FetchFailure))
		return err
	}

	return narration.Narrate(ctx, sp, result.Narrative)
}
