package narration

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/breatheroute/airtracker/internal/advisory"
)

// Speaker delivers text to the user.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// ConsoleSpeaker prints text one line at a time, pausing between lines
// to keep the pace of a voice reading it out.
type ConsoleSpeaker struct {
	Out       io.Writer
	LineDelay time.Duration
}

// Speak writes each line of text followed by a newline.
func (s *ConsoleSpeaker) Speak(ctx context.Context, text string) error {
	for _, line := range strings.Split(text, "\n") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(s.Out, line); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
		if s.LineDelay > 0 {
			select {
			case <-time.After(s.LineDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Narrate speaks every block of the narrative in display order,
// with a blank line after each block.
func Narrate(ctx context.Context, sp Speaker, n advisory.Narrative) error {
	for _, b := range n.Blocks {
		if err := sp.Speak(ctx, b.Body()+"\n"); err != nil {
			return fmt.Errorf("narrate %s block: %w", b.Kind, err)
		}
	}
	return nil
}
