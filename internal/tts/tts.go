// Package tts turns text plus a voice identifier into playable audio bytes.
// One implementation exists per vendor; the active one is chosen by
// configuration, never guessed from a response shape.
package tts

import (
	"context"

	"github.com/vedantghorpade1/Sarvam/internal/fault"
)

// Request is the request-scoped synthesis input. Nothing here is persisted.
type Request struct {
	Text         string
	VoiceID      string
	LanguageCode string
}

// Synthesizer produces audio/mpeg bytes for a synthesis request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

func (r Request) validate() error {
	if r.Text == "" {
		return fault.New(fault.KindInvalidArgument, "text to speak is required")
	}
	if r.VoiceID == "" {
		return fault.New(fault.KindInvalidArgument, "a voice id is required")
	}
	return nil
}
