package translate

import (
	"context"

	"FeedDigest/internal/ports"
)

// Passthrough is the no-op translator used when no service is configured:
// every input maps to itself.
type Passthrough struct{}

var _ ports.Translator = (*Passthrough)(nil)

// NewPassthrough builds the identity translator.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Translate returns the inputs unchanged.
func (*Passthrough) Translate(_ context.Context, texts []string) []string {
	out := make([]string, len(texts))
	copy(out, texts)
	return out
}
