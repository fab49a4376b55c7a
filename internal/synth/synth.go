// Package synth defines the boundary to the auxiliary description and
// answer-synthesis collaborator. Both operations are external by design —
// this package only names the interface and the fallback behavior the
// ingestion pipeline depends on when no real
// collaborator is wired in, or when the wired one fails.
package synth

import (
	"context"
	"fmt"
	"strings"
)

// Collaborator derives human-readable text from retrieved material. A real
// implementation would forward to a generative model; it lives outside
// this module's scope.
type Collaborator interface {
	// Describe produces a short description of a source from its name, its
	// base URL, and a sample of its document titles.
	Describe(ctx context.Context, name, url string, titles []string) (string, error)

	// Synthesize produces an answer to query given the retrieved documents'
	// content.
	Synthesize(ctx context.Context, query string, docs []string) (string, error)
}

const (
	fallbackSynthesis = "No synthesis available."
)

// Fallback is a Collaborator that never calls out; every method returns the
// same default text a real collaborator would fall back to on failure.
type Fallback struct{}

func (Fallback) Describe(_ context.Context, name, url string, _ []string) (string, error) {
	return defaultDescription(name, url), nil
}

func (Fallback) Synthesize(_ context.Context, _ string, _ []string) (string, error) {
	return fallbackSynthesis, nil
}

func defaultDescription(name, url string) string {
	if url == "" {
		return fmt.Sprintf("Documentation for %s.", name)
	}
	return fmt.Sprintf("Documentation for %s (%s).", name, url)
}

// Describe calls c.Describe and substitutes the default description on any
// failure or empty result, never propagating the error to the caller.
func Describe(ctx context.Context, c Collaborator, name, url string, titles []string) string {
	if c == nil {
		return defaultDescription(name, url)
	}
	desc, err := c.Describe(ctx, name, url, titles)
	if err != nil || strings.TrimSpace(desc) == "" {
		return defaultDescription(name, url)
	}
	return desc
}

// Synthesize calls c.Synthesize and substitutes the default fallback text on
// any failure, never propagating the error to the caller.
func Synthesize(ctx context.Context, c Collaborator, query string, docs []string) string {
	if c == nil {
		return fallbackSynthesis
	}
	answer, err := c.Synthesize(ctx, query, docs)
	if err != nil || strings.TrimSpace(answer) == "" {
		return fallbackSynthesis
	}
	return answer
}
