// Package ui renders ingestion progress: a plain line-based renderer for
// pipes and CI, and an interactive bubbletea bar for terminals.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is one step of the ingestion pipeline.
type Stage int

const (
	StageFetching Stage = iota
	StageChunking
	StageEmbedding
	StageStoring
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageFetching:
		return "Fetching"
	case StageChunking:
		return "Chunking"
	case StageEmbedding:
		return "Embedding"
	case StageStoring:
		return "Storing"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

func (s Stage) Icon() string {
	switch s {
	case StageFetching:
		return "FETCH"
	case StageChunking:
		return "CHUNK"
	case StageEmbedding:
		return "EMBED"
	case StageStoring:
		return "STORE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent is one progress update emitted by the ingest pipeline.
type ProgressEvent struct {
	Stage      Stage
	Current    int
	Total      int
	CurrentURL string
	Message    string
}

// ErrorEvent is a per-item failure or warning surfaced during ingestion.
type ErrorEvent struct {
	URL    string
	Err    error
	IsWarn bool
}

// StageTimings breaks down how long each pipeline stage took.
type StageTimings struct {
	Fetch time.Duration
	Chunk time.Duration
	Embed time.Duration
	Store time.Duration
}

// EmbedderInfo names the embedding provider used for a run.
type EmbedderInfo struct {
	Provider   string
	Model      string
	Dimensions int
}

// CompletionStats summarizes a finished ingestion run.
type CompletionStats struct {
	Documents int
	Chunks    int
	Duration  time.Duration
	Errors    int
	Warnings  int
	Stages    StageTimings
	Embedder  EmbedderInfo
}

// Renderer displays ingestion progress as it happens.
type Renderer interface {
	Start(ctx context.Context) error
	UpdateProgress(event ProgressEvent)
	AddError(event ErrorEvent)
	Complete(stats CompletionStats)
	Stop() error
}

// Config configures the renderer NewRenderer picks.
type Config struct {
	Output       io.Writer
	ForcePlain   bool
	NoColor      bool
	SpinnerStyle string
	SourceLabel  string // source/group name shown in the TUI header
}

type ConfigOption func(*Config)

func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

func WithSpinnerStyle(style string) ConfigOption {
	return func(c *Config) { c.SpinnerStyle = style }
}

func WithSourceLabel(label string) ConfigOption {
	return func(c *Config) { c.SourceLabel = label }
}

func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output, SpinnerStyle: "dots"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer returns a TUI renderer for interactive terminals and a plain
// line-based renderer for pipes, CI, or when plain output is forced.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(cfg)
	}
	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(cfg)
	}
	if DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
