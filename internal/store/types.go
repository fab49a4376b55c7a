package store

import "time"

// Source types recognized by the ingestion pipeline.
const (
	SourceTypeLinkManifest = "link_manifest"
	SourceTypeWebCrawl     = "web_crawl"
)

// Progress status values.
const (
	ProgressInProgress        = "in_progress"
	ProgressCompleted         = "completed"
	ProgressCompletedWithErrs = "completed_with_errors"
)

// SourceOptions holds the optional, independently-nullable crawl tuning
// knobs: crawl limit and include/exclude path globs.
type SourceOptions struct {
	CrawlLimit      int      `json:"crawl_limit,omitempty"`
	IncludeOptional bool     `json:"include_optional,omitempty"`
	IncludePaths    []string `json:"include_paths,omitempty"`
	ExcludePaths    []string `json:"exclude_paths,omitempty"`
}

// Source is a configured documentation source.
type Source struct {
	ID             int64
	Name           string
	Type           string
	BaseURL        string
	GroupName      string
	Description    string
	Options        *SourceOptions
	LastIngestedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Document is one fetched page or manifest entry.
type Document struct {
	ID          int64
	SourceID    int64
	URL         string
	Title       string
	Path        string
	Content     string
	ContentHash string
	Metadata    map[string]string
	UpdatedAt   time.Time
}

// Chunk is one embeddable slice of a document's cleaned content.
type Chunk struct {
	ID         int64
	DocumentID int64
	ChunkIndex int
	Content    string
	Embedding  []float32
	TokenCount int
}

// ChunkHit is a single retrieval result from either search leg.
type ChunkHit struct {
	ChunkID    int64
	DocumentID int64
	URL        string
	Content    string
	Distance   float64
}

// SearchFilters narrows vector_search and lexical_search to a source, and
// optionally to a path prefix or section.
type SearchFilters struct {
	SourceID   int64
	PathPrefix string
	Section    string
	Limit      int
}

// Progress tracks one ingestion run for a source.
type Progress struct {
	ID               int64
	SourceID         int64
	StartedAt        time.Time
	Total            int
	Processed        int
	Skipped          int
	Failed           int
	Status           string
	LastProcessedURL string
	ErrorMessage     string
}
