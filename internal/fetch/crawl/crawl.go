// Package crawl drives an asynchronous web-crawl job: start it, poll its
// status, and transform the finished pages into fetch.Document values.
package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mcp-docs/mcp-docs/internal/cleaner"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/fetch"
)

const (
	DefaultCrawlLimit   = 100
	DefaultPollInterval = 2 * time.Second
)

// Options configures a crawl job.
type Options struct {
	CrawlLimit   int
	IncludePaths []string
	ExcludePaths []string
	CachedURLs   []string
}

func (o Options) withDefaults() Options {
	if o.CrawlLimit <= 0 {
		o.CrawlLimit = DefaultCrawlLimit
	}
	return o
}

type pageMetadata struct {
	Title     string `json:"title"`
	SourceURL string `json:"sourceURL"`
	OgURL     string `json:"ogUrl"`
	URL       string `json:"url"`
}

type page struct {
	URL      string       `json:"url"`
	Markdown string       `json:"markdown"`
	Metadata pageMetadata `json:"metadata"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Data      []page `json:"data"`
}

type startRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit"`
	IncludePaths  []string      `json:"includePaths,omitempty"`
	ExcludePaths  []string      `json:"excludePaths,omitempty"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type startResponse struct {
	ID string `json:"id"`
}

// HTTPConfig points a Crawler at the crawl provider.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
}

// Crawler starts crawl jobs and polls them to completion.
type Crawler struct {
	client       *http.Client
	cfg          HTTPConfig
	PollInterval time.Duration
	Logger       *slog.Logger
}

// NewCrawler builds a Crawler against the given provider config.
func NewCrawler(cfg HTTPConfig) *Crawler {
	return &Crawler{
		client:       &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 4}},
		cfg:          cfg,
		PollInterval: DefaultPollInterval,
		Logger:       slog.Default(),
	}
}

// WithClient overrides the HTTP client, for tests.
func (c *Crawler) WithClient(cl *http.Client) *Crawler {
	c.client = cl
	return c
}

// Fetch starts a crawl rooted at baseURL, polls it to completion, and
// returns the crawled pages as documents. cached_urls whose host matches
// baseURL are folded into the exclude list so the crawler skips work the
// store already holds.
func (c *Crawler) Fetch(ctx context.Context, baseURL string, opts Options) ([]fetch.Document, error) {
	opts = opts.withDefaults()

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err)
	}

	exclude := append(append([]string{}, opts.ExcludePaths...), cachedURLPatterns(base, opts.CachedURLs)...)

	jobID, err := c.start(ctx, baseURL, opts, exclude)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetchFatal, err)
	}

	status, err := c.pollUntilDone(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if status.Status == "failed" || status.Status == "cancelled" {
		return nil, errs.New(errs.KindFetchFatal, "crawl ended with status "+status.Status, nil)
	}

	docs := make([]fetch.Document, 0, len(status.Data))
	for _, p := range status.Data {
		docs = append(docs, toDocument(base, p))
	}
	return docs, nil
}

func cachedURLPatterns(base *url.URL, cachedURLs []string) []string {
	var patterns []string
	for _, raw := range cachedURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host != base.Host {
			continue
		}
		patterns = append(patterns, u.Path)
	}
	return patterns
}

func (c *Crawler) start(ctx context.Context, baseURL string, opts Options, exclude []string) (string, error) {
	body, err := json.Marshal(startRequest{
		URL:          baseURL,
		Limit:        opts.CrawlLimit,
		IncludePaths: opts.IncludePaths,
		ExcludePaths: exclude,
		ScrapeOptions: scrapeOptions{
			Formats:         []string{"markdown"},
			OnlyMainContent: true,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/crawl", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.New(errs.KindFetchFatal, "crawl start failed: "+resp.Status, nil)
	}

	var out startResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Crawler) pollUntilDone(ctx context.Context, jobID string) (statusResponse, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastCompleted := -1
	for {
		select {
		case <-ctx.Done():
			return statusResponse{}, ctx.Err()
		case <-ticker.C:
			status, err := c.getStatus(ctx, jobID)
			if err != nil {
				return statusResponse{}, err
			}
			if status.Completed != lastCompleted {
				c.Logger.Info("crawl progress", "job_id", jobID, "completed", status.Completed, "total", status.Total)
				lastCompleted = status.Completed
			}
			switch status.Status {
			case "completed", "failed", "cancelled":
				return status, nil
			}
		}
	}
}

func (c *Crawler) getStatus(ctx context.Context, jobID string) (statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/crawl/"+jobID, nil)
	if err != nil {
		return statusResponse{}, err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return statusResponse{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return statusResponse{}, err
	}

	var out statusResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return statusResponse{}, err
	}
	return out, nil
}

var docsSuffixPattern = regexp.MustCompile(`(?i)\s*[-–]\s*(documentation|docs)\s*$`)

func toDocument(base *url.URL, p page) fetch.Document {
	pageURL := p.URL
	if pageURL == "" {
		pageURL = p.Metadata.URL
	}

	title := p.Metadata.Title
	if title == "" {
		title = firstHeaderLine(p.Markdown)
	}
	if title == "" {
		title = "Untitled"
	}
	title = docsSuffixPattern.ReplaceAllString(title, "")

	return fetch.Document{
		URL:     pageURL,
		Title:   title,
		Content: cleaner.Clean(p.Markdown),
		Path:    derivePath(base, pageURL),
	}
}

func firstHeaderLine(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "# "))
		if strings.Contains(strings.ToLower(text), "cookie") {
			continue
		}
		return text
	}
	return ""
}

func derivePath(base *url.URL, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "index"
	}
	if u.Host == base.Host {
		rel := strings.TrimPrefix(u.Path, strings.TrimSuffix(base.Path, "/"))
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			return "index"
		}
		return rel
	}
	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return "index"
	}
	return p
}
