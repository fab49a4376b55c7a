// Package manifest fetches a link-manifest document (an llms.txt-style
// outline of section headers and linked entries) and resolves each entry
// into fetched page content.
package manifest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/fetch"
)

var (
	h2Pattern    = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	h1Pattern    = regexp.MustCompile(`^#\s+(.+?)\s*$`)
	entryPattern = regexp.MustCompile(`^-\s*\[(.+?)\]\((\S+?)\)(?:\s*:\s*(.*))?$`)
)

// Entry is a single bullet parsed out of the manifest, with its URL already
// resolved against the manifest's own location.
type Entry struct {
	Title       string
	URL         string
	Description string
	Section     string
	Optional    bool
}

// Parse reads a manifest document's body and returns its entries in order.
// manifestURL anchors scheme-less entry URLs (absolute paths resolve against
// its origin, relative paths against its full URL).
func Parse(manifestURL, body string) ([]Entry, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err)
	}

	var entries []Entry
	section := ""
	sectionSet := false
	optional := false

	for _, line := range strings.Split(body, "\n") {
		if m := h2Pattern.FindStringSubmatch(line); m != nil {
			section = m[1]
			sectionSet = true
			optional = strings.Contains(strings.ToLower(section), "optional")
			continue
		}
		if !sectionSet {
			if m := h1Pattern.FindStringSubmatch(line); m != nil {
				section = m[1]
				optional = strings.Contains(strings.ToLower(section), "optional")
				continue
			}
		}
		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		resolved := resolveURL(base, m[2])
		entries = append(entries, Entry{
			Title:       m[1],
			URL:         resolved,
			Description: strings.TrimSpace(m[3]),
			Section:     section,
			Optional:    optional,
		})
	}
	return entries, nil
}

func resolveURL(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// DerivePath strips the leading slash and trailing .md from a URL's path,
// defaulting to "index" when nothing remains.
func DerivePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "index"
	}
	p := strings.TrimPrefix(u.Path, "/")
	p = strings.TrimSuffix(p, ".md")
	if p == "" {
		return "index"
	}
	return p
}

// Fetcher retrieves a manifest and every entry it names.
type Fetcher struct {
	client *http.Client
	Logger *slog.Logger
}

// NewFetcher builds a Fetcher with a pooled, timeout-bounded HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{MaxIdleConnsPerHost: 8, IdleConnTimeout: 30 * time.Second},
		},
		Logger: slog.Default(),
	}
}

// WithClient overrides the HTTP client, for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// FetchAll retrieves the manifest at manifestURL, parses it, and fetches
// every entry (filtered by includeOptional). Per-entry failures are logged
// and skipped; only a failure to retrieve the manifest itself is fatal.
func (f *Fetcher) FetchAll(ctx context.Context, manifestURL string, includeOptional bool) ([]fetch.Document, error) {
	body, err := f.get(ctx, manifestURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetchFatal, err)
	}

	entries, err := Parse(manifestURL, body)
	if err != nil {
		return nil, err
	}

	var docs []fetch.Document
	for _, e := range entries {
		if e.Optional && !includeOptional {
			continue
		}
		doc, err := f.fetchEntry(ctx, e)
		if err != nil {
			f.Logger.Warn("manifest entry fetch failed", "url", e.URL, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (f *Fetcher) fetchEntry(ctx context.Context, e Entry) (fetch.Document, error) {
	content, err := f.get(ctx, e.URL)
	if err != nil && !strings.HasSuffix(e.URL, ".md") {
		content, err = f.get(ctx, e.URL+".md")
	}
	if err != nil {
		return fetch.Document{}, err
	}
	return fetch.Document{
		URL:         e.URL,
		Title:       e.Title,
		Content:     content,
		Path:        DerivePath(e.URL),
		Section:     e.Section,
		Description: e.Description,
		Optional:    e.Optional,
	}, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindFetchFatal, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindFetchTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.New(errs.KindFetchTransient, "non-2xx response: "+resp.Status, nil)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.KindFetchTransient, err)
	}
	return string(b), nil
}
