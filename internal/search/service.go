package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcp-docs/mcp-docs/internal/cleaner"
	"github.com/mcp-docs/mcp-docs/internal/embed"
	"github.com/mcp-docs/mcp-docs/internal/embedcache"
	"github.com/mcp-docs/mcp-docs/internal/errs"
	"github.com/mcp-docs/mcp-docs/internal/store"
)

// Service answers search and search_group queries against a Store.
type Service struct {
	Store    *store.Store
	Cache    *embedcache.Cache
	Embedder embed.Embedder
	Logger   *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Search runs the per-source path against a single named source.
func (s *Service) Search(ctx context.Context, sourceName, query string, limit, maxTotalChars int) (*Output, error) {
	start := time.Now()
	limit = limitOrDefault(limit)
	maxTotalChars = maxCharsOrDefault(maxTotalChars)

	src, err := s.Store.GetSource(ctx, sourceName)
	if err != nil || src == nil {
		return nil, errs.NotFound("source", sourceName)
	}

	embedding, cacheHit, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	fetchLimit := fetchLimitFor(limit)
	filters := store.SearchFilters{SourceID: src.ID, Limit: fetchLimit}

	vector, lexical, err := s.runLegs(ctx, embedding, query, filters)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(vector, lexical, DefaultRRFConstant)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	out, err := s.materialize(ctx, fused, limit, maxTotalChars)
	if err != nil {
		return nil, err
	}
	s.logger().Info("search",
		"source", sourceName, "cache_hit", cacheHit,
		"vector_hits", len(vector), "lexical_hits", len(lexical),
		"results", len(out.Documents), "truncated", out.Truncated,
		"duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

// SearchGroup runs the grouped path across every source in group, or the
// subset named by sourceNames when non-empty.
func (s *Service) SearchGroup(ctx context.Context, group, query string, sourceNames []string, limit, maxTotalChars int) (*Output, error) {
	start := time.Now()
	limit = limitOrDefault(limit)
	maxTotalChars = maxCharsOrDefault(maxTotalChars)

	isGroup, err := s.Store.IsGroup(ctx, group)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}
	if !isGroup {
		return nil, errs.NotFound("group", group)
	}

	members, err := s.Store.SourcesByGroup(ctx, group)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}
	members = filterSources(members, sourceNames)
	if len(members) == 0 {
		return nil, errs.NotFound("group", group)
	}

	embedding, cacheHit, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	perSource := int(math.Ceil(float64(limit*3)/float64(len(members)))) + 2

	g, gctx := errgroup.WithContext(ctx)
	legs := make([][2][]store.ChunkHit, len(members))
	for i, src := range members {
		i, src := i, src
		g.Go(func() error {
			filters := store.SearchFilters{SourceID: src.ID, Limit: perSource}
			vector, lexical, err := s.runLegs(gctx, embedding, query, filters)
			if err != nil {
				return err
			}
			legs[i] = [2][]store.ChunkHit{vector, lexical}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}

	var flat []store.ChunkHit
	for _, leg := range legs {
		flat = append(flat, leg[0]...)
		flat = append(flat, leg[1]...)
	}
	sortByDistance(flat)

	out, err := s.materialize(ctx, flat, limit, maxTotalChars)
	if err != nil {
		return nil, err
	}
	s.logger().Info("search_group",
		"group", group, "sources", len(members), "cache_hit", cacheHit,
		"results", len(out.Documents), "truncated", out.Truncated,
		"duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, bool, error) {
	if v, ok := s.Cache.Get(query); ok {
		return v, true, nil
	}

	vectors, err := embed.EmbedWithRetry(ctx, s.Embedder, []string{query})
	if err != nil {
		return nil, false, errs.Wrap(errs.KindFetchTransient, err)
	}
	if len(vectors) == 0 {
		return nil, false, errs.New(errs.KindValidation, "embedder returned no vector for query", nil)
	}

	s.Cache.Set(query, vectors[0])
	return vectors[0], false, nil
}

// runLegs fans the vector and lexical searches out concurrently against
// one set of filters.
func (s *Service) runLegs(ctx context.Context, embedding []float32, query string, filters store.SearchFilters) (vector, lexical []store.ChunkHit, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.Store.VectorSearch(gctx, embedding, filters)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	g.Go(func() error {
		l, err := s.Store.LexicalSearch(gctx, query, filters)
		if err != nil {
			return err
		}
		lexical = l
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, errs.Wrap(errs.KindStorage, err)
	}
	return vector, lexical, nil
}

// materialize walks hits in rank order, dedupes to the first limit
// distinct document ids, fetches and cleans them, and appends them while
// the character budget allows — truncating the document that overflows it
// and stopping there.
func (s *Service) materialize(ctx context.Context, hits []store.ChunkHit, limit, maxTotalChars int) (*Output, error) {
	order := make([]int64, 0, limit)
	seen := make(map[int64]bool, limit)
	for _, h := range hits {
		if seen[h.DocumentID] {
			continue
		}
		seen[h.DocumentID] = true
		order = append(order, h.DocumentID)
		if len(order) == limit {
			break
		}
	}

	if len(order) == 0 {
		return &Output{Documents: []DocumentResult{}}, nil
	}

	docs, err := s.Store.GetDocumentsByIDs(ctx, order)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, err)
	}
	byID := make(map[int64]store.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	out := &Output{Documents: make([]DocumentResult, 0, len(order))}
	for _, id := range order {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		content := cleaner.Clean(doc.Content)
		remaining := maxTotalChars - out.TotalChars
		if remaining <= 0 {
			out.Truncated = true
			break
		}
		if len(content) > remaining {
			budget := remaining - len(cleaner.TruncationSuffix)
			if budget < 0 {
				budget = 0
			}
			content = cleaner.Truncate(content, budget)
			if len(content) > remaining {
				content = content[:remaining]
			}
			out.Truncated = true
			out.Documents = append(out.Documents, DocumentResult{Title: doc.Title, URL: doc.URL, Content: content})
			out.TotalChars += len(content)
			break
		}
		out.Documents = append(out.Documents, DocumentResult{Title: doc.Title, URL: doc.URL, Content: content})
		out.TotalChars += len(content)
	}
	return out, nil
}

func fetchLimitFor(limit int) int {
	f := limit * 3
	if f < 15 {
		f = 15
	}
	return f
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func maxCharsOrDefault(maxTotalChars int) int {
	if maxTotalChars <= 0 {
		return DefaultMaxTotalChars
	}
	return maxTotalChars
}

func filterSources(members []store.Source, names []string) []store.Source {
	if len(names) == 0 {
		return members
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]store.Source, 0, len(members))
	for _, m := range members {
		if want[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

func sortByDistance(hits []store.ChunkHit) {
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
}
