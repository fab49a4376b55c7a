package search

import (
	"sort"

	"github.com/mcp-docs/mcp-docs/internal/store"
)

// DefaultRRFConstant is the smoothing constant used across the fusion
// literature (Azure AI Search, OpenSearch default to the same value).
const DefaultRRFConstant = 60

// fusionKey identifies a chunk for fusion purposes: the document URL plus
// the first 100 characters of its content, so the same passage surfaced by
// both legs collapses onto one row instead of appearing twice.
type fusionKey struct {
	url    string
	prefix string
}

func keyFor(h store.ChunkHit) fusionKey {
	prefix := h.Content
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	return fusionKey{url: h.URL, prefix: prefix}
}

type fusedRow struct {
	hit   store.ChunkHit
	score float64
}

// fuseRRF combines a vector leg and a lexical leg with Reciprocal Rank
// Fusion: each result at 0-indexed rank r in a leg contributes
// 1/(k+r+1) to its key's combined score. A key present in both legs sums
// both contributions. If the lexical leg is empty, vector order is
// returned unchanged — there is nothing to fuse against. Ties break by
// descending combined score, then by the fusion key itself so the order
// is deterministic across runs.
func fuseRRF(vector, lexical []store.ChunkHit, k int) []store.ChunkHit {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	if len(lexical) == 0 {
		return vector
	}

	rows := make(map[fusionKey]*fusedRow, len(vector)+len(lexical))
	order := make([]fusionKey, 0, len(vector)+len(lexical))

	add := func(hits []store.ChunkHit) {
		for rank, h := range hits {
			key := keyFor(h)
			row, ok := rows[key]
			if !ok {
				row = &fusedRow{hit: h}
				rows[key] = row
				order = append(order, key)
			}
			row.score += 1.0 / float64(k+rank+1)
		}
	}
	add(vector)
	add(lexical)

	sort.Slice(order, func(i, j int) bool {
		ri, rj := rows[order[i]], rows[order[j]]
		if ri.score != rj.score {
			return ri.score > rj.score
		}
		if order[i].url != order[j].url {
			return order[i].url < order[j].url
		}
		return order[i].prefix < order[j].prefix
	})

	out := make([]store.ChunkHit, 0, len(order))
	for _, key := range order {
		row := rows[key]
		hit := row.hit
		hit.Distance = 1 - row.score
		out = append(out, hit)
	}
	return out
}
