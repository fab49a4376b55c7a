package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcp-docs/mcp-docs/internal/store"
)

func hit(id int64, url, content string) store.ChunkHit {
	return store.ChunkHit{ChunkID: id, DocumentID: id, URL: url, Content: content}
}

func TestFuseRRF_EmptyLexicalFallsBackToVectorOrder(t *testing.T) {
	vector := []store.ChunkHit{hit(1, "a", "content a"), hit(2, "b", "content b")}
	out := fuseRRF(vector, nil, DefaultRRFConstant)
	assert.Equal(t, vector, out)
}

func TestFuseRRF_CombinesScoresForSharedKey(t *testing.T) {
	vector := []store.ChunkHit{hit(1, "a", "same content"), hit(2, "b", "other content")}
	lexical := []store.ChunkHit{hit(1, "a", "same content"), hit(3, "c", "third content")}

	out := fuseRRF(vector, lexical, 60)
	assert.Equal(t, int64(1), out[0].DocumentID) // present in both legs at rank 0, highest score

	var aSeen, bSeen, cSeen bool
	for _, h := range out {
		switch h.URL {
		case "a":
			aSeen = true
		case "b":
			bSeen = true
		case "c":
			cSeen = true
		}
	}
	assert.True(t, aSeen && bSeen && cSeen)
}

func TestFuseRRF_DistanceIsOneMinusScore(t *testing.T) {
	vector := []store.ChunkHit{hit(1, "a", "x")}
	lexical := []store.ChunkHit{hit(1, "a", "x")}

	out := fuseRRF(vector, lexical, 60)
	expectedScore := 1.0/61.0 + 1.0/61.0
	assert.InDelta(t, 1-expectedScore, out[0].Distance, 1e-9)
}

func TestFuseRRF_TiesBreakByURLThenPrefix(t *testing.T) {
	// Two distinct keys landing at the same combined score (both appear
	// only in one leg, same rank) should order deterministically by URL.
	vector := []store.ChunkHit{hit(1, "z", "content z")}
	lexical := []store.ChunkHit{hit(2, "a", "content a")}

	out := fuseRRF(vector, lexical, 60)
	require := out
	assert.Equal(t, "a", require[0].URL)
	assert.Equal(t, "z", require[1].URL)
}

func TestFuseRRF_DefaultsKWhenNonPositive(t *testing.T) {
	vector := []store.ChunkHit{hit(1, "a", "x")}
	lexical := []store.ChunkHit{hit(1, "a", "x")}

	out := fuseRRF(vector, lexical, 0)
	expectedScore := 1.0/float64(DefaultRRFConstant+1) * 2
	assert.InDelta(t, 1-expectedScore, out[0].Distance, 1e-9)
}
