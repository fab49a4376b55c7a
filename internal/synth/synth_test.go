package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCollaborator struct {
	desc    string
	descErr error
	answer  string
	ansErr  error
}

func (s stubCollaborator) Describe(context.Context, string, string, []string) (string, error) {
	return s.desc, s.descErr
}

func (s stubCollaborator) Synthesize(context.Context, string, []string) (string, error) {
	return s.answer, s.ansErr
}

func TestFallback_ReturnsDefaults(t *testing.T) {
	f := Fallback{}
	desc, err := f.Describe(context.Background(), "docs", "https://x.com", nil)
	assert.NoError(t, err)
	assert.Contains(t, desc, "docs")

	ans, err := f.Synthesize(context.Background(), "q", nil)
	assert.NoError(t, err)
	assert.Equal(t, fallbackSynthesis, ans)
}

func TestDescribe_UsesCollaboratorResult(t *testing.T) {
	c := stubCollaborator{desc: "a great source"}
	assert.Equal(t, "a great source", Describe(context.Background(), c, "docs", "https://x.com", nil))
}

func TestDescribe_FallsBackOnError(t *testing.T) {
	c := stubCollaborator{descErr: errors.New("boom")}
	got := Describe(context.Background(), c, "docs", "https://x.com", nil)
	assert.Contains(t, got, "docs")
}

func TestDescribe_FallsBackOnEmptyResult(t *testing.T) {
	c := stubCollaborator{desc: "  "}
	got := Describe(context.Background(), c, "docs", "", nil)
	assert.Contains(t, got, "docs")
}

func TestDescribe_NilCollaboratorFallsBack(t *testing.T) {
	got := Describe(context.Background(), nil, "docs", "", nil)
	assert.Contains(t, got, "docs")
}

func TestSynthesize_FallsBackOnError(t *testing.T) {
	c := stubCollaborator{ansErr: errors.New("boom")}
	assert.Equal(t, fallbackSynthesis, Synthesize(context.Background(), c, "q", nil))
}

func TestSynthesize_NilCollaboratorFallsBack(t *testing.T) {
	assert.Equal(t, fallbackSynthesis, Synthesize(context.Background(), nil, "q", nil))
}
