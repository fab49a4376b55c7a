package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mcp-docs/mcp-docs/internal/errs"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTimeout    = 60 * time.Second
	defaultPoolSize   = 8
	defaultIdleExpiry = 30 * time.Second
)

// HTTPConfig configures an OpenAI-compatible embedding endpoint
// (EMBEDDING_PROVIDER, EMBEDDING_MODEL, EMBEDDING_DIMENSIONS).
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// HTTPEmbedder calls an OpenAI-style POST /embeddings endpoint.
type HTTPEmbedder struct {
	client *http.Client
	cfg    HTTPConfig
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder constructs an embedder against cfg, applying defaults for
// unset fields.
func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        defaultPoolSize,
		MaxIdleConnsPerHost: defaultPoolSize,
		MaxConnsPerHost:     defaultPoolSize * 2,
		IdleConnTimeout:     defaultIdleExpiry,
	}

	return &HTTPEmbedder{
		client: &http.Client{Transport: transport},
		cfg:    cfg,
	}
}

// Dimensions returns the configured embedding width.
func (e *HTTPEmbedder) Dimensions() int {
	return e.cfg.Dimensions
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedBatch sends all texts in a single provider call. An empty input
// returns an empty output without contacting the provider.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, errs.Wrap(errs.KindFetchTransient, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindFetchTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errs.New(errs.KindFetchTransient, fmt.Sprintf("embedding request: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetchTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindFetchTransient,
			fmt.Sprintf("embedding provider returned %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errs.Wrap(errs.KindFetchTransient, err)
	}

	out := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
