// Package cohere is a minimal client for the Cohere v2 rerank endpoint.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/askdoc/askdoc/internal/errkind"
)

// Client communicates with the Cohere API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting the given Cohere base URL with bearer
// authentication.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 0,
		},
	}
}

// Result is one reranked document reference: the index into the submitted
// documents slice and its relevance score.
type Result struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

// rerankRequest is the JSON body for POST /v2/rerank.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// rerankResponse is the JSON returned by POST /v2/rerank.
type rerankResponse struct {
	Results []Result `json:"results"`
}

// Rerank scores documents against the query and returns the top-N references
// ordered by descending relevance.
func (c *Client) Rerank(ctx context.Context, model, query string, documents []string, topN int) ([]Result, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errkind.Errorf(errkind.Network, "rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := errkind.Network
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = errkind.Auth
		case http.StatusTooManyRequests:
			kind = errkind.RateLimit
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errkind.Errorf(kind, "rerank: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}

	for _, r := range result.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank: result index %d out of range (%d documents)", r.Index, len(documents))
		}
	}
	return result.Results, nil
}
