package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// Client talks to a Chroma server over its REST API. Embedding computation
// happens server-side; the client only ships text and metadata.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu     sync.Mutex
	collectionID string
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Upsert adds one record to the collection. A record whose ID already exists
// is reported as not inserted and left untouched.
func (c *Client) Upsert(ctx context.Context, record domain.Record) (bool, error) {
	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return false, err
	}

	exists, err := c.recordExists(ctx, collectionID, record.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	reqBody := map[string]any{
		"ids":       []string{record.ID},
		"documents": []string{record.Text},
		"metadatas": []map[string]string{record.Metadata()},
	}
	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/collections/%s/add", collectionID), reqBody, nil, "add"); err != nil {
		return false, err
	}
	return true, nil
}

// Query returns the top-k documents nearest to the query text, most relevant
// first.
func (c *Client) Query(ctx context.Context, text string, limit int) ([]domain.RetrievedDocument, error) {
	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	reqBody := map[string]any{
		"query_texts": []string{text},
		"n_results":   limit,
		"include":     []string{"documents", "metadatas", "distances"},
	}

	var queryResp struct {
		Documents [][]string            `json:"documents"`
		Metadatas [][]map[string]string `json:"metadatas"`
		Distances [][]float64           `json:"distances"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/collections/%s/query", collectionID), reqBody, &queryResp, "query"); err != nil {
		return nil, err
	}
	if len(queryResp.Documents) == 0 {
		return nil, nil
	}

	docs := queryResp.Documents[0]
	out := make([]domain.RetrievedDocument, 0, len(docs))
	for i, text := range docs {
		doc := domain.RetrievedDocument{Text: text}
		if len(queryResp.Metadatas) > 0 && i < len(queryResp.Metadatas[0]) {
			doc.Metadata = queryResp.Metadatas[0][i]
		}
		if len(queryResp.Distances) > 0 && i < len(queryResp.Distances[0]) {
			doc.Score = 1 - queryResp.Distances[0][i]
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Client) recordExists(ctx context.Context, collectionID, id string) (bool, error) {
	reqBody := map[string]any{
		"ids":     []string{id},
		"include": []string{},
	}
	var getResp struct {
		IDs []string `json:"ids"`
	}
	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/collections/%s/get", collectionID), reqBody, &getResp, "get"); err != nil {
		return false, err
	}
	return len(getResp.IDs) > 0, nil
}

// ensureCollection resolves (get-or-create) the collection once per client.
func (c *Client) ensureCollection(ctx context.Context) (string, error) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	if c.collectionID != "" {
		return c.collectionID, nil
	}

	reqBody := map[string]any{
		"name":          c.collection,
		"get_or_create": true,
	}
	var createResp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/v1/collections", reqBody, &createResp, "ensure collection"); err != nil {
		return "", err
	}
	if createResp.ID == "" {
		return "", fmt.Errorf("chroma ensure collection: empty collection id")
	}
	c.collectionID = createResp.ID
	return c.collectionID, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("chroma %s status: %s: %s", operation, resp.Status, msg)
		}
		return fmt.Errorf("chroma %s status: %s", operation, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
