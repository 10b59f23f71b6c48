// Package chroma is a minimal HTTP client for the vector search backend.
// It speaks the tenant/database/collection API directly with plain HTTP
// calls and no embedding dependencies; the backend computes embeddings
// server-side.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mcp-recall/internal/config"
	"mcp-recall/internal/logging"
	"mcp-recall/internal/retry"
)

// ErrNotReady is returned by WaitReady when the backend never answered the
// heartbeat within the startup window.
var ErrNotReady = errors.New("vector backend not ready")

// Client talks to one collection of the vector backend. Construct with
// NewClient, then Provision before data operations.
type Client struct {
	baseURL    string
	tenant     string
	database   string
	collection string

	// collectionID is resolved by Provision; data operations address the
	// collection by ID, not name.
	collectionID string

	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *logging.Logger

	startupWait   time.Duration
	heartbeatTick time.Duration
}

// NewClient builds a client from configuration. No network traffic happens
// here.
func NewClient(cfg *config.ChromaConfig, logger *logging.Logger) *Client {
	return &Client{
		baseURL:       cfg.BaseURL(),
		tenant:        cfg.Tenant,
		database:      cfg.Database,
		collection:    cfg.Collection,
		httpClient:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		retrier:       retry.New(retry.DefaultConfig()),
		logger:        logger,
		startupWait:   time.Duration(cfg.StartupWaitSecs) * time.Second,
		heartbeatTick: time.Duration(cfg.HeartbeatSeconds) * time.Second,
	}
}

// Heartbeat reports backend liveness.
func (c *Client) Heartbeat(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/heartbeat", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// WaitReady polls the heartbeat until the backend answers or the startup
// window elapses. ErrNotReady means the caller should degrade, not fail.
func (c *Client) WaitReady(ctx context.Context) error {
	tick := c.heartbeatTick
	if tick <= 0 {
		tick = time.Second
	}
	deadline := time.Now().Add(c.startupWait)
	for {
		if c.Heartbeat(ctx) {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrNotReady
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tick):
		}
	}
}

// Provision idempotently creates the tenant, database, and collection, then
// resolves the collection ID. An "already exists" (409) answer at any step
// is success.
func (c *Client) Provision(ctx context.Context) error {
	if err := c.ensureTenant(ctx); err != nil {
		return err
	}
	if err := c.ensureDatabase(ctx); err != nil {
		return err
	}
	if err := c.ensureCollection(ctx); err != nil {
		return err
	}
	return c.resolveCollectionID(ctx)
}

func (c *Client) ensureTenant(ctx context.Context) error {
	_, err := c.post(ctx, "/tenants", map[string]interface{}{"name": c.tenant}, true)
	if err != nil {
		return fmt.Errorf("ensure tenant: %w", err)
	}
	return nil
}

func (c *Client) ensureDatabase(ctx context.Context) error {
	path := fmt.Sprintf("/tenants/%s/databases", url.PathEscape(c.tenant))
	_, err := c.post(ctx, path, map[string]interface{}{"name": c.database}, true)
	if err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	path := fmt.Sprintf("/tenants/%s/databases/%s/collections",
		url.PathEscape(c.tenant), url.PathEscape(c.database))
	_, err := c.post(ctx, path, map[string]interface{}{"name": c.collection}, true)
	if err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

func (c *Client) resolveCollectionID(ctx context.Context) error {
	path := fmt.Sprintf("/tenants/%s/databases/%s/collections/%s",
		url.PathEscape(c.tenant), url.PathEscape(c.database), url.PathEscape(c.collection))
	body, err := c.get(ctx, path)
	if err != nil {
		return fmt.Errorf("describe collection: %w", err)
	}
	var descriptor struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &descriptor); err != nil {
		return fmt.Errorf("parse collection descriptor: %w", err)
	}
	if descriptor.ID == "" {
		return errors.New("collection descriptor missing id")
	}
	c.collectionID = descriptor.ID
	c.logger.Info("vector collection ready", "collection", c.collection, "id", c.collectionID)
	return nil
}

func (c *Client) collectionPath(op string) string {
	return fmt.Sprintf("/tenants/%s/databases/%s/collections/%s/%s",
		url.PathEscape(c.tenant), url.PathEscape(c.database), url.PathEscape(c.collectionID), op)
}

// Add inserts records. IDs that already exist are accepted by the backend
// (upsert-like), so re-adding is safe but can duplicate legacy-keyed rows.
func (c *Client) Add(ctx context.Context, ids, documents []string, metadatas []map[string]interface{}) error {
	if c.collectionID == "" {
		return errors.New("collection not provisioned")
	}
	body := map[string]interface{}{
		"ids":       ids,
		"documents": documents,
		"metadatas": metadatas,
	}
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := c.post(ctx, c.collectionPath("add"), body, false)
		return err
	})
}

// QueryHit is one similarity match, ordered by ascending distance.
type QueryHit struct {
	Document string
	Metadata map[string]interface{}
	Distance float64
}

// Query runs a similarity search with a scalar-equality filter.
func (c *Client) Query(ctx context.Context, text string, where map[string]interface{}, limit int) ([]QueryHit, error) {
	if c.collectionID == "" {
		return nil, errors.New("collection not provisioned")
	}
	body := map[string]interface{}{
		"queryTexts": []string{text},
		"nResults":   limit,
	}
	if len(where) > 0 {
		body["where"] = where
	}

	var raw []byte
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		resp, err := c.post(ctx, c.collectionPath("query"), body, false)
		if err != nil {
			return err
		}
		raw = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Documents [][]string                 `json:"documents"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Distances [][]float64                `json:"distances"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse query result: %w", err)
	}
	if len(result.Documents) == 0 {
		return nil, nil
	}

	docs := result.Documents[0]
	hits := make([]QueryHit, 0, len(docs))
	for i, doc := range docs {
		hit := QueryHit{Document: doc}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			hit.Metadata = result.Metadatas[0][i]
		}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			hit.Distance = result.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteWhere removes every entry matching the filter.
func (c *Client) DeleteWhere(ctx context.Context, where map[string]interface{}) error {
	if c.collectionID == "" {
		return errors.New("collection not provisioned")
	}
	body := map[string]interface{}{"where": where}
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := c.post(ctx, c.collectionPath("delete"), body, false)
		return err
	})
}

func (c *Client) post(ctx context.Context, path string, body interface{}, conflictOK bool) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, conflictOK)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, false)
}

func (c *Client) do(req *http.Request, conflictOK bool) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusConflict && conflictOK {
		return respBody, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s %s", resp.StatusCode, req.Method, req.URL.Path)
	}
	return respBody, nil
}
