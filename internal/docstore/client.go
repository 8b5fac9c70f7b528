// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"doc-sentry/internal/correlate"
	"doc-sentry/internal/observability"
	"doc-sentry/internal/position"
	"doc-sentry/internal/resilience"
)

// ClientConfig holds the settings for the hosted document store client.
type ClientConfig struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultClientConfig returns client defaults; BaseURL and Token must still
// be supplied.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// Client is the HTTP client for the hosted document store. Every call is
// rate limited, retried with exponential backoff on transient failures, and
// protected by a shared circuit breaker so a down store fails fast instead
// of stalling a long batch.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
	observer   *observability.StandardObserver
}

// NewClient creates a store client from config.
func NewClient(cfg ClientConfig, observer *observability.StandardObserver) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		retry:      resilience.StoreRetryConfig(),
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("docstore")),
		observer:   observer,
	}
}

// GetDocument retrieves document metadata by id.
func (c *Client) GetDocument(ctx context.Context, id string) (Document, error) {
	var doc Document
	body, err := c.get(ctx, fmt.Sprintf("/api/documents/%s", id))
	if err != nil {
		return doc, fmt.Errorf("fetching document %s: %w", id, err)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return doc, fmt.Errorf("decoding document %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// GetPageText returns the OCR'd raw text of one page.
func (c *Client) GetPageText(ctx context.Context, doc Document, pageNumber int) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/documents/%s/pages/%d/text", doc.ID, pageNumber))
	if err != nil {
		return "", fmt.Errorf("fetching text for document %s page %d: %w", doc.ID, pageNumber, err)
	}
	return string(body), nil
}

// GetPagePositions returns the page's word boxes. A missing or undecodable
// position payload is reported as ErrPositionDataUnavailable rather than a
// generic API error, so the orchestrator can mark the document failed and
// carry on.
func (c *Client) GetPagePositions(ctx context.Context, doc Document, pageNumber int) ([]position.WordBox, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/documents/%s/pages/%d/positions", doc.ID, pageNumber))
	if err != nil {
		classified := resilience.ClassifyError(err)
		if classified.Type == resilience.ErrorTypeResourceNotFound || classified.Type == resilience.ErrorTypeInvalidInput {
			return nil, &PositionDataError{DocumentID: doc.ID, Page: pageNumber, Cause: err}
		}
		return nil, fmt.Errorf("fetching positions for document %s page %d: %w", doc.ID, pageNumber, err)
	}

	var boxes []position.WordBox
	if err := json.Unmarshal(body, &boxes); err != nil {
		return nil, &PositionDataError{DocumentID: doc.ID, Page: pageNumber, Cause: err}
	}
	return boxes, nil
}

// annotationPayload is the store's annotation creation body.
type annotationPayload struct {
	Title     string   `json:"title"`
	PageIndex int      `json:"page_number"` // the store counts pages from 0 here
	X1        *float64 `json:"x1,omitempty"`
	Y1        *float64 `json:"y1,omitempty"`
	X2        *float64 `json:"x2,omitempty"`
	Y2        *float64 `json:"y2,omitempty"`
	Content   string   `json:"content,omitempty"`
	Access    string   `json:"access"`
}

// CreateAnnotation creates one annotation on the document.
func (c *Client) CreateAnnotation(ctx context.Context, doc Document, req correlate.AnnotationRequest, vis Visibility) error {
	payload := annotationPayload{
		Title:     req.Title,
		PageIndex: req.PageIndex,
		Content:   req.Content,
		Access:    string(vis),
	}
	if req.Geometry != nil {
		g := *req.Geometry
		payload.X1, payload.Y1, payload.X2, payload.Y2 = &g.X1, &g.Y1, &g.X2, &g.Y2
	}

	if err := c.post(ctx, fmt.Sprintf("/api/documents/%s/annotations", doc.ID), payload); err != nil {
		return fmt.Errorf("creating annotation on document %s page %d: %w", doc.ID, req.PageIndex, err)
	}
	return nil
}

// SendNotification delivers a run-level notification to the user.
func (c *Client) SendNotification(ctx context.Context, subject, body string) error {
	payload := map[string]string{"subject": subject, "content": body}
	if err := c.post(ctx, "/api/messages", payload); err != nil {
		return fmt.Errorf("sending notification %q: %w", subject, err)
	}
	return nil
}

// get performs a rate-limited, retried GET and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return resilience.RetryWithResult(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			body, err = c.do(ctx, http.MethodGet, path, nil)
			return err
		})
		return body, err
	})
}

// post performs a rate-limited, retried POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	return resilience.RetryWithCircuitBreaker(ctx, c.retry, c.breaker, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, path, data)
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var finish func(bool, map[string]interface{})
	if c.observer != nil {
		finish = c.observer.StartTiming("docstore", method, path)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if finish != nil {
			finish(false, nil)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if finish != nil {
			finish(false, nil)
		}
		return nil, err
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if finish != nil {
		finish(ok, map[string]interface{}{"status": resp.StatusCode})
	}
	if !ok {
		// The status text drives error classification: 5xx and 429 retry,
		// 4xx do not.
		return nil, fmt.Errorf("store returned %d %s for %s %s",
			resp.StatusCode, strings.ToLower(http.StatusText(resp.StatusCode)), method, path)
	}
	return data, nil
}
