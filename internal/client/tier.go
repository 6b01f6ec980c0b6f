// Package client talks to remote tiers over HTTP.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dtroode/starboard/internal/model"
)

const maxResponseBytes = 10 << 20

// ErrResponseTooLarge is returned when a tier sends a body over the size limit.
var ErrResponseTooLarge = errors.New("response too large")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Tier string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s tier responded %d %s", e.Tier, e.Code, http.StatusText(e.Code))
}

// Unwrap maps 404 to model.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return model.ErrNotFound
	}
	return nil
}

var _ model.RemoteTier = (*HTTPTier)(nil)

// HTTPTier is one remote tier reached with GET and PUT of the whole
// document at a single endpoint.
type HTTPTier struct {
	name       string
	endpoint   string
	httpClient *http.Client
	maxBody    int64
}

func NewHTTPTier(name, endpoint string, httpClient *http.Client) *HTTPTier {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTier{
		name:       name,
		endpoint:   endpoint,
		httpClient: httpClient,
		maxBody:    maxResponseBytes,
	}
}

func (t *HTTPTier) Name() string {
	return t.name
}

func (t *HTTPTier) Load(ctx context.Context) (*model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s tier: %w", t.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, t.maxBody))
		return nil, &StatusError{Tier: t.name, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s tier response: %w", t.name, err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("%s tier: %w: over %d bytes", t.name, ErrResponseTooLarge, t.maxBody)
	}

	doc, err := model.DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%s tier returned an unusable document: %w", t.name, err)
	}
	return doc, nil
}

func (t *HTTPTier) Save(ctx context.Context, doc *model.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s tier: %w", t.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, t.maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Tier: t.name, Code: resp.StatusCode}
	}
	return nil
}
