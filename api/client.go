// ABOUTME: HTTP client for the story service API.
// ABOUTME: Provides typed methods for the catalog, story detail, messages, expansions, uploads, and health.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client is a typed HTTP client for the story service. It carries no
// credentials; the service is unauthenticated. The zero timeout means no
// client-side deadline: failures surface only via transport errors or HTTP
// status, matching the consuming UI's semantics.
type Client struct {
	BaseURL        string
	DefaultHeaders map[string]string
	HTTPClient     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithTimeout sets a client-side request deadline. Unset by default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient.Timeout = d
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.DefaultHeaders[key] = value
	}
}

// NewClient creates a Client for the service at baseURL. A trailing slash on
// baseURL is tolerated.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		DefaultHeaders: make(map[string]string),
		HTTPClient:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do builds and executes a request. A non-nil body is JSON-encoded. Network
// failures return a TransportError; any received response is returned as-is
// for the caller to interpret.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	url := c.BaseURL + path

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, NewTransportError("creating request", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.DefaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("executing request", err)
	}
	return resp, nil
}

// getJSON executes a GET and decodes an OK response into out. Non-OK statuses
// map to an ApplicationError carrying the status line and raw body.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewTransportError("reading response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ErrorFromStatusCode(resp.StatusCode, resp.Status, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return shapeError("decoding response", err, raw)
	}
	return nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/api/health", &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// ListStories fetches the story catalog. A response without a stories field
// is a shape failure; the caller's list must stay untouched in that case, so
// no partial result is ever returned alongside an error.
func (c *Client) ListStories(ctx context.Context) ([]StorySummary, error) {
	var env storiesEnvelope
	if err := c.getJSON(ctx, "/api/stories", &env); err != nil {
		return nil, err
	}
	if env.Stories == nil {
		return nil, NewApplicationError("catalog response missing stories")
	}
	return *env.Stories, nil
}

// StoryElements fetches the structured element list for a story.
func (c *Client) StoryElements(ctx context.Context, storyID string) ([]StoryElement, error) {
	var env storyDetailEnvelope
	if err := c.getJSON(ctx, "/api/stories/"+storyID, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "story detail reported failure"
		}
		return nil, NewApplicationError(msg)
	}
	if env.Data == nil {
		return nil, NewApplicationError("story detail response missing data")
	}
	return env.Data.Elements, nil
}

// Messages fetches the full ordered message list for a story.
func (c *Client) Messages(ctx context.Context, storyID string) ([]Message, error) {
	var msgs []Message
	if err := c.getJSON(ctx, "/api/stories/"+storyID+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a user message to a story. The response body is not
// interpreted; any OK status is success and the caller reloads the transcript
// afterwards.
func (c *Client) SendMessage(ctx context.Context, storyID, content string) error {
	body := MessageRequest{Content: content, Sender: "user"}
	resp, err := c.do(ctx, http.MethodPost, "/api/stories/"+storyID+"/messages", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrorFromStatusCode(resp.StatusCode, resp.Status, raw)
	}
	return nil
}

// ProposeExpansion submits a story expansion proposal. ElementReferences is
// normalized to an empty list so the wire body always carries [] rather than
// null. Envelope success=false is returned in the result for the caller to
// surface, not converted to an error here.
func (c *Client) ProposeExpansion(ctx context.Context, proposal ExpansionProposal) (*ExpansionResult, error) {
	if proposal.ElementReferences == nil {
		proposal.ElementReferences = []string{}
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/propose-expansion", proposal)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("reading response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrorFromStatusCode(resp.StatusCode, resp.Status, raw)
	}

	var env expansionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, shapeError("decoding expansion response", err, raw)
	}
	return &ExpansionResult{Success: env.Success, Message: env.Message, Data: env.Data}, nil
}

// UploadPDF posts a file as a multipart body under field name "file". Any
// non-OK status is a uniform failure carrying the response's status text.
func (c *Client) UploadPDF(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/upload-pdf/", &buf)
	if err != nil {
		return nil, NewTransportError("creating request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range c.DefaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewTransportError("executing request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("reading response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrorFromStatusCode(resp.StatusCode, resp.Status, raw)
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, shapeError("decoding upload response", err, raw)
	}
	return &result, nil
}

// shapeError builds an ApplicationError for a malformed success response.
func shapeError(message string, cause error, raw []byte) *ApplicationError {
	e := NewApplicationError(message)
	e.Cause = cause
	e.Raw = raw
	return e
}
