package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultURL     = "http://127.0.0.1:8000"
	DefaultTimeout = 30 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 32 << 20
)

// Client talks to the maze service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "generate", "/api/generate/", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Grid) == 0 {
		return nil, &ServiceError{Op: "generate", Message: "response has no grid"}
	}
	return &resp, nil
}

func (c *Client) Solve(ctx context.Context, req SolveRequest) (*SolveResponse, error) {
	var resp SolveResponse
	if err := c.post(ctx, "solve", "/api/solve/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Compare returns the results ordered by time ascending regardless of the
// order the server sent them in.
func (c *Client) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	var resp CompareResponse
	if err := c.post(ctx, "compare", "/api/compare/", req, &resp); err != nil {
		return nil, err
	}
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].TimeMs < resp.Results[j].TimeMs
	})
	return &resp, nil
}

type errorCarrier interface {
	errorMessage() string
}

func (c *Client) post(ctx context.Context, op, path string, in any, out errorCarrier) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "err", err)
		return &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &ServiceError{Op: op, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("response", "op", op, "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))

	decodeErr := json.Unmarshal(raw, out)
	if decodeErr == nil && out.errorMessage() != "" {
		return &ServiceError{Op: op, Status: resp.StatusCode, Message: out.errorMessage()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{Op: op, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if decodeErr != nil {
		return &ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", decodeErr)}
	}
	return nil
}
