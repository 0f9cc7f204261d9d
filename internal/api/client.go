package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// Form field names the analysis server understands
const (
	FieldQuery   = "query"
	FieldMission = "mission"
)

// maxBodyInMessage bounds how many characters of an error body are shown
// to the user
const maxBodyInMessage = 300

// Options configures a Client
type Options struct {
	BaseURL    string
	Field      string        // form field carrying the query, defaults to "query"
	Timeout    time.Duration // per round trip, 0 leaves it to the caller's context
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the analysis server
type Client struct {
	baseURL *url.URL
	field   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the server at opts.BaseURL
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	field := opts.Field
	if field == "" {
		field = FieldQuery
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL: base,
		field:   field,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// Field returns the form field name used for the query
func (c *Client) Field() string {
	return c.field
}

// Analyze posts one query to /analyze or /advanced_analyze.
// A 2xx body carrying an "error" field is returned as an ApplicationError.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	form := url.Values{}
	form.Set(c.field, req.Query)

	status, body, err := c.do(ctx, http.MethodPost, req.Endpoint(), nil, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &types.Error{Kind: types.TransportError, Message: describeTransportError(err), Err: err}
	}

	if !IsSuccessStatus(status) {
		return nil, &types.Error{
			Kind:    types.TransportError,
			Message: "Analysis failed: " + bodyMessage(status, body),
			Status:  status,
			Body:    string(body),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, &types.Error{
			Kind:    types.TransportError,
			Message: "Analysis failed: server returned an invalid response",
			Status:  status,
			Body:    string(body),
		}
	}

	doc := gjson.ParseBytes(body)
	if msg, ok := errorField(doc); ok {
		return nil, &types.Error{Kind: types.ApplicationError, Message: msg, Status: status, Body: string(body)}
	}

	resp := &types.AnalysisResponse{
		Result: types.ResultFromJSON(doc.Get("result")),
	}
	switch chart := doc.Get("chart"); {
	case chart.Type == gjson.String:
		resp.Chart = chart.Str
	case chart.IsObject() || chart.IsArray():
		resp.Chart = chart.Raw
	}

	return resp, nil
}

// History fetches one page of recorded queries, newest first.
// With perPage <= 0 the server returns the whole list.
func (c *Client) History(ctx context.Context, page, perPage int) ([]types.HistoryEntry, error) {
	query := url.Values{}
	if perPage > 0 {
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(perPage))
	}

	status, body, err := c.do(ctx, http.MethodGet, "/history", query, nil)
	if err != nil {
		return nil, &types.Error{Kind: types.HistoryFetchError, Message: "Failed to load history: " + describeTransportError(err), Err: err}
	}
	if !IsSuccessStatus(status) {
		return nil, &types.Error{
			Kind:    types.HistoryFetchError,
			Message: "Failed to load history: " + bodyMessage(status, body),
			Status:  status,
			Body:    string(body),
		}
	}

	doc := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) || !doc.IsArray() {
		return nil, &types.Error{
			Kind:    types.HistoryFetchError,
			Message: "Failed to load history: unexpected response",
			Status:  status,
			Body:    string(body),
		}
	}

	entries := []types.HistoryEntry{}
	doc.ForEach(func(_, el gjson.Result) bool {
		entries = append(entries, types.HistoryEntry{
			Query:    c.entryQuery(el),
			Result:   types.ResultFromJSON(el.Get("result")),
			Position: len(entries),
		})
		return true
	})

	return entries, nil
}

func (c *Client) entryQuery(el gjson.Result) string {
	if q := el.Get(c.field); q.Exists() {
		return q.String()
	}
	for _, name := range []string{FieldQuery, FieldMission} {
		if q := el.Get(name); q.Exists() {
			return q.String()
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (int, []byte, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "id", requestID, "method", method, "path", path, "error", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("request completed",
		"id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", FormatDuration(time.Since(start).Milliseconds()),
		"size", FormatSize(len(data)),
	)

	return resp.StatusCode, data, nil
}

// errorField reports the application error carried by a response body
func errorField(doc gjson.Result) (string, bool) {
	field := doc.Get("error")
	if !field.Exists() || field.Type == gjson.Null {
		return "", false
	}
	msg := strings.TrimSpace(field.String())
	if msg == "" {
		return "", false
	}
	return msg, true
}

// bodyMessage describes a failed HTTP exchange, preferring the server's
// own error text.
func bodyMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		if msg, ok := errorField(gjson.ParseBytes(body)); ok {
			return msg
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if runes := []rune(text); len(runes) > maxBodyInMessage {
		text = string(runes[:maxBodyInMessage]) + "..."
	}
	return text
}

// IsTimeout reports whether err was caused by a deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
