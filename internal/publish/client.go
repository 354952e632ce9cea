// Package publish submits finished posts to the publication service.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/series-publisher/internal/types"
)

// DefaultMaxTitleRunes is the longest title the service accepts.
const DefaultMaxTitleRunes = 20

// DefaultHTTPTimeout bounds a single request when the caller sets no deadline.
const DefaultHTTPTimeout = 60 * time.Second

const (
	publishPath     = "/api/v1/publish"
	loginStatusPath = "/api/v1/login/status"
)

// Client talks to a xiaohongshu-mcp style publication service.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxTitleRunes int
	logger        *slog.Logger
}

// Options configures a Client.
type Options struct {
	HTTPClient    *http.Client
	MaxTitleRunes int
	Logger        *slog.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    opts.HTTPClient,
		maxTitleRunes: opts.MaxTitleRunes,
		logger:        opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if c.maxTitleRunes <= 0 {
		c.maxTitleRunes = DefaultMaxTitleRunes
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type publishData struct {
	PostID string `json:"post_id"`
	NoteID string `json:"note_id"`
}

type loginStatusData struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	Username   string `json:"username"`
}

// Publish submits a post. The request is validated, and its title truncated,
// before any network call; a request without media never reaches the service.
func (c *Client) Publish(ctx context.Context, req *types.PublishRequest) (*types.PublishResult, error) {
	if req == nil {
		return nil, &Error{Message: "request is required"}
	}
	out := *req
	out.Title = TruncateTitle(strings.TrimSpace(out.Title), c.maxTitleRunes)
	if err := out.Validate(); err != nil {
		return nil, &Error{Message: "invalid publish request", Cause: err}
	}

	body, err := json.Marshal(out)
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Cause: err}
	}

	env, err := c.do(ctx, http.MethodPost, publishPath, body)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &Error{Message: fmt.Sprintf("service rejected post: %s", env.Message)}
	}

	var data publishData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, &Error{Message: "failed to parse response", Cause: err}
		}
	}
	postID := data.PostID
	if postID == "" {
		postID = data.NoteID
	}
	if postID == "" {
		return nil, &Error{Message: "service returned no post id"}
	}

	c.logger.Info("post published", "post_id", postID, "title", out.Title, "media", len(out.Media))
	return &types.PublishResult{PostID: postID}, nil
}

// CheckConnectivity reports whether the service is reachable and logged in.
func (c *Client) CheckConnectivity(ctx context.Context) (bool, error) {
	env, err := c.do(ctx, http.MethodGet, loginStatusPath, nil)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, nil
	}
	var data loginStatusData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return false, &Error{Message: "failed to parse login status", Cause: err}
		}
	}
	return data.IsLoggedIn, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Message: fmt.Sprintf("HTTP status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &Error{Message: "failed to parse response", Cause: err}
	}
	return &env, nil
}

// TruncateTitle shortens title to at most maxRunes characters.
func TruncateTitle(title string, maxRunes int) string {
	runes := []rune(title)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return title
	}
	return string(runes[:maxRunes])
}
