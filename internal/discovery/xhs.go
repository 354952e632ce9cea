package discovery

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

// DefaultHTTPTimeout bounds a single request to the feed API when the caller sets no deadline.
const DefaultHTTPTimeout = 30 * time.Second

const searchPath = "/api/v1/feeds/search"

// XHSClient searches notes through a xiaohongshu-mcp style REST service.
type XHSClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewXHSClient creates a client for the service at baseURL.
func NewXHSClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *XHSClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &XHSClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Feeds []feed `json:"feeds"`
	} `json:"data"`
}

type feed struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	URL      string `json:"url"`
	NoteCard *struct {
		DisplayTitle string `json:"displayTitle"`
		Desc         string `json:"desc"`
	} `json:"noteCard"`
	Author struct {
		Nickname string `json:"nickname"`
	} `json:"author"`
	InteractInfo struct {
		LikedCount     Count `json:"likedCount"`
		CollectedCount Count `json:"collectedCount"`
		CommentCount   Count `json:"commentCount"`
	} `json:"interactInfo"`
}

func (f *feed) toNote() types.ReferenceNote {
	title, desc := f.Title, f.Desc
	if f.NoteCard != nil {
		if title == "" {
			title = f.NoteCard.DisplayTitle
		}
		if desc == "" {
			desc = f.NoteCard.Desc
		}
	}
	return types.ReferenceNote{
		ExternalID: f.ID,
		Title:      title,
		Excerpt:    desc,
		Author:     f.Author.Nickname,
		Likes:      int(f.InteractInfo.LikedCount),
		Collects:   int(f.InteractInfo.CollectedCount),
		Comments:   int(f.InteractInfo.CommentCount),
		URL:        f.URL,
	}
}

// Discover searches notes matching the keywords, joined with spaces.
func (c *XHSClient) Discover(ctx context.Context, keywords []string) ([]types.ReferenceNote, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, &Error{Backend: "xhs", Message: "no keywords"}
	}

	body, err := json.Marshal(searchRequest{Keyword: query})
	if err != nil {
		return nil, &Error{Backend: "xhs", Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Backend: "xhs", Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Backend: "xhs", Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Backend: "xhs", Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Backend: "xhs", Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &Error{Backend: "xhs", Message: "failed to parse response", Cause: err}
	}
	if !parsed.Success {
		return nil, &Error{Backend: "xhs", Message: fmt.Sprintf("search rejected: %s", parsed.Message)}
	}

	notes := make([]types.ReferenceNote, 0, len(parsed.Data.Feeds))
	for i := range parsed.Data.Feeds {
		notes = append(notes, parsed.Data.Feeds[i].toNote())
	}
	c.logger.Debug("feed search complete", "query", query, "results", len(notes))
	return notes, nil
}
