package discovery

import (
	"context"
	"net/url"
	"path"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/series-publisher/internal/types"
)

// GoogleSearcher discovers reference posts through Google Custom Search.
// Search results carry no engagement counters, so notes keep their result order.
type GoogleSearcher struct {
	svc  *customsearch.Service
	cx   string
	site string
}

// NewGoogleSearcher creates a searcher for the given search engine id.
// A non-empty site restricts results to that domain.
func NewGoogleSearcher(ctx context.Context, apiKey, cx, site string, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if apiKey == "" || cx == "" {
		return nil, &Error{Backend: "google", Message: "API key and search engine id are required"}
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, &Error{Backend: "google", Message: "failed to create customsearch service", Cause: err}
	}
	return &GoogleSearcher{svc: svc, cx: cx, site: site}, nil
}

// Discover runs one search for the joined keywords.
func (g *GoogleSearcher) Discover(ctx context.Context, keywords []string) ([]types.ReferenceNote, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, &Error{Backend: "google", Message: "no keywords"}
	}

	call := g.svc.Cse.List().Cx(g.cx).Q(query).Num(DefaultTopN).Context(ctx)
	if g.site != "" {
		call = call.SiteSearch(g.site)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, &Error{Backend: "google", Message: "search failed", Cause: err}
	}

	notes := make([]types.ReferenceNote, 0, len(resp.Items))
	for _, item := range resp.Items {
		excerpt := item.HtmlSnippet
		if excerpt == "" {
			excerpt = item.Snippet
		}
		notes = append(notes, types.ReferenceNote{
			ExternalID: resultID(item.Link),
			Title:      item.Title,
			Excerpt:    excerpt,
			URL:        item.Link,
		})
	}
	return notes, nil
}

// resultID uses the last path segment of a result link, e.g. the note id of
// an explore URL, falling back to the link itself.
func resultID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
		return base
	}
	return link
}
