package discovery

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/series-publisher/internal/types"
)

// MaxExcerptRunes bounds the stored excerpt length.
const MaxExcerptRunes = 500

// NoteURLPrefix builds a note URL when the source does not provide one.
const NoteURLPrefix = "https://www.xiaohongshu.com/explore/"

// Rank normalizes notes, drops duplicates by external id, orders them by
// likes+collects descending (stable) and keeps at most topN.
func Rank(notes []types.ReferenceNote, topN int) []types.ReferenceNote {
	if topN <= 0 {
		topN = DefaultTopN
	}

	seen := make(map[string]bool, len(notes))
	out := make([]types.ReferenceNote, 0, len(notes))
	for _, n := range notes {
		n = Normalize(n)
		if n.ExternalID != "" {
			if seen[n.ExternalID] {
				continue
			}
			seen[n.ExternalID] = true
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Engagement() > out[j].Engagement()
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Normalize cleans a single note: excerpt to plain text, URL fallback,
// negative counters clamped to zero.
func Normalize(n types.ReferenceNote) types.ReferenceNote {
	n.ExternalID = strings.TrimSpace(n.ExternalID)
	n.Title = strings.TrimSpace(n.Title)
	n.Excerpt = Excerpt(n.Excerpt)
	if n.URL == "" && n.ExternalID != "" {
		n.URL = NoteURLPrefix + n.ExternalID
	}
	n.Likes = max(n.Likes, 0)
	n.Collects = max(n.Collects, 0)
	n.Comments = max(n.Comments, 0)
	return n
}

// Excerpt strips markup from s, collapses blank lines and truncates the
// result to MaxExcerptRunes.
func Excerpt(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	s = cleanWhitespace(s)

	runes := []rune(s)
	if len(runes) > MaxExcerptRunes {
		return string(runes[:MaxExcerptRunes])
	}
	return s
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
