package services

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trend-collector/domain"
)

// Anchor patterns the discovery page has been observed to render trend cards
// with, tried in order.
var exploreAnchorSelectors = []string{
	`[data-e2e="explore-item"] a`,
	`div[class*="DivCategoryCard"] a`,
	`a[href*="/tag/"]`,
	`a[href*="/search?q="]`,
}

// ScrapeExplorePage pulls site-wide trending keywords from the discovery
// route. Both the rehydration blob and the live DOM are scanned; results are
// merged by lowercased keyword in discovery order. Errors never propagate:
// a failed navigation yields success=false with the message captured.
func (s *TrendService) ScrapeExplorePage(ctx context.Context) domain.CollectionResult {
	res := domain.CollectionResult{Method: domain.MethodBrowser, CollectedAt: time.Now()}

	doc, err := s.loadDocument(ctx, domain.ExploreURL, s.exploreScrolls, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("explore page scrape failed")
		res.Error = err.Error()
		return res
	}

	res.Trends = extractExploreTrends(doc)
	res.Success = true
	s.log.Info().Int("trends", len(res.Trends)).Msg("explore page scraped")
	return res
}

func extractExploreTrends(doc *goquery.Document) []domain.TrendItem {
	seen := map[string]bool{}
	var out []domain.TrendItem

	add := func(keyword string, viewCount int64) {
		kw := strings.TrimPrefix(strings.TrimSpace(keyword), "#")
		if kw == "" {
			return
		}
		key := strings.ToLower(kw)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, domain.TrendItem{
			Rank:      len(out) + 1,
			Keyword:   kw,
			Hashtag:   domain.NormalizeHashtag(kw),
			ViewCount: viewCount,
			TrendURL:  trendURLFor(kw),
			Metadata:  map[string]string{"source": "explore"},
		})
	}

	// Layer 1: embedded rehydration state.
	for _, blob := range exploreSections(doc) {
		for _, w := range blob.SuggestWords {
			add(w.Word, 0)
		}
		for _, c := range blob.CategoryList {
			add(c.Title, int64(c.ViewCount))
		}
		for _, t := range blob.TrendingList {
			add(t.Title, int64(t.ViewCount))
		}
	}

	// Layer 2: live DOM scan, always performed regardless of layer 1.
	for _, sel := range exploreAnchorSelectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			add(keywordFromAnchor(a), 0)
		})
	}

	return out
}
