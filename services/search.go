package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"trend-collector/domain"
)

const resultsPerScroll = 5

// SearchKeyword pulls videos and related hashtags for a free-text keyword
// from the platform's search results, scrolling proportionally to the
// requested limit to trigger incremental loading.
func (s *TrendService) SearchKeyword(ctx context.Context, keyword string, limit int) domain.SearchResult {
	var out domain.SearchResult
	if limit <= 0 {
		limit = s.searchLimit
	}
	scrolls := (limit + resultsPerScroll - 1) / resultsPerScroll
	if scrolls > s.maxSearchScrolls {
		scrolls = s.maxSearchScrolls
	}

	target := fmt.Sprintf(domain.SearchURLFormat, url.QueryEscape(keyword))
	doc, err := s.loadDocument(ctx, target, scrolls, false)
	if err != nil {
		s.log.Warn().Err(err).Str("keyword", keyword).Msg("search scrape failed")
		out.Error = err.Error()
		return out
	}

	videos, related := s.extractSearchResults(doc)
	out.Videos = capSamples(dedupSamples(videos), limit)
	out.RelatedHashtags = related
	out.Success = true
	s.log.Info().Str("keyword", keyword).Int("videos", len(out.Videos)).Int("hashtags", len(related)).Msg("search scraped")
	return out
}

// extractSearchResults prefers the rehydration blob and falls back to DOM
// scraping only when the blob yields zero videos. Both paths feed the shared
// hashtag accumulator, which also picks up related-hashtag chips.
func (s *TrendService) extractSearchResults(doc *goquery.Document) ([]domain.VideoSample, []string) {
	tags := newOrderedSet()

	videos, _ := firstHit(s.log, []strategy[[]domain.VideoSample]{
		{name: "search-rehydration", run: func() ([]domain.VideoSample, bool) {
			items := searchBlobItems(doc)
			samples := make([]domain.VideoSample, 0, len(items))
			for _, it := range items {
				sample := it.toSample()
				if sample.IsNoise() {
					continue
				}
				samples = append(samples, sample)
			}
			return samples, len(samples) > 0
		}},
		{name: "search-dom", run: func() ([]domain.VideoSample, bool) {
			samples := searchDOMVideos(doc)
			return samples, len(samples) > 0
		}},
	})

	for _, v := range videos {
		for _, tag := range v.Hashtags {
			tags.add(tag)
		}
	}
	doc.Find(`a[data-e2e="search-related-keyword"], a[href*="/tag/"]`).Each(func(_ int, a *goquery.Selection) {
		tags.add(keywordFromAnchor(a))
	})

	return videos, tags.values()
}

// searchDOMVideos scans video-permalink anchors, deduplicating by the id
// embedded in the URL.
func searchDOMVideos(doc *goquery.Document) []domain.VideoSample {
	seen := map[string]bool{}
	var out []domain.VideoSample
	doc.Find(`a[href*="/video/"]`).Each(func(_ int, a *goquery.Selection) {
		sample, ok := videoFromAnchor(a)
		if !ok || seen[sample.ID] {
			return
		}
		seen[sample.ID] = true
		out = append(out, sample)
	})
	return out
}
