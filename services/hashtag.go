package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trend-collector/domain"
)

var hashtagCardSelectors = []string{
	`div[data-e2e="challenge-item"]`,
}

var hashtagContainerSelectors = []string{
	`div[class*="DivItemContainer"]`,
	`div[class*="video-feed-item"]`,
}

// ScrapeHashtagPage pulls metadata and video samples for one hashtag. The
// detail page frequently renders zero video cards for a perfectly valid
// hashtag, so a keyword-search fallback kicks in when the first pass comes up
// empty; its results are filtered to samples that actually mention the tag.
func (s *TrendService) ScrapeHashtagPage(ctx context.Context, hashtag string) domain.HashtagResult {
	var out domain.HashtagResult
	tag := strings.TrimPrefix(strings.TrimSpace(hashtag), "#")
	if tag == "" {
		out.Error = "empty hashtag"
		return out
	}

	var detailErr string
	info, videos, err := s.scrapeHashtagDetail(ctx, tag)
	if err != nil {
		s.log.Warn().Err(err).Str("hashtag", tag).Msg("hashtag detail scrape failed")
		detailErr = err.Error()
	}

	// The detail page is closed by now; the fallback opens its own page.
	if len(videos) == 0 {
		search := s.SearchKeyword(ctx, tag, s.searchFallbackLimit)
		if search.Success {
			matched := filterByHashtag(search.Videos, tag)
			s.log.Info().Str("hashtag", tag).Int("matched", len(matched)).Int("searched", len(search.Videos)).Msg("search fallback applied")
			videos = matched
			if info != nil && info.VideoCount == 0 {
				info.VideoCount = int64(len(matched))
			}
		}
	}

	out.Info = info
	out.Videos = videos
	out.Success = info != nil || len(videos) > 0
	if !out.Success {
		if detailErr != "" {
			out.Error = detailErr
		} else {
			out.Error = "no hashtag data recovered"
		}
	}
	return out
}

// scrapeHashtagDetail loads the detail page once, scrolling down and back up
// to force lazy card mounting, then runs the metadata and video strategy
// chains against the snapshot.
func (s *TrendService) scrapeHashtagDetail(ctx context.Context, tag string) (*domain.HashtagInfo, []domain.VideoSample, error) {
	target := fmt.Sprintf(domain.HashtagURLFormat, url.PathEscape(tag))
	doc, err := s.loadDocument(ctx, target, 1, true)
	if err != nil {
		return nil, nil, err
	}

	primary, primaryOK := challengeFromScope(doc)
	legacy, legacyOK := challengeFromLegacyState(doc)

	info, _ := firstHit(s.log, []strategy[*domain.HashtagInfo]{
		{name: "challenge-rehydration", run: func() (*domain.HashtagInfo, bool) {
			if !primaryOK {
				return nil, false
			}
			i := primary.ChallengeInfo.toInfo()
			return i, i != nil
		}},
		{name: "challenge-legacy-state", run: func() (*domain.HashtagInfo, bool) {
			if !legacyOK {
				return nil, false
			}
			i := legacy.ChallengeInfo.toInfo()
			return i, i != nil
		}},
		{name: "challenge-dom", run: func() (*domain.HashtagInfo, bool) {
			return hashtagInfoFromDOM(doc, tag)
		}},
	})

	videos, _ := firstHit(s.log, []strategy[[]domain.VideoSample]{
		{name: "items-rehydration", run: func() ([]domain.VideoSample, bool) {
			samples := itemsToSamples(primary.ItemList)
			return samples, len(samples) > 0
		}},
		{name: "items-legacy-state", run: func() ([]domain.VideoSample, bool) {
			samples := itemsToSamples(legacy.ItemList)
			return samples, len(samples) > 0
		}},
		{name: "items-cards", run: func() ([]domain.VideoSample, bool) {
			samples := hashtagContainerVideos(doc, hashtagCardSelectors)
			return samples, len(samples) > 0
		}},
		{name: "items-containers", run: func() ([]domain.VideoSample, bool) {
			samples := hashtagContainerVideos(doc, hashtagContainerSelectors)
			return samples, len(samples) > 0
		}},
		{name: "items-anchors", run: func() ([]domain.VideoSample, bool) {
			samples := hashtagAnchorVideos(doc)
			return samples, len(samples) > 0
		}},
	})

	return info, dedupSamples(videos), nil
}

func itemsToSamples(items []tiktokItem) []domain.VideoSample {
	samples := make([]domain.VideoSample, 0, len(items))
	for _, it := range items {
		sample := it.toSample()
		if sample.IsNoise() {
			continue
		}
		samples = append(samples, sample)
	}
	return samples
}

// hashtagInfoFromDOM reads the h1 as title and the first h2 carrying a count
// token as the view-count proxy.
func hashtagInfoFromDOM(doc *goquery.Document, tag string) (*domain.HashtagInfo, bool) {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	countText := strings.TrimSpace(doc.Find(`h2[data-e2e="challenge-vvcount"]`).First().Text())
	if countText == "" {
		doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			txt := strings.TrimSpace(h.Text())
			if ParseCount(txt) > 0 {
				countText = txt
				return false
			}
			return true
		})
	}
	desc := strings.TrimSpace(doc.Find(`[data-e2e="challenge-desc"]`).First().Text())

	views := ParseCount(countText)
	if title == "" && views == 0 && desc == "" {
		return nil, false
	}
	if title == "" {
		title = tag
	}
	return &domain.HashtagInfo{
		Title:       strings.TrimPrefix(title, "#"),
		Description: desc,
		ViewCount:   views,
	}, true
}

func hashtagContainerVideos(doc *goquery.Document, selectors []string) []domain.VideoSample {
	seen := map[string]bool{}
	var out []domain.VideoSample
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, card *goquery.Selection) {
			a := card.Find(`a[href*="/video/"]`).First()
			if a.Length() == 0 {
				return
			}
			sample, ok := videoFromAnchor(a)
			if !ok || seen[sample.ID] {
				return
			}
			seen[sample.ID] = true
			sample.Hashtags = mergeTags(sample.Hashtags, strongTagHashtags(card))
			out = append(out, sample)
		})
	}
	return out
}

// hashtagAnchorVideos is the most resilient fallback: every video-detail
// anchor on the page, paired with any <strong> hashtag labels in its card.
func hashtagAnchorVideos(doc *goquery.Document) []domain.VideoSample {
	seen := map[string]bool{}
	var out []domain.VideoSample
	doc.Find(`a[href*="/video/"]`).Each(func(_ int, a *goquery.Selection) {
		sample, ok := videoFromAnchor(a)
		if !ok || seen[sample.ID] {
			return
		}
		seen[sample.ID] = true
		sample.Hashtags = mergeTags(sample.Hashtags, strongTagHashtags(closestCard(a)))
		out = append(out, sample)
	})
	return out
}

func mergeTags(base, extra []string) []string {
	seen := map[string]bool{}
	for _, t := range base {
		seen[strings.ToLower(t)] = true
	}
	for _, t := range extra {
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		base = append(base, t)
	}
	return base
}

// filterByHashtag keeps samples whose hashtag list or description mentions
// the tag. Matching is case-insensitive on the raw tag; diacritics are not
// stripped, since the platform treats accented variants as distinct tags.
func filterByHashtag(videos []domain.VideoSample, tag string) []domain.VideoSample {
	needle := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if needle == "" {
		return nil
	}
	var out []domain.VideoSample
	for _, v := range videos {
		if sampleMentionsTag(v, needle) {
			out = append(out, v)
		}
	}
	return out
}

func sampleMentionsTag(v domain.VideoSample, needle string) bool {
	for _, tag := range v.Hashtags {
		if strings.ToLower(strings.TrimPrefix(tag, "#")) == needle {
			return true
		}
	}
	return strings.Contains(strings.ToLower(v.Description), "#"+needle)
}
