package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trend-collector/domain"
)

// Shared DOM heuristics for the fallback extraction paths. Selectors are kept
// in ordered lists because the platform's class names churn constantly.

// keywordFromAnchor derives a keyword from a discovery anchor, preferring the
// hashtag path segment, then the search query parameter, then visible text.
func keywordFromAnchor(a *goquery.Selection) string {
	href, _ := a.Attr("href")
	if u, err := url.Parse(href); err == nil {
		if i := strings.Index(u.Path, "/tag/"); i != -1 {
			seg := strings.Trim(u.Path[i+len("/tag/"):], "/")
			if j := strings.IndexByte(seg, '/'); j != -1 {
				seg = seg[:j]
			}
			if dec, decErr := url.PathUnescape(seg); decErr == nil {
				seg = dec
			}
			if seg != "" {
				return seg
			}
		}
		if q := u.Query().Get("q"); q != "" {
			return q
		}
	}
	return strings.TrimSpace(a.Text())
}

func trendURLFor(keyword string) string {
	keyword = strings.TrimPrefix(strings.TrimSpace(keyword), "#")
	if keyword == "" {
		return ""
	}
	if strings.ContainsAny(keyword, " \t") {
		return fmt.Sprintf(domain.SearchURLFormat, url.QueryEscape(keyword))
	}
	return fmt.Sprintf(domain.HashtagURLFormat, url.PathEscape(strings.ToLower(keyword)))
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "/") {
		return domain.BaseURL + href
	}
	return href
}

// closestCard walks up from a video anchor to the element that plays the role
// of the result card.
func closestCard(a *goquery.Selection) *goquery.Selection {
	card := a.Closest(`div[data-e2e], div[class*="DivItemContainer"], div[class*="ItemContainer"]`)
	if card.Length() > 0 {
		return card
	}
	if parent := a.Parent(); parent.Length() > 0 {
		return parent
	}
	return a
}

// likeCountFromCard returns the first sibling text matching the
// number-with-optional-suffix badge shape.
func likeCountFromCard(card *goquery.Selection) int64 {
	var likes int64
	card.Find("strong, span").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		txt := strings.TrimSpace(el.Text())
		if txt == "" || !isCountToken(txt) {
			return true
		}
		likes = ParseCount(txt)
		return false
	})
	return likes
}

// captionFromCard finds the first long text block that looks like a caption.
func captionFromCard(card *goquery.Selection) string {
	var caption string
	card.Find("div, span, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		txt := strings.TrimSpace(el.Text())
		if len([]rune(txt)) < 20 || isCountToken(txt) {
			return true
		}
		caption = CleanCaption(txt)
		return false
	})
	return caption
}

// strongTagHashtags collects '#'-prefixed <strong> labels inside a card.
func strongTagHashtags(card *goquery.Selection) []string {
	var out []string
	card.Find("strong").Each(func(_ int, el *goquery.Selection) {
		txt := strings.TrimSpace(el.Text())
		if strings.HasPrefix(txt, "#") && len(txt) > 1 {
			out = append(out, strings.TrimPrefix(txt, "#"))
		}
	})
	return out
}

// videoFromAnchor builds a best-effort sample from one video-permalink
// anchor. Returns false when the anchor carries no video id.
func videoFromAnchor(a *goquery.Selection) (domain.VideoSample, bool) {
	href, _ := a.Attr("href")
	id := VideoIDFromURL(href)
	if id == "" {
		return domain.VideoSample{}, false
	}
	card := closestCard(a)
	img := a.Find("img").First()
	if img.Length() == 0 {
		img = card.Find("img").First()
	}
	desc := CleanCaption(strings.TrimSpace(img.AttrOr("alt", "")))
	if desc == "" {
		desc = captionFromCard(card)
	}
	return domain.VideoSample{
		ID:           id,
		Description:  desc,
		Author:       domain.VideoAuthor{UniqueID: AuthorFromURL(href)},
		Stats:        domain.VideoStats{LikeCount: likeCountFromCard(card)},
		VideoURL:     absoluteURL(href),
		ThumbnailURL: img.AttrOr("src", ""),
		Hashtags:     ExtractHashtags(desc),
	}, true
}

// dedupSamples drops noise entries and keeps the first sample per video id.
func dedupSamples(videos []domain.VideoSample) []domain.VideoSample {
	seen := map[string]bool{}
	out := make([]domain.VideoSample, 0, len(videos))
	for _, v := range videos {
		if v.IsNoise() {
			continue
		}
		if v.ID != "" {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
		}
		out = append(out, v)
	}
	return out
}

func capSamples(videos []domain.VideoSample, limit int) []domain.VideoSample {
	if limit > 0 && len(videos) > limit {
		return videos[:limit]
	}
	return videos
}

// orderedSet keeps first-seen display forms keyed case-insensitively.
type orderedSet struct {
	order []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]bool{}}
}

func (s *orderedSet) add(value string) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	key := strings.ToLower(value)
	if key == "" || s.seen[key] {
		return
	}
	s.seen[key] = true
	s.order = append(s.order, value)
}

func (s *orderedSet) values() []string {
	return s.order
}
