package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trend-collector/domain"
)

// Embedded-state parsing happens here, at the page boundary: raw blobs are
// converted into typed shapes before any extraction logic touches them. A
// missing or malformed blob is never an error, it just yields nothing and the
// caller falls through to the next strategy.

const (
	universalDataScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
	legacyStateScriptID   = "SIGI_STATE"
)

// flexCount accepts both numeric and formatted-string count fields; string
// forms route through ParseCount so there is a single count parser.
type flexCount int64

func (c *flexCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*c = 0
			return nil
		}
		*c = flexCount(ParseCount(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*c = 0
		return nil
	}
	*c = flexCount(int64(f))
	return nil
}

type tiktokAuthor struct {
	UniqueID    string `json:"uniqueId"`
	Nickname    string `json:"nickname"`
	AvatarThumb string `json:"avatarThumb"`
}

type tiktokStats struct {
	PlayCount    flexCount `json:"playCount"`
	DiggCount    flexCount `json:"diggCount"`
	CommentCount flexCount `json:"commentCount"`
	ShareCount   flexCount `json:"shareCount"`
}

type tiktokItem struct {
	ID         string       `json:"id"`
	Desc       string       `json:"desc"`
	CreateTime flexCount    `json:"createTime"`
	Author     tiktokAuthor `json:"author"`
	Stats      tiktokStats  `json:"stats"`
	Video      struct {
		Cover string `json:"cover"`
	} `json:"video"`
	Music struct {
		Title string `json:"title"`
	} `json:"music"`
	Challenges []struct {
		Title string `json:"title"`
	} `json:"challenges"`
}

func (it tiktokItem) toSample() domain.VideoSample {
	s := domain.VideoSample{
		ID:          it.ID,
		Description: it.Desc,
		Author: domain.VideoAuthor{
			UniqueID:  it.Author.UniqueID,
			Nickname:  it.Author.Nickname,
			AvatarURL: it.Author.AvatarThumb,
		},
		Stats: domain.VideoStats{
			PlayCount:    int64(it.Stats.PlayCount),
			LikeCount:    int64(it.Stats.DiggCount),
			CommentCount: int64(it.Stats.CommentCount),
			ShareCount:   int64(it.Stats.ShareCount),
		},
		ThumbnailURL: it.Video.Cover,
		MusicTitle:   it.Music.Title,
		CreateTime:   int64(it.CreateTime),
	}
	seen := map[string]bool{}
	for _, ch := range it.Challenges {
		key := strings.ToLower(ch.Title)
		if ch.Title == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.Hashtags = append(s.Hashtags, ch.Title)
	}
	for _, tag := range ExtractHashtags(it.Desc) {
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		s.Hashtags = append(s.Hashtags, tag)
	}
	if it.ID != "" && it.Author.UniqueID != "" {
		s.VideoURL = fmt.Sprintf("%s/@%s/video/%s", domain.BaseURL, it.Author.UniqueID, it.ID)
	}
	return s
}

// rehydrationScope returns the per-page sections of the framework's
// rehydration blob, or nil when the blob is absent or unreadable.
func rehydrationScope(doc *goquery.Document) map[string]json.RawMessage {
	raw := doc.Find("script#" + universalDataScriptID).First().Text()
	if raw == "" {
		return nil
	}
	var u struct {
		DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return u.DefaultScope
}

// legacyState returns the older page variant's global state blob.
func legacyState(doc *goquery.Document) map[string]json.RawMessage {
	raw := doc.Find("script#" + legacyStateScriptID).First().Text()
	if raw == "" {
		return nil
	}
	var state map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil
	}
	return state
}

// --- explore sections ---

type exploreBlob struct {
	SuggestWords []struct {
		Word string `json:"word"`
	} `json:"suggestWords"`
	CategoryList []struct {
		Title     string    `json:"title"`
		ViewCount flexCount `json:"viewCount"`
	} `json:"categoryList"`
	TrendingList []struct {
		Title     string    `json:"title"`
		ViewCount flexCount `json:"viewCount"`
	} `json:"trendingList"`
}

func (b exploreBlob) empty() bool {
	return len(b.SuggestWords) == 0 && len(b.CategoryList) == 0 && len(b.TrendingList) == 0
}

// exploreSections walks every scope section for the known explore sub-keys;
// the section name carrying them varies by response shape.
func exploreSections(doc *goquery.Document) []exploreBlob {
	scope := rehydrationScope(doc)
	if scope == nil {
		return nil
	}
	var out []exploreBlob
	if raw, ok := scope["webapp.explore"]; ok {
		var b exploreBlob
		if json.Unmarshal(raw, &b) == nil && !b.empty() {
			out = append(out, b)
		}
	}
	for key, raw := range scope {
		if key == "webapp.explore" {
			continue
		}
		var b exploreBlob
		if json.Unmarshal(raw, &b) == nil && !b.empty() {
			out = append(out, b)
		}
	}
	return out
}

// --- search sections ---

type searchBlob struct {
	ItemList []tiktokItem `json:"itemList"`
	Data     []struct {
		Item tiktokItem `json:"item"`
	} `json:"data"`
}

func (b searchBlob) items() []tiktokItem {
	if len(b.ItemList) > 0 {
		return b.ItemList
	}
	items := make([]tiktokItem, 0, len(b.Data))
	for _, e := range b.Data {
		items = append(items, e.Item)
	}
	return items
}

var searchSectionKeys = []string{"webapp.search-detail", "webapp.search"}

// searchBlobItems probes the known search section keys first, then scans all
// sections for the first one exposing an item-list shape.
func searchBlobItems(doc *goquery.Document) []tiktokItem {
	scope := rehydrationScope(doc)
	if scope == nil {
		return nil
	}
	for _, key := range searchSectionKeys {
		raw, ok := scope[key]
		if !ok {
			continue
		}
		var b searchBlob
		if json.Unmarshal(raw, &b) == nil {
			if items := b.items(); len(items) > 0 {
				return items
			}
		}
	}
	for key, raw := range scope {
		if isKnownSearchKey(key) {
			continue
		}
		var b searchBlob
		if json.Unmarshal(raw, &b) == nil {
			if items := b.items(); len(items) > 0 {
				return items
			}
		}
	}
	return nil
}

func isKnownSearchKey(key string) bool {
	for _, k := range searchSectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// --- hashtag detail sections ---

type challengeInfo struct {
	Challenge struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Desc        string `json:"desc"`
		CoverLarger string `json:"coverLarger"`
	} `json:"challenge"`
	Stats struct {
		VideoCount flexCount `json:"videoCount"`
		ViewCount  flexCount `json:"viewCount"`
	} `json:"stats"`
}

func (ci challengeInfo) toInfo() *domain.HashtagInfo {
	if ci.Challenge.ID == "" && ci.Challenge.Title == "" {
		return nil
	}
	return &domain.HashtagInfo{
		ID:           ci.Challenge.ID,
		Title:        ci.Challenge.Title,
		Description:  ci.Challenge.Desc,
		ViewCount:    int64(ci.Stats.ViewCount),
		VideoCount:   int64(ci.Stats.VideoCount),
		ThumbnailURL: ci.Challenge.CoverLarger,
	}
}

type challengeBlob struct {
	ChallengeInfo challengeInfo `json:"challengeInfo"`
	ItemList      []tiktokItem  `json:"itemList"`
}

func challengeFromScope(doc *goquery.Document) (challengeBlob, bool) {
	scope := rehydrationScope(doc)
	if scope == nil {
		return challengeBlob{}, false
	}
	raw, ok := scope["webapp.challenge-detail"]
	if !ok {
		return challengeBlob{}, false
	}
	var b challengeBlob
	if json.Unmarshal(raw, &b) != nil {
		return challengeBlob{}, false
	}
	return b, b.ChallengeInfo.toInfo() != nil || len(b.ItemList) > 0
}

func challengeFromLegacyState(doc *goquery.Document) (challengeBlob, bool) {
	state := legacyState(doc)
	if state == nil {
		return challengeBlob{}, false
	}
	var b challengeBlob
	if raw, ok := state["ChallengePage"]; ok {
		var page struct {
			ChallengeInfo challengeInfo `json:"challengeInfo"`
		}
		if json.Unmarshal(raw, &page) == nil {
			b.ChallengeInfo = page.ChallengeInfo
		}
	}
	if raw, ok := state["ItemModule"]; ok {
		var items map[string]tiktokItem
		if json.Unmarshal(raw, &items) == nil {
			for _, it := range items {
				b.ItemList = append(b.ItemList, it)
			}
			// Map iteration order is random; keep output deterministic.
			sort.Slice(b.ItemList, func(i, j int) bool { return b.ItemList[i].ID < b.ItemList[j].ID })
		}
	}
	return b, b.ChallengeInfo.toInfo() != nil || len(b.ItemList) > 0
}
