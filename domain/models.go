package domain

import (
	"strings"
	"time"
)

// TrendItem is one discovered trend. Items are immutable once emitted; the
// aggregator rewrites Rank on its own copies only.
type TrendItem struct {
	Rank         int               `json:"rank"`
	Keyword      string            `json:"keyword"`
	Hashtag      string            `json:"hashtag"`
	ViewCount    int64             `json:"view_count"`
	VideoCount   int64             `json:"video_count"`
	Description  string            `json:"description,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	TrendURL     string            `json:"trend_url,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// HashtagInfo is the metadata recovered for a single hashtag lookup.
type HashtagInfo struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ViewCount    int64  `json:"view_count"`
	VideoCount   int64  `json:"video_count"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// VideoAuthor identifies the creator of a video sample.
type VideoAuthor struct {
	UniqueID  string `json:"unique_id"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// VideoStats carries engagement counters. Unknown values stay 0.
type VideoStats struct {
	PlayCount    int64 `json:"play_count"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	ShareCount   int64 `json:"share_count"`
}

// VideoSample is one discovered video. ID is the platform video id and the
// deduplication key within a single extraction call.
type VideoSample struct {
	ID           string      `json:"id"`
	Description  string      `json:"description,omitempty"`
	Author       VideoAuthor `json:"author"`
	Stats        VideoStats  `json:"stats"`
	VideoURL     string      `json:"video_url,omitempty"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
	MusicTitle   string      `json:"music_title,omitempty"`
	Hashtags     []string    `json:"hashtags,omitempty"`
	CreateTime   int64       `json:"create_time,omitempty"`
}

// IsNoise reports whether the sample carries no identifying data at all and
// must be discarded.
func (v VideoSample) IsNoise() bool {
	return v.ID == "" && v.Author.UniqueID == "" && v.Description == ""
}

// CollectionResult is the top-level output of one aggregation run.
type CollectionResult struct {
	Success     bool        `json:"success"`
	Method      string      `json:"method"`
	Trends      []TrendItem `json:"trends"`
	CollectedAt time.Time   `json:"collected_at"`
	Error       string      `json:"error,omitempty"`
}

// SearchResult is the output of one keyword search pass.
type SearchResult struct {
	Success         bool          `json:"success"`
	Videos          []VideoSample `json:"videos"`
	RelatedHashtags []string      `json:"related_hashtags,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// HashtagResult is the output of one hashtag detail pass.
type HashtagResult struct {
	Success bool          `json:"success"`
	Info    *HashtagInfo  `json:"info,omitempty"`
	Videos  []VideoSample `json:"videos,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NormalizeHashtag derives the #-prefixed tag form of a keyword: leading '#'
// and whitespace removed, lowercased, inner spaces collapsed away.
func NormalizeHashtag(keyword string) string {
	tag := strings.TrimPrefix(strings.TrimSpace(keyword), "#")
	tag = strings.ToLower(strings.Join(strings.Fields(tag), ""))
	if tag == "" {
		return ""
	}
	return "#" + tag
}
