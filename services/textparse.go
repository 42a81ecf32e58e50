package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// These helpers are deliberately standalone: platform markup and localization
// shift often, and swapping a regex must not touch extraction control flow.

var (
	countRegex     = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([BMK])?`)
	countTextRegex = regexp.MustCompile(`^\d+(?:[.,]\d+)?\s*[BMKbmk]?$`)
	hashtagRegex   = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	videoIDRegex   = regexp.MustCompile(`/video/(\d+)`)
	authorIDRegex  = regexp.MustCompile(`/@([^/?#]+)/video/`)

	// Localized creator prefixes/suffixes on thumbnail alt text:
	// "{user}님이 만든 {desc}", "made by {user} from {desc}",
	// "{desc} created by {user}".
	koMadeByPrefix  = regexp.MustCompile(`^.+?님이 만든\s*`)
	enMadeByPrefix  = regexp.MustCompile(`(?i)^made by\s+\S+\s+from\s*`)
	enCreatedSuffix = regexp.MustCompile(`(?i)\s*created by\s+.+$`)
)

// ParseCount converts a locale-formatted abbreviated count ("1.2M", "355.6K",
// "게시물 5M개") into an integer. Total: malformed input yields 0, never an
// error.
func ParseCount(text string) int64 {
	m := countRegex.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "B":
		value *= 1e9
	case "M":
		value *= 1e6
	case "K":
		value *= 1e3
	}
	if value < 0 {
		return 0
	}
	return int64(math.Round(value))
}

// isCountToken reports whether text is nothing but a number with an optional
// magnitude suffix, the shape like-count badges render as.
func isCountToken(text string) bool {
	return countTextRegex.MatchString(strings.TrimSpace(text))
}

// ExtractHashtags pulls #-tags out of free text, covering non-Latin scripts.
// Tags are returned without the '#', first occurrence wins case-insensitively.
func ExtractHashtags(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range hashtagRegex.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m[1])
	}
	return out
}

// CleanCaption strips localized "made by ..." creator decoration from alt
// text and card captions, leaving the bare description.
func CleanCaption(text string) string {
	text = strings.TrimSpace(text)
	text = koMadeByPrefix.ReplaceAllString(text, "")
	text = enMadeByPrefix.ReplaceAllString(text, "")
	text = enCreatedSuffix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// VideoIDFromURL recovers the platform video id embedded in a permalink.
func VideoIDFromURL(href string) string {
	m := videoIDRegex.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// AuthorFromURL recovers the author unique id from a /@user/video/… permalink.
func AuthorFromURL(href string) string {
	m := authorIDRegex.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}
