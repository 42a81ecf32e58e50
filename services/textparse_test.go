package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1.2M", 1200000},
		{"355.6K", 355600},
		{"게시물 5M개", 5000000},
		{"2.5B", 2500000000},
		{"1234", 1234},
		{"12.3k followers", 12300},
		{"", 0},
		{"no numbers here", 0},
		{"M", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseCount(c.in), "input %q", c.in)
	}
}

func TestParseCount_NeverNegative(t *testing.T) {
	for _, in := range []string{"-5K", "garbage", "????", "0"} {
		assert.GreaterOrEqual(t, ParseCount(in), int64(0), "input %q", in)
	}
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("loving #CountryMusic and #길거리음식 tonight #countrymusic #fiddle_time")
	assert.Equal(t, []string{"CountryMusic", "길거리음식", "fiddle_time"}, tags)
}

func TestExtractHashtags_Empty(t *testing.T) {
	assert.Empty(t, ExtractHashtags("no tags at all"))
}

func TestCleanCaption(t *testing.T) {
	assert.Equal(t, "barn dance at dusk", CleanCaption("made by alice from barn dance at dusk"))
	assert.Equal(t, "멋진 컨트리 영상", CleanCaption("유저123님이 만든 멋진 컨트리 영상"))
	assert.Equal(t, "two step tutorial", CleanCaption("two step tutorial created by bob with original sound"))
	assert.Equal(t, "plain caption", CleanCaption("  plain caption "))
}

func TestVideoIDFromURL(t *testing.T) {
	assert.Equal(t, "7301234567890", VideoIDFromURL("/@alice/video/7301234567890?lang=en"))
	assert.Equal(t, "", VideoIDFromURL("/@alice/photo/123"))
}

func TestAuthorFromURL(t *testing.T) {
	assert.Equal(t, "alice", AuthorFromURL("https://www.tiktok.com/@alice/video/123"))
	assert.Equal(t, "", AuthorFromURL("/video/123"))
}

func TestIsCountToken(t *testing.T) {
	assert.True(t, isCountToken("45.6K"))
	assert.True(t, isCountToken("1234"))
	assert.False(t, isCountToken("45.6K likes"))
	assert.False(t, isCountToken("barn dance"))
}
