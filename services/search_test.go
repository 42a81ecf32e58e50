package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchKeyword_RehydrationPath(t *testing.T) {
	scope := map[string]interface{}{
		"webapp.search-detail": map[string]interface{}{
			"itemList": []map[string]interface{}{
				blobItem("111", "alice", "barn dance #LineDance", "LineDance"),
				blobItem("222", "bob", "two step night", "TwoStep"),
			},
		},
	}
	browser := &fakeBrowser{htmlFor: func(string) string {
		return rehydrationHTML(scope, `<a href="/tag/fyp">#fyp</a>`)
	}}
	svc := newTestService(browser)

	res := svc.SearchKeyword(context.Background(), "country music", 10)

	assert.True(t, res.Success)
	assert.Len(t, res.Videos, 2)
	assert.Equal(t, "111", res.Videos[0].ID)
	assert.Equal(t, "alice", res.Videos[0].Author.UniqueID)
	assert.Equal(t, int64(1200), res.Videos[0].Stats.LikeCount) // "1.2K" via flexCount
	assert.Equal(t, []string{"LineDance"}, res.Videos[0].Hashtags)
	assert.Equal(t, []string{"LineDance", "TwoStep", "fyp"}, res.RelatedHashtags)
	assert.Equal(t, browser.opens, browser.closes)
}

func TestSearchKeyword_DOMFallback(t *testing.T) {
	body := `
		<div class="abc DivItemContainer xyz">
			<a href="/@alice/video/111"><img alt="made by alice from barn dance #linedance" src="https://cdn/1.jpg"></a>
			<strong>45.6K</strong>
		</div>
		<div class="abc DivItemContainer xyz">
			<a href="/@bob/video/222"><img alt="" src="https://cdn/2.jpg"></a>
			<span>barn raising party with fiddles all night</span>
			<strong>12K</strong>
		</div>
		<a href="/@alice/video/111">duplicate permalink</a>`
	browser := &fakeBrowser{htmlFor: func(string) string { return plainHTML(body) }}
	svc := newTestService(browser)

	res := svc.SearchKeyword(context.Background(), "barn dance", 10)

	assert.True(t, res.Success)
	assert.Len(t, res.Videos, 2)

	first := res.Videos[0]
	assert.Equal(t, "111", first.ID)
	assert.Equal(t, "alice", first.Author.UniqueID)
	assert.Equal(t, "barn dance #linedance", first.Description)
	assert.Equal(t, int64(45600), first.Stats.LikeCount)
	assert.Equal(t, []string{"linedance"}, first.Hashtags)

	second := res.Videos[1]
	assert.Equal(t, "222", second.ID)
	assert.Equal(t, "barn raising party with fiddles all night", second.Description)
	assert.Equal(t, int64(12000), second.Stats.LikeCount)
}

func TestSearchKeyword_NoiseDroppedAndTruncated(t *testing.T) {
	scope := map[string]interface{}{
		"webapp.search-detail": map[string]interface{}{
			"itemList": []map[string]interface{}{
				blobItem("", "", ""), // pure noise
				blobItem("1", "a", "one"),
				blobItem("2", "b", "two"),
				blobItem("3", "c", "three"),
			},
		},
	}
	browser := &fakeBrowser{htmlFor: func(string) string { return rehydrationHTML(scope, "") }}
	svc := newTestService(browser)

	res := svc.SearchKeyword(context.Background(), "country", 2)

	assert.True(t, res.Success)
	assert.Len(t, res.Videos, 2)
	for _, v := range res.Videos {
		assert.False(t, v.IsNoise())
	}
}

func TestSearchKeyword_GenericSectionScan(t *testing.T) {
	// The item list hides under an unknown section key; the generic scan must
	// still find it.
	scope := map[string]interface{}{
		"webapp.a-new-shape": map[string]interface{}{
			"data": []map[string]interface{}{
				{"item": blobItem("900", "zed", "surprise layout")},
			},
		},
	}
	browser := &fakeBrowser{htmlFor: func(string) string { return rehydrationHTML(scope, "") }}
	svc := newTestService(browser)

	res := svc.SearchKeyword(context.Background(), "country", 5)

	assert.True(t, res.Success)
	assert.Len(t, res.Videos, 1)
	assert.Equal(t, "900", res.Videos[0].ID)
}

func TestSearchKeyword_NavigationFailure(t *testing.T) {
	browser := &fakeBrowser{navErr: func(string) error { return context.DeadlineExceeded }}
	svc := newTestService(browser)

	res := svc.SearchKeyword(context.Background(), "country", 5)

	assert.False(t, res.Success)
	assert.Empty(t, res.Videos)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, browser.opens, browser.closes)
}
