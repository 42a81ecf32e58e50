package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func exploreFixture() string {
	scope := map[string]interface{}{
		"webapp.explore": map[string]interface{}{
			"suggestWords": []map[string]string{{"word": "nashville"}},
			"trendingList": []map[string]interface{}{
				{"title": "CountryMusic", "viewCount": 1200000},
			},
		},
	}
	body := `
		<a href="/tag/linedance">#linedance</a>
		<a href="/tag/nashville">nashville again</a>
		<a href="/search?q=honky%20tonk">honky tonk</a>`
	return rehydrationHTML(scope, body)
}

func TestScrapeExplorePage_MergesBlobAndDOM(t *testing.T) {
	browser := &fakeBrowser{htmlFor: func(string) string { return exploreFixture() }}
	svc := newTestService(browser)

	res := svc.ScrapeExplorePage(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "browser", res.Method)

	var keywords []string
	for _, tr := range res.Trends {
		keywords = append(keywords, tr.Keyword)
	}
	// Blob layer first in discovery order, then DOM anchors; "nashville" from
	// the DOM is a case-insensitive duplicate and must not reappear.
	assert.Equal(t, []string{"nashville", "CountryMusic", "linedance", "honky tonk"}, keywords)

	for i, tr := range res.Trends {
		assert.Equal(t, i+1, tr.Rank)
	}
	assert.Equal(t, int64(1200000), res.Trends[1].ViewCount)
	assert.Equal(t, "#countrymusic", res.Trends[1].Hashtag)
}

func TestScrapeExplorePage_NavigationFailure(t *testing.T) {
	browser := &fakeBrowser{navErr: func(string) error { return errors.New("net::ERR_TIMED_OUT") }}
	svc := newTestService(browser)

	res := svc.ScrapeExplorePage(context.Background())

	assert.False(t, res.Success)
	assert.Empty(t, res.Trends)
	assert.Contains(t, res.Error, "ERR_TIMED_OUT")
	assert.Equal(t, browser.opens, browser.closes, "page leaked on error path")
}

func TestScrapeExplorePage_EmptyPageStillSucceeds(t *testing.T) {
	browser := &fakeBrowser{htmlFor: func(string) string { return plainHTML("") }}
	svc := newTestService(browser)

	res := svc.ScrapeExplorePage(context.Background())

	assert.True(t, res.Success)
	assert.Empty(t, res.Trends)
	assert.Empty(t, res.Error)
}
