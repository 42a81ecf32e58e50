package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"trend-collector/domain"
)

func aggregationBrowser() *fakeBrowser {
	explore := rehydrationHTML(map[string]interface{}{
		"webapp.explore": map[string]interface{}{
			"trendingList": []map[string]interface{}{
				{"title": "LineDance", "viewCount": 90000},
			},
		},
	}, "")
	search := rehydrationHTML(map[string]interface{}{
		"webapp.search-detail": map[string]interface{}{
			"itemList": []map[string]interface{}{
				blobItem("111", "a1", "#barnlife fun", "barnlife"),
				blobItem("112", "a2", "fiddle time", "fiddle"),
				blobItem("113", "a3", "more barn", "barnlife"),
				blobItem("114", "a4", "back roads", "barnlife"),
				blobItem("115", "a5", "strings", "fiddle"),
			},
		},
	}, "")
	hashtag := rehydrationHTML(challengeScope("nashville", "1.2M", 10,
		blobItem("501", "carrie", "opry night")), "")

	return &fakeBrowser{htmlFor: func(url string) string {
		switch {
		case strings.Contains(url, "/explore"):
			return explore
		case strings.Contains(url, "/search?q="):
			return search
		case strings.Contains(url, "/tag/"):
			return hashtag
		}
		return plainHTML("")
	}}
}

func TestCollectTrends_CombinesPhases(t *testing.T) {
	browser := aggregationBrowser()
	svc := newTestService(browser)

	res := svc.CollectTrends(context.Background(), CollectOptions{
		Keywords: []string{"countrymusic"},
		Hashtags: []string{"nashville"},
	})

	assert.True(t, res.Success)
	assert.Equal(t, "browser", res.Method)
	assert.False(t, res.CollectedAt.IsZero())

	var keywords []string
	for _, tr := range res.Trends {
		keywords = append(keywords, tr.Keyword)
	}
	// Search phase surfaces related and frequent hashtags (the two sets merge),
	// the hashtag phase appends its detail trend last.
	assert.Equal(t, []string{"barnlife", "fiddle", "nashville"}, keywords)

	for i, tr := range res.Trends {
		assert.Equal(t, i+1, tr.Rank, "ranks must be contiguous from 1")
	}

	assert.Equal(t, "search", res.Trends[0].Metadata["source"])
	assert.Equal(t, "countrymusic", res.Trends[0].Metadata["seed"])
	assert.Equal(t, "#barnlife", res.Trends[0].Hashtag)

	nashville := res.Trends[2]
	assert.Equal(t, "hashtag", nashville.Metadata["source"])
	assert.Equal(t, int64(1200000), nashville.ViewCount)
	assert.Equal(t, int64(10), nashville.VideoCount)

	assert.Equal(t, browser.opens, browser.closes)
}

func TestCollectTrends_ExplorePhase(t *testing.T) {
	browser := aggregationBrowser()
	svc := newTestService(browser)

	res := svc.CollectTrends(context.Background(), CollectOptions{IncludeExplore: true})

	assert.True(t, res.Success)
	if assert.Len(t, res.Trends, 1) {
		assert.Equal(t, "LineDance", res.Trends[0].Keyword)
		assert.Equal(t, "explore", res.Trends[0].Metadata["source"])
	}
}

func TestCollectTrends_DeduplicatesAcrossRuns(t *testing.T) {
	browser := aggregationBrowser()
	svc := newTestService(browser)
	opts := CollectOptions{Keywords: []string{"countrymusic"}, Hashtags: []string{"nashville"}}

	first := svc.CollectTrends(context.Background(), opts)
	second := svc.CollectTrends(context.Background(), opts)

	assert.Equal(t, len(first.Trends), len(second.Trends))
	for i := range first.Trends {
		assert.Equal(t, first.Trends[i].Keyword, second.Trends[i].Keyword)
		assert.Equal(t, first.Trends[i].Rank, second.Trends[i].Rank)
	}
}

func TestCollectTrends_PartialPhaseFailure(t *testing.T) {
	browser := aggregationBrowser()
	browser.navErr = func(url string) error {
		if strings.Contains(url, "/search?q=") {
			return errors.New("net::ERR_TIMED_OUT")
		}
		return nil
	}
	svc := newTestService(browser)

	res := svc.CollectTrends(context.Background(), CollectOptions{
		Keywords: []string{"countrymusic"},
		Hashtags: []string{"nashville"},
	})

	// The failing keyword phase is skipped, not fatal.
	assert.True(t, res.Success)
	if assert.Len(t, res.Trends, 1) {
		assert.Equal(t, "nashville", res.Trends[0].Keyword)
		assert.Equal(t, 1, res.Trends[0].Rank)
	}
	assert.Equal(t, browser.opens, browser.closes)
}

func TestCollectTrends_NothingCollected(t *testing.T) {
	browser := &fakeBrowser{navErr: func(string) error { return errors.New("net::ERR_TIMED_OUT") }}
	svc := newTestService(browser)

	res := svc.CollectTrends(context.Background(), CollectOptions{
		Keywords:       []string{"countrymusic"},
		IncludeExplore: true,
	})

	assert.False(t, res.Success)
	assert.Empty(t, res.Trends)
	assert.Equal(t, "no trends collected", res.Error)
	assert.Equal(t, browser.opens, browser.closes)
}

func TestCollectTrends_CancelledBetweenIterations(t *testing.T) {
	browser := aggregationBrowser()
	svc := newTestService(browser)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.CollectTrends(ctx, CollectOptions{Keywords: []string{"countrymusic"}})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, browser.opens, "no page may be opened after cancellation")
}

func TestCollectCountryMusicTrends_SeedSet(t *testing.T) {
	browser := aggregationBrowser()
	svc := newTestService(browser)

	res := svc.CollectCountryMusicTrends(context.Background())

	assert.True(t, res.Success)
	visited := strings.Join(browser.visited, " ")
	assert.Contains(t, visited, "/explore")
	assert.Contains(t, visited, "/search?q=country")
	assert.Contains(t, visited, "/tag/nashville")
	assert.Equal(t, browser.opens, browser.closes)
}

func TestTopHashtags_FrequencyThenFirstSeen(t *testing.T) {
	videos := []domain.VideoSample{
		{Hashtags: []string{"fiddle", "barnlife"}},
		{Hashtags: []string{"barnlife"}},
		{Hashtags: []string{"TwoStep"}},
	}
	// barnlife wins on frequency; fiddle beats TwoStep on first appearance.
	assert.Equal(t, []string{"barnlife", "fiddle"}, topHashtags(videos, 2))
	assert.Equal(t, []string{"barnlife", "fiddle", "TwoStep"}, topHashtags(videos, 10))
}
