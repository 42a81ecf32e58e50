package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trend-collector/domain"
)

// fakeBrowser hands out fakePages serving canned HTML per URL and counts
// opens against closes.
type fakeBrowser struct {
	htmlFor    func(url string) string
	navErr     func(url string) error
	newPageErr error

	opens   int
	closes  int
	visited []string
}

func (b *fakeBrowser) NewPage(ctx context.Context) (domain.Page, error) {
	if b.newPageErr != nil {
		return nil, b.newPageErr
	}
	b.opens++
	return &fakePage{browser: b}, nil
}

type fakePage struct {
	browser *fakeBrowser
	current string
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.browser.visited = append(p.browser.visited, url)
	p.current = url
	if p.browser.navErr != nil {
		return p.browser.navErr(url)
	}
	return nil
}

func (p *fakePage) ScrollBy(ctx context.Context, pixels int) error { return nil }

func (p *fakePage) Idle(ctx context.Context, d time.Duration) error { return nil }

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.browser.htmlFor == nil {
		return "<html><body></body></html>", nil
	}
	return p.browser.htmlFor(p.current), nil
}

func (p *fakePage) Close() error {
	p.browser.closes++
	return nil
}

func newTestService(b *fakeBrowser) *TrendService {
	return NewTrendService(
		WithBrowser(b),
		WithIterationDelay(time.Millisecond),
		WithScrollPause(0),
	)
}

// --- fixture builders ---

func rehydrationHTML(scope map[string]interface{}, body string) string {
	blob, _ := json.Marshal(map[string]interface{}{"__DEFAULT_SCOPE__": scope})
	return fmt.Sprintf(
		`<html><head><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">%s</script></head><body>%s</body></html>`,
		blob, body)
}

func legacyStateHTML(state map[string]interface{}, body string) string {
	blob, _ := json.Marshal(state)
	return fmt.Sprintf(
		`<html><head><script id="SIGI_STATE" type="application/json">%s</script></head><body>%s</body></html>`,
		blob, body)
}

func plainHTML(body string) string {
	return "<html><head></head><body>" + body + "</body></html>"
}

func blobItem(id, author, desc string, tags ...string) map[string]interface{} {
	challenges := make([]map[string]string, 0, len(tags))
	for _, t := range tags {
		challenges = append(challenges, map[string]string{"title": t})
	}
	return map[string]interface{}{
		"id":         id,
		"desc":       desc,
		"createTime": 1700000000,
		"author":     map[string]string{"uniqueId": author, "nickname": author},
		"stats":      map[string]interface{}{"playCount": 1000, "diggCount": "1.2K", "commentCount": 3, "shareCount": 4},
		"video":      map[string]string{"cover": "https://cdn.example/" + id + ".jpg"},
		"music":      map[string]string{"title": "some song"},
		"challenges": challenges,
	}
}
