package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"trend-collector/domain"
)

// BrowserSession hands out isolated stealth pages on the shared browser
// process. Satisfied by repositories.BrowserManager; tests substitute fakes.
type BrowserSession interface {
	NewPage(ctx context.Context) (domain.Page, error)
}

// TrendService drives the headless browser against the platform's public
// pages: explore discovery, keyword search and hashtag detail, plus the
// aggregation pass combining all three. Calls are strictly sequential; the
// shared browser is a serialized resource.
type TrendService struct {
	browser BrowserSession
	log     zerolog.Logger
	limiter *rate.Limiter

	scrollPause         time.Duration
	exploreScrolls      int
	maxSearchScrolls    int
	searchLimit         int
	searchFallbackLimit int
	topHashtagCount     int
}

type TrendOption func(*TrendService)

func WithBrowser(b BrowserSession) TrendOption {
	return func(s *TrendService) { s.browser = b }
}

func WithLogger(log zerolog.Logger) TrendOption {
	return func(s *TrendService) { s.log = log }
}

// WithIterationDelay sets the anti-rate-limit pause between per-keyword and
// per-hashtag iterations of an aggregation run.
func WithIterationDelay(d time.Duration) TrendOption {
	return func(s *TrendService) { s.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

func WithScrollPause(d time.Duration) TrendOption {
	return func(s *TrendService) { s.scrollPause = d }
}

func WithScrollBudget(exploreScrolls, maxSearchScrolls int) TrendOption {
	return func(s *TrendService) {
		s.exploreScrolls = exploreScrolls
		s.maxSearchScrolls = maxSearchScrolls
	}
}

func WithSearchLimits(perKeyword, hashtagFallback int) TrendOption {
	return func(s *TrendService) {
		s.searchLimit = perKeyword
		s.searchFallbackLimit = hashtagFallback
	}
}

func NewTrendService(opts ...TrendOption) *TrendService {
	s := &TrendService{
		log:                 zerolog.Nop(),
		limiter:             rate.NewLimiter(rate.Every(2*time.Second), 1),
		scrollPause:         1500 * time.Millisecond,
		exploreScrolls:      domain.DefaultExploreScrolls,
		maxSearchScrolls:    domain.DefaultMaxSearchScrolls,
		searchLimit:         domain.DefaultSearchLimit,
		searchFallbackLimit: domain.DefaultSearchFallbackLimit,
		topHashtagCount:     domain.DefaultTopHashtagCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadDocument opens a stealth page, navigates, runs the scroll plan to
// trigger lazy loading and returns a parsed snapshot of the live DOM. The
// page is closed on every path before returning.
func (s *TrendService) loadDocument(ctx context.Context, url string, scrolls int, returnToTop bool) (*goquery.Document, error) {
	pg, err := s.browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer pg.Close()

	if err := pg.Navigate(ctx, url); err != nil {
		return nil, err
	}
	_ = pg.Idle(ctx, s.scrollPause)
	for i := 0; i < scrolls; i++ {
		_ = pg.ScrollBy(ctx, domain.ScrollStepPixels)
		_ = pg.Idle(ctx, s.scrollPause)
	}
	if returnToTop && scrolls > 0 {
		_ = pg.ScrollBy(ctx, -scrolls*domain.ScrollStepPixels)
		_ = pg.Idle(ctx, s.scrollPause)
	}

	html, err := pg.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// CollectOptions selects the seed inputs of one aggregation run.
type CollectOptions struct {
	Keywords       []string
	Hashtags       []string
	IncludeExplore bool
}

// CollectTrends runs the explore, per-keyword search and per-hashtag detail
// phases in order, folding everything into one case-insensitive accumulator,
// and emits the re-ranked combined list. A failing phase or item is logged
// and skipped; it never aborts the rest of the batch.
func (s *TrendService) CollectTrends(ctx context.Context, opts CollectOptions) domain.CollectionResult {
	res := domain.CollectionResult{Method: domain.MethodBrowser, CollectedAt: time.Now()}
	acc := newTrendAccumulator()

	if opts.IncludeExplore {
		explore := s.ScrapeExplorePage(ctx)
		if !explore.Success {
			s.log.Warn().Str("phase", "explore").Str("error", explore.Error).Msg("explore phase failed")
		}
		for _, t := range explore.Trends {
			acc.add(t)
		}
	}

	for _, keyword := range opts.Keywords {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn().Err(err).Msg("aggregation stopped between iterations")
			res.Error = err.Error()
			break
		}
		search := s.SearchKeyword(ctx, keyword, s.searchLimit)
		if !search.Success {
			s.log.Warn().Str("phase", "search").Str("keyword", keyword).Str("error", search.Error).Msg("keyword phase failed")
			continue
		}
		for _, tag := range search.RelatedHashtags {
			acc.add(searchTrend(tag, keyword))
		}
		for _, tag := range topHashtags(search.Videos, s.topHashtagCount) {
			acc.add(searchTrend(tag, keyword))
		}
	}

	for _, hashtag := range opts.Hashtags {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn().Err(err).Msg("aggregation stopped between iterations")
			res.Error = err.Error()
			break
		}
		detail := s.ScrapeHashtagPage(ctx, hashtag)
		if detail.Info == nil {
			if !detail.Success {
				s.log.Warn().Str("phase", "hashtag").Str("hashtag", hashtag).Str("error", detail.Error).Msg("hashtag phase failed")
			}
			continue
		}
		acc.add(hashtagTrend(detail.Info))
	}

	res.Trends = acc.ranked()
	res.Success = len(res.Trends) > 0
	if !res.Success && res.Error == "" {
		res.Error = "no trends collected"
	}
	return res
}

// CollectCountryMusicTrends is a fixed-argument wrapper over CollectTrends
// with the country-music seed set.
func (s *TrendService) CollectCountryMusicTrends(ctx context.Context) domain.CollectionResult {
	return s.CollectTrends(ctx, CollectOptions{
		Keywords:       []string{"country music", "countrymusic"},
		Hashtags:       []string{"countrymusic", "countrysong", "nashville"},
		IncludeExplore: true,
	})
}

// CountryMusicTrends is an alias kept for callers of the older name.
func (s *TrendService) CountryMusicTrends(ctx context.Context) domain.CollectionResult {
	return s.CollectCountryMusicTrends(ctx)
}

func searchTrend(tag, seedKeyword string) domain.TrendItem {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	return domain.TrendItem{
		Keyword:  tag,
		Hashtag:  domain.NormalizeHashtag(tag),
		TrendURL: trendURLFor(tag),
		Metadata: map[string]string{"source": "search", "seed": seedKeyword},
	}
}

func hashtagTrend(info *domain.HashtagInfo) domain.TrendItem {
	title := strings.TrimPrefix(strings.TrimSpace(info.Title), "#")
	return domain.TrendItem{
		Keyword:      title,
		Hashtag:      domain.NormalizeHashtag(title),
		ViewCount:    info.ViewCount,
		VideoCount:   info.VideoCount,
		Description:  info.Description,
		ThumbnailURL: info.ThumbnailURL,
		TrendURL:     trendURLFor(title),
		Metadata:     map[string]string{"source": "hashtag"},
	}
}

// trendAccumulator merges trends from all phases, keyed by lowercased
// keyword, preserving insertion order for the final re-rank.
type trendAccumulator struct {
	order []string
	items map[string]domain.TrendItem
}

func newTrendAccumulator() *trendAccumulator {
	return &trendAccumulator{items: map[string]domain.TrendItem{}}
}

func (a *trendAccumulator) add(item domain.TrendItem) {
	key := strings.ToLower(strings.TrimSpace(item.Keyword))
	if key == "" {
		return
	}
	existing, ok := a.items[key]
	if !ok {
		a.order = append(a.order, key)
		a.items[key] = item
		return
	}
	// A later rediscovery only fills fields the first sighting lacked.
	if existing.ViewCount == 0 {
		existing.ViewCount = item.ViewCount
	}
	if existing.VideoCount == 0 {
		existing.VideoCount = item.VideoCount
	}
	if existing.Description == "" {
		existing.Description = item.Description
	}
	if existing.ThumbnailURL == "" {
		existing.ThumbnailURL = item.ThumbnailURL
	}
	if existing.TrendURL == "" {
		existing.TrendURL = item.TrendURL
	}
	a.items[key] = existing
}

func (a *trendAccumulator) ranked() []domain.TrendItem {
	out := make([]domain.TrendItem, 0, len(a.order))
	for i, key := range a.order {
		item := a.items[key]
		item.Rank = i + 1
		out = append(out, item)
	}
	return out
}

// topHashtags counts tag frequency across one keyword's own video samples and
// returns the top n, ties broken by first appearance.
func topHashtags(videos []domain.VideoSample, n int) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	display := map[string]string{}
	for _, v := range videos {
		for _, tag := range v.Hashtags {
			key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
			if key == "" {
				continue
			}
			if _, ok := counts[key]; !ok {
				firstSeen[key] = len(firstSeen)
				display[key] = strings.TrimPrefix(strings.TrimSpace(tag), "#")
			}
			counts[key]++
		}
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, display[key])
	}
	return out
}
