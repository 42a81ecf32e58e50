package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"trend-collector/config"
	"trend-collector/domain"
)

// BrowserManager owns the single shared Chrome process. The process launches
// lazily on first use and is relaunched transparently when its context is
// found dead; a failed launch is fatal and not retried.
type BrowserManager struct {
	cfg *config.Config
	log zerolog.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewBrowserManager(cfg *config.Config, log zerolog.Logger) *BrowserManager {
	return &BrowserManager{cfg: cfg, log: log}
}

func (m *BrowserManager) acquire(ctx context.Context) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browserCtx != nil && m.browserCtx.Err() == nil {
		return m.browserCtx, nil
	}
	if m.browserCtx != nil {
		m.log.Warn().Msg("browser process disconnected, relaunching")
		m.teardownLocked()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), chromeOptions(m.cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Starts the process; a launch failure here is an environment problem.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	m.allocCancel = allocCancel
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel
	m.log.Info().Bool("headless", m.cfg.Headless).Msg("browser process started")
	return m.browserCtx, nil
}

// NewPage opens a fingerprint-hardened tab on the shared browser. The caller
// owns the page and must Close it on every exit path.
func (m *BrowserManager) NewPage(ctx context.Context) (domain.Page, error) {
	browserCtx, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	if err := m.hardenTab(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to prepare stealth page: %w", err)
	}
	interceptRequests(tabCtx)

	return &StealthPage{
		ctx:        tabCtx,
		cancel:     tabCancel,
		navTimeout: m.cfg.NavigationTimeout,
	}, nil
}

func (m *BrowserManager) hardenTab(tabCtx context.Context) error {
	cfg := m.cfg
	return chromedp.Run(tabCtx,
		emulation.SetUserAgentOverride(cfg.UserAgent).
			WithAcceptLanguage(cfg.AcceptLanguage).
			WithPlatform("Win32"),
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		emulation.SetTimezoneOverride(cfg.Timezone),
		emulation.SetGeolocationOverride().
			WithLatitude(cfg.Latitude).
			WithLongitude(cfg.Longitude).
			WithAccuracy(geoAccuracyMeters),
		network.Enable(),
		network.SetExtraHTTPHeaders(clientHintHeaders(cfg)),
		fetch.Enable().WithPatterns([]*fetch.RequestPattern{
			{ResourceType: network.ResourceTypeMedia, RequestStage: fetch.RequestStageRequest},
			{ResourceType: network.ResourceTypeFont, RequestStage: fetch.RequestStageRequest},
		}),
		chromedp.ActionFunc(func(c context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(c)
			return err
		}),
	)
}

// interceptRequests aborts every paused request; only media/font patterns are
// registered, so images and scripts are never paused.
func interceptRequests(tabCtx context.Context) {
	c := chromedp.FromContext(tabCtx)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			ectx := cdp.WithExecutor(tabCtx, c.Target)
			if blockedResource(e.ResourceType) {
				_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
				return
			}
			_ = fetch.ContinueRequest(e.RequestID).Do(ectx)
		}()
	})
}

func (m *BrowserManager) teardownLocked() {
	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.browserCtx = nil
	m.browserCancel = nil
	m.allocCancel = nil
}

// Close tears the shared browser process down. Safe to call when no browser
// was ever launched.
func (m *BrowserManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx != nil {
		m.log.Info().Msg("closing browser process")
	}
	m.teardownLocked()
}
