package repositories

import (
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"trend-collector/config"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800

	geoAccuracyMeters = 25
)

// stealthScript runs before any page script and hides the usual automation
// giveaways: the webdriver flag, empty plugin/language lists, and the missing
// window.chrome global.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
window.chrome = {runtime: {}, loadTimes: function() {}, csi: function() {}, app: {}};
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications' ?
		Promise.resolve({ state: Notification.permission }) :
		originalQuery(parameters)
);
`

func chromeOptions(cfg *config.Config) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	}
	if cfg.ChromeExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromeExecPath))
	}
	return opts
}

func clientHintHeaders(cfg *config.Config) network.Headers {
	return network.Headers{
		"Accept-Language":    cfg.AcceptLanguage,
		"sec-ch-ua":          `"Chromium";v="121", "Not A(Brand";v="99", "Google Chrome";v="121"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
	}
}

// blockedResource filters heavy downloads. Images stay enabled: thumbnail and
// alt-text extraction depend on them.
func blockedResource(t network.ResourceType) bool {
	switch t {
	case network.ResourceTypeMedia, network.ResourceTypeFont:
		return true
	}
	return false
}
