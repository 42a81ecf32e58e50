package domain

const (
	BaseURL          = "https://www.tiktok.com"
	ExploreURL       = BaseURL + "/explore"
	SearchURLFormat  = BaseURL + "/search?q=%s"
	HashtagURLFormat = BaseURL + "/tag/%s"

	// MethodBrowser tags results produced by the headless-browser chain.
	MethodBrowser = "browser"
)

// Default extraction budgets. The tunable durations live in config; these are
// the structural defaults services fall back to.
const (
	DefaultSearchLimit         = 20
	DefaultSearchFallbackLimit = 30
	DefaultExploreScrolls      = 3
	DefaultMaxSearchScrolls    = 8
	DefaultTopHashtagCount     = 10
	ScrollStepPixels           = 900
)
