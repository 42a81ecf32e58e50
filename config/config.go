package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries the engine tunables. Every field has a working default so a
// bare environment still runs; only malformed values are errors.
type Config struct {
	ChromeExecPath string
	Headless       bool

	UserAgent      string
	AcceptLanguage string
	Timezone       string
	Latitude       float64
	Longitude      float64

	NavigationTimeout time.Duration
	ScrollPause       time.Duration
	IterationDelay    time.Duration

	ExploreScrolls      int
	MaxSearchScrolls    int
	SearchLimit         int
	SearchFallbackLimit int

	Keywords []string
	Hashtags []string

	OutputPath string
	ReportPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		ChromeExecPath: os.Getenv("TREND_CHROME_PATH"),
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		Timezone:       "America/Chicago",
		// Nashville, the center of gravity for the default seed set.
		Latitude:  36.1627,
		Longitude: -86.7816,

		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		ScrollPause:       1500 * time.Millisecond,
		IterationDelay:    2 * time.Second,

		ExploreScrolls:      3,
		MaxSearchScrolls:    8,
		SearchLimit:         20,
		SearchFallbackLimit: 30,

		Keywords: []string{"country music", "countrymusic"},
		Hashtags: []string{"countrymusic", "countrysong", "nashville"},

		OutputPath: "data/trends.ndjson",
		ReportPath: "data/trends.html",
	}

	if v := os.Getenv("TREND_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("TREND_ACCEPT_LANGUAGE"); v != "" {
		cfg.AcceptLanguage = v
	}
	if v := os.Getenv("TREND_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TREND_OUTPUT"); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv("TREND_REPORT"); v != "" {
		cfg.ReportPath = v
	}
	if v := os.Getenv("TREND_KEYWORDS"); v != "" {
		cfg.Keywords = splitList(v)
	}
	if v := os.Getenv("TREND_HASHTAGS"); v != "" {
		cfg.Hashtags = splitList(v)
	}

	var err error
	if cfg.Headless, err = getBool("TREND_HEADLESS", cfg.Headless); err != nil {
		return nil, err
	}
	if cfg.NavigationTimeout, err = getDuration("TREND_NAV_TIMEOUT", cfg.NavigationTimeout); err != nil {
		return nil, err
	}
	if cfg.ScrollPause, err = getDuration("TREND_SCROLL_PAUSE", cfg.ScrollPause); err != nil {
		return nil, err
	}
	if cfg.IterationDelay, err = getDuration("TREND_ITERATION_DELAY", cfg.IterationDelay); err != nil {
		return nil, err
	}
	if cfg.ExploreScrolls, err = getInt("TREND_EXPLORE_SCROLLS", cfg.ExploreScrolls); err != nil {
		return nil, err
	}
	if cfg.MaxSearchScrolls, err = getInt("TREND_MAX_SEARCH_SCROLLS", cfg.MaxSearchScrolls); err != nil {
		return nil, err
	}
	if cfg.SearchLimit, err = getInt("TREND_SEARCH_LIMIT", cfg.SearchLimit); err != nil {
		return nil, err
	}
	if cfg.SearchFallbackLimit, err = getInt("TREND_SEARCH_FALLBACK_LIMIT", cfg.SearchFallbackLimit); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 1500ms, got %q", key, v)
	}
	return d, nil
}
