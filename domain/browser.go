package domain

import (
	"context"
	"time"
)

// Page is one isolated browsing context. Implementations own OS-level browser
// resources; callers must Close on every exit path.
type Page interface {
	Navigate(ctx context.Context, url string) error
	ScrollBy(ctx context.Context, pixels int) error
	Idle(ctx context.Context, d time.Duration) error
	HTML(ctx context.Context) (string, error)
	Close() error
}
