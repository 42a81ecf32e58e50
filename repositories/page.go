package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// StealthPage is one hardened tab on the shared browser. It implements
// domain.Page.
type StealthPage struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
}

func (p *StealthPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(p.ctx, p.navTimeout)
	defer cancel()
	if err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (p *StealthPage) ScrollBy(ctx context.Context, pixels int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil),
	)
}

func (p *StealthPage) Idle(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Sleep(d))
}

func (p *StealthPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tctx, cancel := context.WithTimeout(p.ctx, p.navTimeout)
	defer cancel()
	var html string
	if err := chromedp.Run(tctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture page html: %w", err)
	}
	return html, nil
}

func (p *StealthPage) Close() error {
	p.cancel()
	return nil
}
