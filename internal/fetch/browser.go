package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// RenderedHTML loads url in a headless Chromium instance via chromedp
// and returns the DOM after scripts have run. The league launch pages
// populate their town dropdowns with JavaScript, so the static HTML a
// plain GET returns can be empty where the rendered page is not.
func RenderedHTML(parent context.Context, url string, timeout time.Duration) (string, error) {
	if url == "" {
		return "", fmt.Errorf("render: url is required")
	}
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay for the dropdown-population scripts.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("render: chromedp run failed: %w", err)
	}
	return html, nil
}
