// Package capture renders the dashboard page to a PNG via headless
// Chromium, for always-on displays that can only show an image.
package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport matches the widget's compact always-on layout.
const (
	DefaultWidth      = 480
	DefaultHeight     = 800
	DefaultTimeoutSec = 30
)

// Options defines parameters for a snapshot capture.
type Options struct {
	// URL of the dashboard page, e.g. "http://127.0.0.1:8188/".
	URL string

	// OutputPath is where the PNG will be written, e.g.
	// "<cache_dir>/preview.png".
	OutputPath string

	// Width and Height are the viewport in pixels; zero means the
	// defaults above.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration
}

// SnapshotPNG navigates a headless Chromium to opts.URL, waits for the page
// to flag itself ready via a data-ready attribute on its root element, and
// writes a full screenshot to opts.OutputPath.
func SnapshotPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeoutSec * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay for final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
