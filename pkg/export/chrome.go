package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/datamaps/pkg/errors"
)

// DefaultChromeTimeout bounds one conversion, browser start included.
const DefaultChromeTimeout = 30 * time.Second

// Chrome converts by loading the SVG in headless Chrome and screenshotting
// the root element.
type Chrome struct {
	allocOpts []chromedp.ExecAllocatorOption
	timeout   time.Duration
	quality   int
}

// ChromeOption configures a Chrome converter.
type ChromeOption func(*Chrome)

// WithExecPath uses a specific Chrome or Chromium binary.
func WithExecPath(path string) ChromeOption {
	return func(c *Chrome) { c.allocOpts = append(c.allocOpts, chromedp.ExecPath(path)) }
}

// WithNoSandbox disables the Chrome sandbox, which containers usually need.
func WithNoSandbox() ChromeOption {
	return func(c *Chrome) { c.allocOpts = append(c.allocOpts, chromedp.NoSandbox) }
}

// WithTimeout sets the per-conversion timeout.
func WithTimeout(d time.Duration) ChromeOption {
	return func(c *Chrome) { c.timeout = d }
}

// WithJPEGQuality sets the JPEG quality (1-100, default 90).
func WithJPEGQuality(q int) ChromeOption {
	return func(c *Chrome) { c.quality = q }
}

// NewChrome creates a converter that starts a fresh headless browser per
// conversion.
func NewChrome(opts ...ChromeOption) *Chrome {
	c := &Chrome{
		allocOpts: append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless, chromedp.DisableGPU),
		timeout:   DefaultChromeTimeout,
		quality:   90,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chrome) Supports(format string) bool {
	return format == FormatPNG || format == FormatJPEG
}

func (c *Chrome) Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocOpts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var shot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1280, 800, chromedp.EmulateScale(scale)),
		chromedp.Navigate(dataURI(svg)),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &shot, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "chrome export timed out after %s", c.timeout)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "chrome export")
	}
	if len(shot) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "chrome returned an empty screenshot")
	}

	if format == FormatJPEG {
		return toJPEG(shot, c.quality)
	}
	return shot, nil
}

func dataURI(svg []byte) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
}

func toJPEG(pngData []byte, quality int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode screenshot")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
	}
	return buf.Bytes(), nil
}

var _ Converter = (*Chrome)(nil)
