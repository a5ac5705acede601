package output

import (
	"context"
	"errors"
	"time"
)

// Element is an opaque handle to a located page element. Only the driver
// that produced it knows what is inside.
type Element any

// Sentinel errors a driver uses to classify resolution failures. Absent is a
// logical miss (the page settled and the element is not there) and must not
// be retried; NotReady marks transient render/load conditions the executor's
// retry policy is allowed to absorb.
var (
	ErrElementAbsent = errors.New("element absent")
	ErrNotReady      = errors.New("page not ready")
	ErrSessionClosed = errors.New("browser session closed")
)

// BrowserDriver is the capability surface the core depends on. The executor
// never reaches past it to a concrete automation stack.
type BrowserDriver interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, selector string) (Element, error)
	IsVisible(ctx context.Context, el Element) (bool, error)
	Fill(ctx context.Context, el Element, text string) error
	Click(ctx context.Context, el Element) error
	Text(ctx context.Context, el Element) (string, error)

	CurrentURL(ctx context.Context) string
	PageText(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)

	CloseSession()
}

// SessionOptions are the per-request knobs forwarded from RunRequest.
type SessionOptions struct {
	Headed bool
	SlowMo time.Duration
}

// SessionPool hands out one browser session per request. The release func
// must be called on every exit path.
type SessionPool interface {
	Acquire(ctx context.Context, opts SessionOptions) (BrowserDriver, func(), error)
}
