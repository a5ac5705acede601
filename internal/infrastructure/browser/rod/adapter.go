// Package rod drives a real Chromium instance through go-rod. One Session
// wraps one launcher + browser + page triple; sessions are never shared
// between requests.
package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"heyq/internal/application/port/output"
)

var _ output.BrowserDriver = (*Session)(nil)

type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	locateTimeout time.Duration
	navTimeout    time.Duration
	closed        bool
}

type SessionConfig struct {
	Headless      bool
	SlowMotion    time.Duration
	LocateTimeout time.Duration
	NavTimeout    time.Duration
	NoSandbox     bool
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Headless:      true,
		SlowMotion:    0,
		LocateTimeout: 3 * time.Second,
		NavTimeout:    60 * time.Second,
		NoSandbox:     true,
	}
}

// NewSession launches a fresh Chromium and opens a blank page. The launcher
// handle is kept so Close can kill the process, not just the connection.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(false).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-web-security").
		Set("allow-running-insecure-content").
		Set("disable-setuid-sandbox")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.LocateTimeout <= 0 {
		cfg.LocateTimeout = 3 * time.Second
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 60 * time.Second
	}

	return &Session{
		browser:       browser,
		launcher:      l,
		page:          page,
		locateTimeout: cfg.LocateTimeout,
		navTimeout:    cfg.NavTimeout,
	}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return output.ErrSessionClosed
	}
	page := s.page.Context(ctx).Timeout(s.navTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %s: %w", url, err)
	}
	s.page.WaitIdle(5 * time.Second)
	return nil
}

// Locate resolves a selector with a short deadline. A deadline hit is
// reported as ErrElementAbsent so the caller can move on to the next
// candidate instead of waiting out the full request budget.
func (s *Session) Locate(ctx context.Context, selector string) (output.Element, error) {
	if s.closed {
		return nil, output.ErrSessionClosed
	}

	page := s.page.Context(ctx).Timeout(s.locateTimeout)

	var el *rod.Element
	var err error
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		el, err = page.ElementX(selector)
	} else {
		el, err = page.Element(selector)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, &rod.ElementNotFoundError{}) {
			return nil, fmt.Errorf("%s: %w", selector, output.ErrElementAbsent)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("locate %s: %w", selector, err)
	}
	return el, nil
}

func (s *Session) IsVisible(ctx context.Context, el output.Element) (bool, error) {
	re, err := s.element(el)
	if err != nil {
		return false, err
	}
	visible, err := re.Context(ctx).Visible()
	if err != nil {
		return false, fmt.Errorf("visibility check: %w", output.ErrNotReady)
	}
	return visible, nil
}

func (s *Session) Fill(ctx context.Context, el output.Element, text string) error {
	re, err := s.element(el)
	if err != nil {
		return err
	}
	re = re.Context(ctx)
	if err := re.SelectAllText(); err == nil {
		_ = re.Input("")
	}
	if err := re.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, el output.Element) error {
	re, err := s.element(el)
	if err != nil {
		return err
	}
	if err := re.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	s.page.WaitIdle(2 * time.Second)
	return nil
}

func (s *Session) Text(ctx context.Context, el output.Element) (string, error) {
	re, err := s.element(el)
	if err != nil {
		return "", err
	}
	text, err := re.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("text read failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Session) CurrentURL(ctx context.Context) string {
	if s.closed {
		return ""
	}
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// PageText returns the visible text of the current page, flattened for
// selector advisory prompts.
func (s *Session) PageText(ctx context.Context) (string, error) {
	if s.closed {
		return "", output.ErrSessionClosed
	}
	body, err := s.page.Context(ctx).Timeout(s.locateTimeout).Element("body")
	if err != nil {
		return "", fmt.Errorf("body not found: %w", err)
	}
	raw, err := body.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return FlattenHTML(raw, defaultMaxTextSize), nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, output.ErrSessionClosed
	}
	imgBytes, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Session) CloseSession() {
	if s.closed {
		return
	}
	s.closed = true
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
}

func (s *Session) element(el output.Element) (*rod.Element, error) {
	if s.closed {
		return nil, output.ErrSessionClosed
	}
	re, ok := el.(*rod.Element)
	if !ok || re == nil {
		return nil, fmt.Errorf("stale element handle: %w", output.ErrElementAbsent)
	}
	return re, nil
}
