package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heyq/internal/application/port/input"
	"heyq/internal/application/port/output"
	"heyq/internal/domain/entity"
	"heyq/internal/infrastructure/logger"
)

// stubDriver resolves any selector listed in page and echoes navigations.
type stubDriver struct {
	page   map[string]string
	navErr error
	url    string
	closed bool
}

type stubElement struct{ text string }

func (d *stubDriver) Navigate(ctx context.Context, url string) error {
	if d.navErr != nil {
		return d.navErr
	}
	d.url = url
	return nil
}

func (d *stubDriver) Locate(ctx context.Context, selector string) (output.Element, error) {
	text, ok := d.page[selector]
	if !ok {
		return nil, output.ErrElementAbsent
	}
	return &stubElement{text: text}, nil
}

func (d *stubDriver) IsVisible(ctx context.Context, el output.Element) (bool, error) {
	return true, nil
}

func (d *stubDriver) Fill(ctx context.Context, el output.Element, text string) error { return nil }
func (d *stubDriver) Click(ctx context.Context, el output.Element) error             { return nil }

func (d *stubDriver) Text(ctx context.Context, el output.Element) (string, error) {
	return el.(*stubElement).text, nil
}

func (d *stubDriver) CurrentURL(ctx context.Context) string          { return d.url }
func (d *stubDriver) PageText(ctx context.Context) (string, error)   { return "", nil }
func (d *stubDriver) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }
func (d *stubDriver) CloseSession()                                  { d.closed = true }

type stubPool struct {
	driver   *stubDriver
	err      error
	acquired int
	released int
}

func (p *stubPool) Acquire(ctx context.Context, opts output.SessionOptions) (output.BrowserDriver, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	p.acquired++
	return p.driver, func() {
		p.released++
		p.driver.CloseSession()
	}, nil
}

type traceLine struct {
	SessionID string
	Utterance string
	Intent    entity.IntentKind
	Status    string
}

type stubTracer struct {
	mu    sync.Mutex
	lines []traceLine
}

func (t *stubTracer) Record(runID, sessionID, utterance string, intent entity.IntentKind, entities map[string]any, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, traceLine{sessionID, utterance, intent, status})
}

func saucedemoPage() map[string]string {
	return map[string]string{
		"#user-name":                        "",
		"#password":                         "",
		"#login-button":                     "Login",
		"[data-test='inventory-item-name']": "Sauce Labs Backpack $29.99",
		"button[data-test*='add-to-cart']":  "Add to cart",
		"#shopping_cart_container a":        "1",
		"#checkout":                         "Checkout",
		"#first-name":                       "",
		"#last-name":                        "",
		"#postal-code":                      "",
		"#continue":                         "Continue",
		"#finish":                           "Finish",
		"[data-test='complete-header']":     "Thank you for your order!",
	}
}

func TestNavigateUtterancePasses(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: map[string]string{}}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "go to saucedemo.com", SessionID: "s1",
	})

	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "saucedemo.com", resp.Site)
	require.NotNil(t, resp.Intent)
	assert.Equal(t, string(entity.IntentNavigate), resp.Intent.Action)
	require.NotNil(t, resp.Verification)
	assert.Equal(t, entity.StatusPass, resp.Verification.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 1, pool.released, "session released on success")
}

func TestCartFlowUtterancePasses(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: saucedemoPage()}}
	tracer := &stubTracer{}
	o := New(Config{}, pool, nil, tracer, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "login and add a backpack to the cart", SessionID: "s1",
	})

	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "saucedemo.com", resp.Site)
	assert.Equal(t, string(entity.IntentAddToCartFlow), resp.Intent.Action)
	assert.Equal(t, entity.StatusPass, resp.Verification.Status)

	require.Len(t, tracer.lines, 1)
	assert.Equal(t, "PASS", tracer.lines[0].Status)
}

func searchPage() map[string]string {
	return map[string]string{
		"input[name='q']":       "",
		"button[type='submit']": "Search",
		"#results":              "12 results for laptop",
	}
}

func TestSearchWithoutSiteFallsBackToGoogle(t *testing.T) {
	driver := &stubDriver{page: searchPage()}
	pool := &stubPool{driver: driver}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "search for laptop", SessionID: "fresh",
	})

	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "google.com", resp.Site)
	assert.Equal(t, "https://google.com", driver.url)
	assert.Equal(t, entity.StatusPass, resp.Verification.Status)
}

func TestSearchPrefersRememberedSiteOverGoogle(t *testing.T) {
	driver := &stubDriver{page: searchPage()}
	pool := &stubPool{driver: driver}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	first := o.Run(context.Background(), input.RunRequest{
		Utterance: "go to amazon.com", SessionID: "s1",
	})
	require.True(t, first.OK, first.Error)

	// Same session: the site remembered from the last turn wins over the
	// general search fallback.
	second := o.Run(context.Background(), input.RunRequest{
		Utterance: "search for laptop", SessionID: "s1",
	})
	require.True(t, second.OK, second.Error)
	assert.Equal(t, "amazon.com", second.Site)
	assert.Equal(t, "https://amazon.com", driver.url)
}

func TestBareCheckoutAsksForMissingEntity(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: saucedemoPage()}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "checkout", SessionID: "fresh",
	})

	assert.False(t, resp.OK)
	assert.Nil(t, resp.Verification)
	assert.Contains(t, resp.Error, "missing_entity")
	assert.Contains(t, resp.Error, "product")
	assert.Zero(t, pool.acquired, "no browser session for an unplannable request")
}

func TestContextCarryoverAcrossTurns(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: saucedemoPage()}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	first := o.Run(context.Background(), input.RunRequest{
		Utterance: "login and add a backpack to the cart", SessionID: "s1",
	})
	require.True(t, first.OK, first.Error)

	// Same session: "checkout" now inherits site and product from context.
	second := o.Run(context.Background(), input.RunRequest{
		Utterance: "checkout", SessionID: "s1",
	})
	require.True(t, second.OK, second.Error)
	assert.Equal(t, string(entity.IntentCheckout), second.Intent.Action)
	assert.Equal(t, "backpack", second.Intent.Entities["product"])
	assert.Equal(t, entity.StatusPass, second.Verification.Status)
}

func TestUnknownUtteranceIsClarification(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{}}
	tracer := &stubTracer{}
	o := New(Config{}, pool, nil, tracer, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "what is the weather today", SessionID: "s1",
	})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "classification_ambiguous")
	assert.Nil(t, resp.Intent, "no intent echoed for UNKNOWN")
	require.Len(t, tracer.lines, 1)
	assert.Equal(t, "ERROR:classification_ambiguous", tracer.lines[0].Status)
}

func TestClearSignalDropsContext(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: saucedemoPage()}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	first := o.Run(context.Background(), input.RunRequest{
		Utterance: "login and add a backpack to the cart", SessionID: "s1",
	})
	require.True(t, first.OK, first.Error)

	cleared := o.Run(context.Background(), input.RunRequest{
		Utterance: "clear context", SessionID: "s1",
	})
	assert.True(t, cleared.OK)
	assert.Nil(t, cleared.Verification)

	// Checkout no longer inherits anything.
	after := o.Run(context.Background(), input.RunRequest{
		Utterance: "checkout", SessionID: "s1",
	})
	assert.False(t, after.OK)
	assert.Contains(t, after.Error, "missing_entity")
}

func TestNavigationFailureIsTypedErrorNotVerdict(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "go to nosuchsite.com", SessionID: "s1",
	})

	assert.False(t, resp.OK)
	assert.Nil(t, resp.Verification, "infrastructure failure never fabricates a verdict")
	assert.Contains(t, resp.Error, "driver_fatal")
	assert.Equal(t, 1, pool.released, "session released on failure too")
}

func TestElementResolutionFailureStillYieldsVerdict(t *testing.T) {
	// Login works, product tile never resolves: assertion failure, not
	// infrastructure failure, so a FAIL verdict is produced.
	page := saucedemoPage()
	delete(page, "[data-test='inventory-item-name']")
	pool := &stubPool{driver: &stubDriver{page: page}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "login and add a gold bar to the cart", SessionID: "s1",
	})

	require.True(t, resp.OK, resp.Error)
	require.NotNil(t, resp.Verification)
	assert.Equal(t, entity.StatusFail, resp.Verification.Status)
}

func TestPoolAcquireFailure(t *testing.T) {
	pool := &stubPool{err: errors.New("no free slot")}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	resp := o.Run(context.Background(), input.RunRequest{
		Utterance: "go to saucedemo.com", SessionID: "s1",
	})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "driver_fatal")
}

func TestClearInterfaceMethod(t *testing.T) {
	pool := &stubPool{driver: &stubDriver{page: saucedemoPage()}}
	o := New(Config{}, pool, nil, nil, logger.NewNop())

	first := o.Run(context.Background(), input.RunRequest{
		Utterance: "login and add a backpack to the cart", SessionID: "s1",
	})
	require.True(t, first.OK, first.Error)

	o.Clear("s1")

	after := o.Run(context.Background(), input.RunRequest{
		Utterance: "checkout", SessionID: "s1",
	})
	assert.False(t, after.OK)
}
