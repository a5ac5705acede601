package rod

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"heyq/internal/application/port/output"
)

var _ output.SessionPool = (*Pool)(nil)

// SessionFactory builds one driver per acquisition. Tests swap in fakes.
type SessionFactory func(ctx context.Context, cfg SessionConfig) (output.BrowserDriver, error)

// Pool caps the number of live Chromium processes. Each Acquire launches a
// fresh session; release closes it and frees the slot. Sessions are not
// reused because a dirty page is worse than a slow launch.
type Pool struct {
	sem     *semaphore.Weighted
	base    SessionConfig
	factory SessionFactory
}

func NewPool(size int, base SessionConfig) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		base: base,
		factory: func(ctx context.Context, cfg SessionConfig) (output.BrowserDriver, error) {
			return NewSession(ctx, cfg)
		},
	}
}

// WithFactory overrides session construction. Used in tests.
func (p *Pool) WithFactory(f SessionFactory) *Pool {
	p.factory = f
	return p
}

func (p *Pool) Acquire(ctx context.Context, opts output.SessionOptions) (output.BrowserDriver, func(), error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}

	cfg := p.base
	if opts.Headed {
		cfg.Headless = false
	}
	if opts.SlowMo > 0 {
		cfg.SlowMotion = opts.SlowMo
	}

	driver, err := p.factory(ctx, cfg)
	if err != nil {
		p.sem.Release(1)
		return nil, nil, err
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		driver.CloseSession()
		p.sem.Release(1)
	}
	return driver, release, nil
}

// WaitIdle blocks until every slot is free or the context expires. Used by
// shutdown to let in-flight runs finish.
func (p *Pool) WaitIdle(ctx context.Context, size int) error {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.sem.Acquire(ctx, int64(size)); err != nil {
		return err
	}
	p.sem.Release(int64(size))
	return nil
}
