package di

import (
	"fmt"
	"time"

	"heyq/internal/application/port/input"
	"heyq/internal/application/port/output"
	"heyq/internal/infrastructure/browser/rod"
	"heyq/internal/infrastructure/config"
	"heyq/internal/infrastructure/env"
	"heyq/internal/infrastructure/llm/openai"
	"heyq/internal/infrastructure/logger"
	"heyq/internal/infrastructure/trace"
	"heyq/internal/server"
	"heyq/internal/usecase/executor"
	"heyq/internal/usecase/orchestrator"
	"heyq/internal/usecase/planner"
)

type Container struct {
	Config       config.Config
	Logger       output.LoggerPort
	Pool         *rod.Pool
	Orchestrator input.Orchestrator
	Server       *server.Server
}

func NewContainer(configPath string) (*Container, error) {
	envc := env.NewService()

	cfg, err := config.Load(configPath, envc)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	sessionCfg := rod.SessionConfig{
		Headless:      true,
		LocateTimeout: cfg.Browser.LocateTimeout,
		NavTimeout:    cfg.Browser.NavTimeout,
		SlowMotion:    time.Duration(cfg.Browser.SlowMoMs) * time.Millisecond,
		NoSandbox:     cfg.Browser.NoSandbox,
	}
	pool := rod.NewPool(cfg.Browser.PoolSize, sessionCfg)

	advisor := openai.New(openai.Config{
		APIKey:      cfg.AdvisorAPIKey,
		Model:       cfg.Advisor.Model,
		BaseURL:     cfg.Advisor.BaseURL,
		CallsPerMin: cfg.Advisor.CallsPerMin,
		Logger:      log,
	})

	tracer, err := trace.NewRecorder(cfg.TraceFile)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create trace recorder: %w", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		Profile: planner.Profile{
			Username:   cfg.Credentials.Username,
			Password:   cfg.Credentials.Password,
			FirstName:  cfg.Credentials.FirstName,
			LastName:   cfg.Credentials.LastName,
			PostalCode: cfg.Credentials.PostalCode,
		},
		RetryPolicy: executor.RetryPolicy{
			MaxAttempts: cfg.Pipeline.Retry.MaxAttempts,
			BaseDelay:   cfg.Pipeline.Retry.BaseDelay,
			MaxDelay:    cfg.Pipeline.Retry.MaxDelay,
			Retryable:   executor.DefaultRetryPolicy().Retryable,
		},
		RequestTimeout: cfg.Pipeline.RequestTimeout,
	}, pool, advisorOrNil(advisor), tracer, log)

	srv := server.New(cfg.Server.Addr, orch, log)

	return &Container{
		Config:       cfg,
		Logger:       log,
		Pool:         pool,
		Orchestrator: orch,
		Server:       srv,
	}, nil
}

// advisorOrNil keeps a typed-nil *openai.Advisor from sneaking into the
// interface value.
func advisorOrNil(a *openai.Advisor) output.SelectorAdvisor {
	if a == nil {
		return nil
	}
	return a
}

func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
