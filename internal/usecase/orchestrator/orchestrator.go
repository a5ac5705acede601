// Package orchestrator ties the pipeline together per request:
// classify -> resolve context -> plan -> execute -> verify -> respond.
// Control flow is strictly request-scoped; the session store is the only
// state that outlives a request.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"heyq/internal/application/port/input"
	"heyq/internal/application/port/output"
	"heyq/internal/domain/entity"
	"heyq/internal/usecase/classifier"
	"heyq/internal/usecase/executor"
	"heyq/internal/usecase/extractor"
	"heyq/internal/usecase/planner"
	"heyq/internal/usecase/session"
	"heyq/internal/usecase/verifier"
)

const DefaultRequestTimeout = 2 * time.Minute

// Tracer records one redacted line per request; wired to the JSONL trace
// file. May be nil.
type Tracer interface {
	Record(runID, sessionID, utterance string, intent entity.IntentKind, entities map[string]any, status string)
}

// ScreenshotSaver is optionally implemented by a Tracer that can persist
// failure evidence.
type ScreenshotSaver interface {
	SaveScreenshot(runID string, data []byte) (string, error)
}

type Orchestrator struct {
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
	sessions   *session.Store
	planner    *planner.Planner
	verifier   *verifier.Verifier
	pool       output.SessionPool
	advisor    output.SelectorAdvisor
	policy     executor.RetryPolicy
	logger     output.LoggerPort
	tracer     Tracer
	timeout    time.Duration
}

var _ input.Orchestrator = (*Orchestrator)(nil)

type Config struct {
	Profile        planner.Profile
	RetryPolicy    executor.RetryPolicy
	RequestTimeout time.Duration
}

func New(cfg Config, pool output.SessionPool, advisor output.SelectorAdvisor, tracer Tracer, logger output.LoggerPort) *Orchestrator {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	policy := cfg.RetryPolicy
	if policy.MaxAttempts <= 0 {
		policy = executor.DefaultRetryPolicy()
	}
	return &Orchestrator{
		extractor:  extractor.New(),
		classifier: classifier.New(),
		sessions:   session.NewStore(),
		planner:    planner.New(cfg.Profile),
		verifier:   verifier.New(),
		pool:       pool,
		advisor:    advisor,
		policy:     policy,
		logger:     logger,
		tracer:     tracer,
		timeout:    timeout,
	}
}

// Clear drops the session's conversational memory.
func (o *Orchestrator) Clear(sessionID string) {
	o.sessions.Clear(sessionID)
	o.logger.Info("session context cleared", "session_id", sessionID)
}

// Run handles one utterance end to end. Every exit path produces either a
// verification verdict or a typed error, never both, never neither.
func (o *Orchestrator) Run(ctx context.Context, req input.RunRequest) input.RunResponse {
	runID := uuid.NewString()
	log := o.logger.WithField("run_id", runID)
	log.Info("utterance received", "session_id", req.SessionID, "utterance", req.Utterance)

	if isClearSignal(req.Utterance) {
		o.Clear(req.SessionID)
		return input.RunResponse{OK: true}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	entities := o.extractor.Extract(req.Utterance)
	intent := o.classifier.Classify(req.Utterance, entities)
	if intent.Kind == entity.IntentUnknown {
		return o.fail(runID, req, intent,
			entity.NewError(entity.ErrKindClassification, "could not understand the command, please rephrase"))
	}

	intent.Entities = o.sessions.Resolve(req.SessionID, intent.Entities)
	classifier.DefaultSearchSite(&intent)

	// A cart intent without a product even after context resolution degrades
	// to a clarification request rather than proceeding with null data.
	if needsProduct(intent.Kind) && !intent.Entities.Has(entity.EntityProduct) {
		return o.fail(runID, req, intent,
			entity.NewError(entity.ErrKindClassification, "which product? say e.g. \"add backpack to cart\""))
	}

	plan, err := o.planner.Plan(intent)
	if err != nil {
		return o.fail(runID, req, intent, err)
	}
	o.sessions.Update(req.SessionID, intent.Entities)
	log.Info("plan resolved", "intent", string(intent.Kind), "actions", len(plan.Actions))

	driver, release, err := o.pool.Acquire(ctx, output.SessionOptions{
		Headed: req.Headed,
		SlowMo: time.Duration(req.SlowMoMs) * time.Millisecond,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return o.fail(runID, req, intent, entity.WrapError(entity.ErrKindTimeout, "request budget exhausted acquiring browser", err))
		}
		return o.fail(runID, req, intent, entity.WrapError(entity.ErrKindDriverFatal, "could not acquire browser session", err))
	}
	defer release()

	var advisor output.SelectorAdvisor
	if req.UseAI {
		advisor = o.advisor
	}
	results := executor.New(driver, advisor, o.policy, log).Execute(ctx, plan)

	if ctx.Err() != nil {
		// No partial verdict is fabricated on expiry; the session is torn
		// down by the deferred release.
		return o.fail(runID, req, intent, entity.WrapError(entity.ErrKindTimeout, "request timed out mid-plan", ctx.Err()))
	}
	if err := fatalDriverError(results); err != nil {
		return o.fail(runID, req, intent, err)
	}

	verdict := o.verifier.Verify(intent, results)
	log.Info("verdict produced", "status", string(verdict.Status), "checks", len(verdict.Checks))
	if verdict.Status == entity.StatusFail {
		o.captureEvidence(ctx, runID, driver, log)
	}
	o.trace(runID, req, intent, string(verdict.Status))

	return input.RunResponse{
		OK:           true,
		Site:         intent.Entities.Value(entity.EntitySite),
		Intent:       intentPayload(intent),
		Verification: &verdict,
	}
}

func (o *Orchestrator) fail(runID string, req input.RunRequest, intent entity.Intent, err error) input.RunResponse {
	kind := entity.KindOf(err)
	o.logger.Warn("request failed", "run_id", runID, "error_kind", string(kind), "error", err.Error())
	o.trace(runID, req, intent, "ERROR:"+string(kind))
	resp := input.RunResponse{Error: err.Error()}
	if intent.Kind != "" && intent.Kind != entity.IntentUnknown {
		resp.Intent = intentPayload(intent)
		resp.Site = intent.Entities.Value(entity.EntitySite)
	}
	return resp
}

// captureEvidence snapshots the page on a FAIL verdict so the trace has
// something to look at. Best effort: evidence failures never fail the run.
func (o *Orchestrator) captureEvidence(ctx context.Context, runID string, driver output.BrowserDriver, log output.LoggerPort) {
	saver, ok := o.tracer.(ScreenshotSaver)
	if !ok {
		return
	}
	img, err := driver.Screenshot(ctx)
	if err != nil || len(img) == 0 {
		return
	}
	if path, err := saver.SaveScreenshot(runID, img); err == nil {
		log.Info("failure screenshot saved", "path", path)
	}
}

func (o *Orchestrator) trace(runID string, req input.RunRequest, intent entity.Intent, status string) {
	if o.tracer == nil {
		return
	}
	o.tracer.Record(runID, req.SessionID, req.Utterance, intent.Kind, intent.Entities.Values(), status)
}

func intentPayload(intent entity.Intent) *input.IntentPayload {
	return &input.IntentPayload{
		Action:   string(intent.Kind),
		Entities: intent.Entities.Values(),
	}
}

func needsProduct(kind entity.IntentKind) bool {
	switch kind {
	case entity.IntentAddToCart, entity.IntentAddToCartFlow, entity.IntentSearch:
		return true
	}
	return false
}

// fatalDriverError distinguishes infrastructure failure from assertion
// failure: a crashed session or navigation exception is surfaced as a typed
// error instead of a verdict.
func fatalDriverError(results []entity.ActionResult) error {
	for _, r := range results {
		if r.Error != nil && r.Error.Kind == entity.ErrKindDriverFatal {
			return entity.NewError(entity.ErrKindDriverFatal, r.Error.Message)
		}
		if r.Error != nil && r.Error.Kind == entity.ErrKindTimeout {
			return entity.NewError(entity.ErrKindTimeout, r.Error.Message)
		}
	}
	return nil
}

func isClearSignal(utterance string) bool {
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "clear", "cancel", "clear context", "start over", "reset":
		return true
	}
	return false
}
