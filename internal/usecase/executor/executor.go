// Package executor runs an action plan against a browser session. Actions
// execute strictly in order; the first fatal failure halts the plan and the
// partial result list is returned with the halting action marked failed.
package executor

import (
	"context"
	"errors"
	"fmt"

	"heyq/internal/application/port/output"
	"heyq/internal/domain/entity"
)

const maxAdvisorSelectors = 3

type Executor struct {
	driver  output.BrowserDriver
	advisor output.SelectorAdvisor
	policy  RetryPolicy
	logger  output.LoggerPort
}

// New builds an executor for one plan run. advisor may be nil; it is only
// consulted when the request enabled the AI path and every planned candidate
// is exhausted.
func New(driver output.BrowserDriver, advisor output.SelectorAdvisor, policy RetryPolicy, logger output.LoggerPort) *Executor {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &Executor{driver: driver, advisor: advisor, policy: policy, logger: logger}
}

// Execute consumes the plan sequentially. It never re-enters a plan.
func (e *Executor) Execute(ctx context.Context, plan entity.ActionPlan) []entity.ActionResult {
	results := make([]entity.ActionResult, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		res := e.runAction(ctx, action)
		results = append(results, res)
		if res.Fatal() {
			e.logger.Warn("plan halted",
				"action", string(action.Kind), "name", action.Name,
				"error_kind", string(res.Error.Kind))
			break
		}
	}
	return results
}

func (e *Executor) runAction(ctx context.Context, action entity.AtomicAction) entity.ActionResult {
	if err := ctx.Err(); err != nil {
		return failed(action, entity.ErrKindTimeout, "request budget exhausted before action started")
	}

	switch action.Kind {
	case entity.ActionNavigate:
		return e.navigate(ctx, action)
	case entity.ActionFind, entity.ActionWaitFor:
		return e.find(ctx, action)
	case entity.ActionFill:
		return e.fill(ctx, action)
	case entity.ActionClick:
		return e.click(ctx, action)
	}
	return failed(action, entity.ErrKindDriverFatal, fmt.Sprintf("unknown action kind %s", action.Kind))
}

func (e *Executor) navigate(ctx context.Context, action entity.AtomicAction) entity.ActionResult {
	e.logger.Info("navigate", "url", action.URL)
	if err := e.driver.Navigate(ctx, action.URL); err != nil {
		// A navigation exception is infrastructure failure, distinct from an
		// element that merely failed to resolve.
		return failedErr(action, entity.ErrKindDriverFatal, err)
	}
	return entity.ActionResult{
		Action: action.Kind, Name: action.Name, OK: true,
		Data: map[string]any{"url": e.driver.CurrentURL(ctx)},
	}
}

func (e *Executor) find(ctx context.Context, action entity.AtomicAction) entity.ActionResult {
	el, selector, err := e.resolve(ctx, action)
	if err != nil {
		return e.resolutionFailure(action, err)
	}
	res := entity.ActionResult{
		Action: action.Kind, Name: action.Name, OK: true, Selector: selector,
		Data: map[string]any{"selector": selector},
	}
	if text, terr := e.driver.Text(ctx, el); terr == nil && text != "" {
		res.Data["text"] = text
	}
	return res
}

func (e *Executor) fill(ctx context.Context, action entity.AtomicAction) entity.ActionResult {
	el, selector, err := e.resolve(ctx, action)
	if err != nil {
		return e.resolutionFailure(action, err)
	}
	if err := e.interact(ctx, func() error { return e.driver.Fill(ctx, el, action.Value) }); err != nil {
		return e.interactionFailure(action, selector, err)
	}
	recorded := action.Value
	if action.Secret {
		recorded = entity.Redacted
	}
	e.logger.Info("fill", "name", action.Name, "selector", selector, "value", recorded)
	return entity.ActionResult{
		Action: action.Kind, Name: action.Name, OK: true, Selector: selector,
		Data: map[string]any{"selector": selector, "value": recorded},
	}
}

func (e *Executor) click(ctx context.Context, action entity.AtomicAction) entity.ActionResult {
	el, selector, err := e.resolve(ctx, action)
	if err != nil {
		return e.resolutionFailure(action, err)
	}
	if err := e.interact(ctx, func() error { return e.driver.Click(ctx, el) }); err != nil {
		return e.interactionFailure(action, selector, err)
	}
	e.logger.Info("click", "name", action.Name, "selector", selector)
	return entity.ActionResult{
		Action: action.Kind, Name: action.Name, OK: true, Selector: selector,
		Data: map[string]any{"selector": selector},
	}
}

// resolve walks the candidate selectors in priority order and returns the
// first visible match. The winning handle is cached for the remainder of the
// action only; nothing carries across actions. Each attempt is wrapped in
// the bounded backoff retry for not-yet-ready conditions.
func (e *Executor) resolve(ctx context.Context, action entity.AtomicAction) (output.Element, string, error) {
	el, sel, err := e.tryCandidates(ctx, action.Selectors)
	if err == nil || !errors.Is(err, output.ErrElementAbsent) {
		return el, sel, err
	}

	// Planned candidates exhausted: widen heuristically, then ask the
	// advisor if one is wired in.
	if alts := alternativeSelectors(action.Selectors); len(alts) > 0 {
		if el, sel, aerr := e.tryCandidates(ctx, alts); aerr == nil {
			e.logger.Info("alternative selector resolved", "name", action.Name, "selector", sel)
			return el, sel, nil
		}
	}
	if e.advisor != nil {
		if el, sel, aerr := e.consultAdvisor(ctx, action); aerr == nil {
			return el, sel, nil
		}
	}
	return nil, "", err
}

func (e *Executor) tryCandidates(ctx context.Context, selectors []string) (output.Element, string, error) {
	for _, selector := range selectors {
		el, err := e.locateWithRetry(ctx, selector)
		if err == nil {
			return el, selector, nil
		}
		if errors.Is(err, output.ErrElementAbsent) {
			continue // logical miss, fall through to the next candidate
		}
		return nil, "", err
	}
	return nil, "", output.ErrElementAbsent
}

func (e *Executor) locateWithRetry(ctx context.Context, selector string) (output.Element, error) {
	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		el, err := e.driver.Locate(ctx, selector)
		if err == nil {
			visible, verr := e.driver.IsVisible(ctx, el)
			if verr == nil && visible {
				return el, nil
			}
			// Present but not yet interactable: a render-delay condition.
			err = output.ErrNotReady
		}
		lastErr = err
		if !e.policy.Retryable(err) {
			return nil, err
		}
		if attempt < e.policy.MaxAttempts {
			if serr := e.policy.sleep(ctx, attempt); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, lastErr
}

// interact retries a fill/click the same way resolution is retried, since the
// page can re-render between locating and acting.
func (e *Executor) interact(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !e.policy.Retryable(lastErr) {
			return lastErr
		}
		if attempt < e.policy.MaxAttempts {
			if serr := e.policy.sleep(ctx, attempt); serr != nil {
				return serr
			}
		}
	}
	return lastErr
}

func (e *Executor) consultAdvisor(ctx context.Context, action entity.AtomicAction) (output.Element, string, error) {
	pageText, _ := e.driver.PageText(ctx)
	suggested, err := e.advisor.Suggest(ctx, output.SelectorSuggestion{
		ActionKind: string(action.Kind),
		Target:     action.Name,
		Failed:     action.Selectors,
		PageText:   pageText,
	})
	if err != nil {
		e.logger.Warn("selector advisor failed", "name", action.Name, "error", err.Error())
		return nil, "", err
	}
	if len(suggested) > maxAdvisorSelectors {
		suggested = suggested[:maxAdvisorSelectors]
	}
	el, sel, err := e.tryCandidates(ctx, suggested)
	if err == nil {
		e.logger.Info("advisor selector resolved", "name", action.Name, "selector", sel)
	}
	return el, sel, err
}

func (e *Executor) resolutionFailure(action entity.AtomicAction, err error) entity.ActionResult {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return failed(action, entity.ErrKindTimeout, "request budget exhausted while resolving "+action.Name)
	case errors.Is(err, output.ErrElementAbsent), errors.Is(err, output.ErrNotReady):
		return failed(action, entity.ErrKindElementResolution,
			fmt.Sprintf("no candidate selector resolved a visible element for %s", action.Name))
	default:
		return failedErr(action, entity.ErrKindDriverFatal, err)
	}
}

func (e *Executor) interactionFailure(action entity.AtomicAction, selector string, err error) entity.ActionResult {
	if errors.Is(err, output.ErrSessionClosed) {
		return failedErr(action, entity.ErrKindDriverFatal, err)
	}
	res := failed(action, entity.ErrKindElementResolution,
		fmt.Sprintf("%s resolved via %s but interaction failed: %v", action.Name, selector, err))
	res.Selector = selector
	return res
}

func failed(action entity.AtomicAction, kind entity.ErrorKind, msg string) entity.ActionResult {
	return entity.ActionResult{
		Action: action.Kind, Name: action.Name,
		Error: &entity.ActionError{Kind: kind, Message: msg},
	}
}

func failedErr(action entity.AtomicAction, kind entity.ErrorKind, err error) entity.ActionResult {
	return failed(action, kind, err.Error())
}
