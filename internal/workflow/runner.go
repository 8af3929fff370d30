package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/telemetry"
)

// WorkflowResult is the terminal snapshot of one run.
type WorkflowResult struct {
	Status  domain.WorkflowStatus     `json:"status"`
	Results map[StageName]StageResult `json:"results"`
	Errors  []string                  `json:"errors,omitempty"`
	Message string                    `json:"message,omitempty"`
}

// Options tunes a Runner. The zero value is usable.
type Options struct {
	// Rules defaults to domain.DefaultEligibilityRules when zero.
	Rules domain.EligibilityRules

	// StageTimeout, when positive, bounds each stage invocation. A stage
	// that overruns is recorded as a failure; its goroutine is abandoned.
	StageTimeout time.Duration

	Logger  *slog.Logger
	Metrics *telemetry.WorkflowMetrics
}

// Runner executes the loan processing pipeline: three independent checks
// fan out concurrently, a barrier gates eligibility on all of them, and
// recommendation plus finalize run on the tail.
type Runner struct {
	graph        *graph
	collab       Collaborators
	rules        domain.EligibilityRules
	stageTimeout time.Duration
	logger       *slog.Logger
	metrics      *telemetry.WorkflowMetrics

	// runMu serializes runs so Progress always describes a single run.
	runMu sync.Mutex

	progressMu    sync.RWMutex
	progress      *progressTracker
	progressOwner string
}

func NewRunner(collab Collaborators, opts Options) (*Runner, error) {
	if err := collab.validate(); err != nil {
		return nil, err
	}

	rules := opts.Rules
	if rulesUnset(rules) {
		rules = domain.DefaultEligibilityRules()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		collab:       collab,
		rules:        rules,
		stageTimeout: opts.StageTimeout,
		logger:       logger,
		metrics:      opts.Metrics,
	}

	g, err := newPipelineGraph(r.stageFuncs())
	if err != nil {
		return nil, &SchedulerError{Op: "build graph", Err: err}
	}
	r.graph = g
	return r, nil
}

// rulesUnset reports whether the caller left Options.Rules at its zero value.
func rulesUnset(rules domain.EligibilityRules) bool {
	return rules.MaxLTV == 0 &&
		rules.MinCreditScore == 0 &&
		len(rules.AllowedEmployment) == 0 &&
		rules.MaxDTI == 0 &&
		rules.MinIncome == 0
}

// Progress reports per-stage completion for the current (or most recent)
// run. Completion counts regardless of stage outcome. Before any run it
// reports every stage as pending.
func (r *Runner) Progress() Progress {
	r.progressMu.RLock()
	tracker := r.progress
	r.progressMu.RUnlock()

	if tracker == nil {
		pending := make(Progress, len(stageOrder()))
		for _, name := range stageOrder() {
			pending[name] = false
		}
		return pending
	}
	return tracker.snapshot()
}

// ProgressFor returns the live tracker only when ownerID tagged the run that
// owns it. A queued run that has not yet acquired the scheduler must never
// observe another run's tracker.
func (r *Runner) ProgressFor(ownerID string) (Progress, bool) {
	r.progressMu.RLock()
	tracker := r.progress
	owner := r.progressOwner
	r.progressMu.RUnlock()

	if tracker == nil || owner != ownerID {
		return nil, false
	}
	return tracker.snapshot(), true
}

// RunWorkflow executes the full pipeline for one application. The error
// return is reserved for scheduler faults (cancelled context, internal
// invariant breach); stage failures surface inside the result instead.
func (r *Runner) RunWorkflow(ctx context.Context, applicant domain.ApplicantData, documents []domain.DocumentRef) (*WorkflowResult, error) {
	return r.RunWorkflowFor(ctx, "", applicant, documents)
}

// RunWorkflowFor tags the run with an owner identifier, typically the
// application ID, so ProgressFor can attribute the live tracker to the run
// that actually holds the scheduler. The tag is recorded only once this run
// acquires the scheduler; a queued run leaves the previous owner in place.
func (r *Runner) RunWorkflowFor(ctx context.Context, ownerID string, applicant domain.ApplicantData, documents []domain.DocumentRef) (*WorkflowResult, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	started := time.Now()
	state := newWorkflowState(applicant, documents)
	tracker := newProgressTracker(stageOrder())

	r.progressMu.Lock()
	r.progress = tracker
	r.progressOwner = ownerID
	r.progressMu.Unlock()

	log := r.logger.With("run_id", uuid.NewString())
	log.Info("workflow started",
		"applicant", applicant.FullName,
		"documents", len(documents))

	gate := newBarrierGate(r.graph.gateWaitFor...)
	var wg sync.WaitGroup
	for _, name := range r.graph.roots {
		wg.Add(1)
		go func(name StageName) {
			defer wg.Done()
			r.runStage(ctx, name, state, tracker)
			gate.signal(name)
		}(name)
	}

	if err := gate.wait(ctx); err != nil {
		schedErr := &SchedulerError{Op: "wait for fan-out barrier", Err: err}
		return r.errorResult(log, state, schedErr, started), schedErr
	}
	wg.Wait()

	for _, name := range r.graph.tail {
		if err := ctx.Err(); err != nil {
			schedErr := &SchedulerError{Op: fmt.Sprintf("run stage %s", name), Err: err}
			return r.errorResult(log, state, schedErr, started), schedErr
		}
		r.runStage(ctx, name, state, tracker)
	}

	results, errs, status := state.snapshot()
	if status == "" {
		// Finalize never settled the status; treat as an internal fault.
		schedErr := &SchedulerError{Op: "finalize", Err: fmt.Errorf("final status was never set")}
		return r.errorResult(log, state, schedErr, started), schedErr
	}

	elapsed := time.Since(started)
	if r.metrics != nil {
		r.metrics.ObserveWorkflow(string(status), elapsed)
	}
	log.Info("workflow completed",
		"status", status,
		"errors", len(errs),
		"duration", elapsed)

	return &WorkflowResult{
		Status:  status,
		Results: results,
		Errors:  errs,
		Message: statusMessage(status, errs),
	}, nil
}

func (r *Runner) runStage(ctx context.Context, name StageName, state *WorkflowState, tracker *progressTracker) {
	started := time.Now()
	res := r.invoke(ctx, name, state)

	if err := state.setResult(res); err != nil {
		// Duplicate slot writes indicate a scheduling bug; keep the first
		// result and record the anomaly.
		r.logger.Error("stage result dropped", "stage", name, "error", err)
	} else {
		if len(res.Warnings) > 0 {
			state.appendErrors(res.Warnings...)
		}
		if res.Failed() {
			state.appendErrors(fmt.Sprintf("%s error: %s", stageLabel(name), res.Err))
		}
	}
	tracker.markDone(name)

	elapsed := time.Since(started)
	if r.metrics != nil {
		r.metrics.ObserveStage(string(name), string(res.Status), elapsed)
	}
	if res.Failed() {
		r.logger.Warn("stage failed", "stage", name, "reason", res.Err, "duration", elapsed)
	} else {
		r.logger.Debug("stage completed", "stage", name, "duration", elapsed)
	}
}

// invoke runs one stage function with panic containment and the optional
// per-stage deadline. A panicking or overrunning stage becomes a failure
// result; it never takes the scheduler down.
func (r *Runner) invoke(ctx context.Context, name StageName, state *WorkflowState) StageResult {
	fn := r.graph.stages[name]

	stageCtx := ctx
	var cancel context.CancelFunc
	if r.stageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, r.stageTimeout)
		defer cancel()
	}

	done := make(chan StageResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- failureResult(name, fmt.Sprintf("stage panicked: %v", rec))
			}
		}()
		done <- fn(stageCtx, state)
	}()

	select {
	case res := <-done:
		return res
	case <-stageCtx.Done():
		return failureResult(name, fmt.Sprintf("stage did not finish: %v", stageCtx.Err()))
	}
}

func (r *Runner) errorResult(log *slog.Logger, state *WorkflowState, schedErr *SchedulerError, started time.Time) *WorkflowResult {
	results, errs, _ := state.snapshot()
	errs = append(errs, schedErr.Error())

	if r.metrics != nil {
		r.metrics.ObserveWorkflow(string(domain.WorkflowError), time.Since(started))
	}
	log.Error("workflow aborted", "error", schedErr)

	return &WorkflowResult{
		Status:  domain.WorkflowError,
		Results: results,
		Errors:  errs,
		Message: schedErr.Error(),
	}
}

func statusMessage(status domain.WorkflowStatus, errs []string) string {
	switch status {
	case domain.WorkflowSuccess:
		return "application processed successfully"
	case domain.WorkflowPartialSuccess:
		return fmt.Sprintf("application processed with %d issue(s)", len(errs))
	case domain.WorkflowFailed:
		return "application processing failed"
	default:
		return "application processing aborted"
	}
}

func stageLabel(name StageName) string {
	switch name {
	case StageDocumentValidation:
		return "Document validation"
	case StageCreditScoring:
		return "Credit scoring"
	case StagePropertyValuation:
		return "Property valuation"
	case StageEligibility:
		return "Eligibility"
	case StageRecommendation:
		return "Recommendation"
	case StageFinalize:
		return "Finalize"
	default:
		return string(name)
	}
}
