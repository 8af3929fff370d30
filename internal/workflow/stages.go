package workflow

import (
	"context"
	"fmt"
	"strings"

	"home-loan-orchestrator/internal/domain"
)

// Collaborator contracts. The orchestrator only ever sees these narrow
// interfaces; OCR, bureau calls, valuation models and LLM prompting live
// behind them.

type DocumentValidator interface {
	Validate(ctx context.Context, documents []domain.DocumentRef, applicant domain.ApplicantData) (domain.ValidationReport, error)
}

type CreditScorer interface {
	Score(ctx context.Context, applicant domain.ApplicantData) (domain.CreditReport, error)
}

type PropertyValuer interface {
	Value(ctx context.Context, property domain.PropertyDetails) (domain.ValuationReport, error)
}

type Recommender interface {
	Recommend(ctx context.Context, applicant domain.ApplicantData, eligibility domain.EligibilityReport) (domain.RecommendationReport, error)
}

type Collaborators struct {
	Documents   DocumentValidator
	Credit      CreditScorer
	Valuation   PropertyValuer
	Recommender Recommender
}

func (c Collaborators) validate() error {
	if c.Documents == nil {
		return fmt.Errorf("document validator is required")
	}
	if c.Credit == nil {
		return fmt.Errorf("credit scorer is required")
	}
	if c.Valuation == nil {
		return fmt.Errorf("property valuer is required")
	}
	if c.Recommender == nil {
		return fmt.Errorf("recommender is required")
	}
	return nil
}

func (r *Runner) stageDocumentValidation(ctx context.Context, state *WorkflowState) StageResult {
	if len(state.Documents) == 0 {
		return failureResult(StageDocumentValidation, (&InputError{Field: "documents"}).Error())
	}

	report, err := r.collab.Documents.Validate(ctx, state.Documents, state.Applicant)
	if err != nil {
		return failureResult(StageDocumentValidation, err.Error())
	}

	// Cross-check the extracted name against the application form; a
	// mismatch fails the report content, not the stage.
	appName := strings.ToUpper(strings.TrimSpace(state.Applicant.FullName))
	if report.Consolidated.ApplicantName != nil {
		docName := strings.ToUpper(strings.TrimSpace(*report.Consolidated.ApplicantName))
		if appName != "" && docName != "" && appName != docName {
			report.Checks = append(report.Checks, domain.DocumentCheck{
				Check:  "Name Match",
				Status: domain.CheckFailure,
				Reason: fmt.Sprintf("document name %q does not match application name %q", docName, appName),
			})
			report.OverallStatus = domain.CheckFailure
		}
	}

	var warnings []string
	for _, check := range report.Checks {
		if check.Status == domain.CheckWarning {
			warnings = append(warnings, fmt.Sprintf("document validation: %s: %s", check.Check, check.Reason))
		}
	}
	return successResult(StageDocumentValidation, report, warnings...)
}

func (r *Runner) stageCreditScoring(ctx context.Context, state *WorkflowState) StageResult {
	if strings.TrimSpace(state.Applicant.PANNumber) == "" {
		return failureResult(StageCreditScoring, (&InputError{Field: "pan_number"}).Error())
	}

	report, err := r.collab.Credit.Score(ctx, state.Applicant)
	if err != nil {
		return failureResult(StageCreditScoring, err.Error())
	}

	// A bureau outage degrades the aggregate rather than failing the stage.
	var warnings []string
	for _, bureau := range report.BureauReports {
		if bureau.Status != "success" {
			warnings = append(warnings, fmt.Sprintf("credit scoring: %s bureau unavailable: %s", bureau.Bureau, bureau.Message))
		}
	}
	return successResult(StageCreditScoring, report, warnings...)
}

func (r *Runner) stagePropertyValuation(ctx context.Context, state *WorkflowState) StageResult {
	if state.Applicant.Property == nil {
		return failureResult(StagePropertyValuation, (&InputError{Field: "property_details"}).Error())
	}

	report, err := r.collab.Valuation.Value(ctx, *state.Applicant.Property)
	if err != nil {
		return failureResult(StagePropertyValuation, err.Error())
	}

	var warnings []string
	if report.FallbackReason != "" {
		warnings = append(warnings, fmt.Sprintf("property valuation: model fallback: %s", report.FallbackReason))
	}
	return successResult(StagePropertyValuation, report, warnings...)
}

func (r *Runner) stageEligibility(_ context.Context, state *WorkflowState) StageResult {
	// The barrier guarantees all three predecessor slots are settled; a
	// failed predecessor shows up as a failure marker, not a missing slot.
	for _, upstream := range []StageName{StageDocumentValidation, StageCreditScoring, StagePropertyValuation} {
		if _, ok := state.Result(upstream); !ok {
			return failureResult(StageEligibility, fmt.Sprintf("upstream stage %s has no result", upstream))
		}
	}

	fallbackScore := 0
	if credit, ok := state.Result(StageCreditScoring); ok && !credit.Failed() {
		if report, ok := credit.Payload.(domain.CreditReport); ok {
			fallbackScore = report.CreditScore
		}
	}

	report := domain.EvaluateEligibility(r.rules, state.Applicant, fallbackScore)
	return successResult(StageEligibility, report)
}

func (r *Runner) stageRecommendation(ctx context.Context, state *WorkflowState) StageResult {
	eligibility := domain.EligibilityReport{}
	if res, ok := state.Result(StageEligibility); ok && !res.Failed() {
		if report, ok := res.Payload.(domain.EligibilityReport); ok {
			eligibility = report
		}
	}

	report, err := r.collab.Recommender.Recommend(ctx, state.Applicant, eligibility)
	if err != nil {
		return failureResult(StageRecommendation, (&UpstreamError{Collaborator: "recommendation", Err: err}).Error())
	}
	return successResult(StageRecommendation, report)
}

// stageFinalize is the single writer of the overall status. It classifies
// from whatever the prior stages produced: any stage failure wins, then a
// non-empty error list downgrades success to partial.
func (r *Runner) stageFinalize(_ context.Context, state *WorkflowState) StageResult {
	results, errs, _ := state.snapshot()

	status := domain.WorkflowSuccess
	for _, res := range results {
		if res.Failed() {
			status = domain.WorkflowFailed
			break
		}
	}
	if status == domain.WorkflowSuccess && len(errs) > 0 {
		status = domain.WorkflowPartialSuccess
	}

	if err := state.setFinalStatus(status); err != nil {
		return failureResult(StageFinalize, err.Error())
	}
	return successResult(StageFinalize, status)
}

func (r *Runner) stageFuncs() map[StageName]StageFunc {
	return map[StageName]StageFunc{
		StageDocumentValidation: r.stageDocumentValidation,
		StageCreditScoring:      r.stageCreditScoring,
		StagePropertyValuation:  r.stagePropertyValuation,
		StageEligibility:        r.stageEligibility,
		StageRecommendation:     r.stageRecommendation,
		StageFinalize:           r.stageFinalize,
	}
}
