package workflow

import "context"

// StageName identifies one unit of analysis work in the pipeline. The set of
// stages is fixed at compile time; the graph in graph.go wires them together.
type StageName string

const (
	StageDocumentValidation StageName = "document_validation"
	StageCreditScoring      StageName = "credit_scoring"
	StagePropertyValuation  StageName = "property_valuation"
	StageEligibility        StageName = "eligibility"
	StageRecommendation     StageName = "recommendation"
	StageFinalize           StageName = "finalize"
)

type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailure StageStatus = "failure"
)

// StageResult is the single record a stage produces. It is written once into
// the workflow state and never mutated afterwards. A failed stage still counts
// as "produced" for barrier purposes.
type StageResult struct {
	Stage    StageName   `json:"stage"`
	Status   StageStatus `json:"status"`
	Payload  any         `json:"payload,omitempty"`
	Err      string      `json:"error,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

func (r StageResult) Failed() bool {
	return r.Status == StageFailure
}

// StageFunc produces the result for one stage. Implementations must confine
// faults to their own result: any internal error comes back as a failure
// result, never as a panic past the stage boundary (the scheduler still
// recovers panics as a last line of defense).
type StageFunc func(ctx context.Context, state *WorkflowState) StageResult

func successResult(stage StageName, payload any, warnings ...string) StageResult {
	return StageResult{Stage: stage, Status: StageSuccess, Payload: payload, Warnings: warnings}
}

func failureResult(stage StageName, reason string) StageResult {
	return StageResult{Stage: stage, Status: StageFailure, Err: reason}
}
