package workflow

import (
	"fmt"
	"sync"

	"home-loan-orchestrator/internal/domain"
)

// WorkflowState is the mutable aggregate one run owns. Each stage writes
// exactly one result slot; the accumulated error list and the final status
// are written through the scheduler, the latter only by finalize. The write
// set is disjoint per stage, so a single mutex is enough.
type WorkflowState struct {
	Applicant domain.ApplicantData
	Documents []domain.DocumentRef

	mu          sync.Mutex
	results     map[StageName]StageResult
	errors      []string
	finalStatus domain.WorkflowStatus
	statusSet   bool
}

func newWorkflowState(applicant domain.ApplicantData, documents []domain.DocumentRef) *WorkflowState {
	return &WorkflowState{
		Applicant: applicant,
		Documents: documents,
		results:   make(map[StageName]StageResult),
	}
}

// Result returns the recorded result for a stage. Callers downstream of the
// barrier gate are guaranteed to observe every gated predecessor's slot.
func (s *WorkflowState) Result(stage StageName) (StageResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[stage]
	return res, ok
}

func (s *WorkflowState) setResult(res StageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[res.Stage]; exists {
		return fmt.Errorf("stage %s produced a second result", res.Stage)
	}
	s.results[res.Stage] = res
	return nil
}

func (s *WorkflowState) appendErrors(msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msgs...)
}

// setFinalStatus enforces the single-writer invariant on the overall status.
func (s *WorkflowState) setFinalStatus(status domain.WorkflowStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusSet {
		return fmt.Errorf("final status already set to %s", s.finalStatus)
	}
	s.finalStatus = status
	s.statusSet = true
	return nil
}

func (s *WorkflowState) snapshot() (map[StageName]StageResult, []string, domain.WorkflowStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make(map[StageName]StageResult, len(s.results))
	for k, v := range s.results {
		results[k] = v
	}
	errs := make([]string, len(s.errors))
	copy(errs, s.errors)
	return results, errs, s.finalStatus
}
