package workflow_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/workflow"
)

func TestWorkflowSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Suite")
}

type stubValidator struct {
	delay time.Duration
	err   error
}

func (s *stubValidator) Validate(ctx context.Context, _ []domain.DocumentRef, _ domain.ApplicantData) (domain.ValidationReport, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.ValidationReport{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domain.ValidationReport{}, s.err
	}
	return domain.ValidationReport{OverallStatus: domain.CheckSuccess}, nil
}

type stubScorer struct{ err error }

func (s *stubScorer) Score(context.Context, domain.ApplicantData) (domain.CreditReport, error) {
	if s.err != nil {
		return domain.CreditReport{}, s.err
	}
	return domain.CreditReport{CreditScore: 755, ScoreCategory: "excellent"}, nil
}

type stubValuer struct{}

func (s *stubValuer) Value(context.Context, domain.PropertyDetails) (domain.ValuationReport, error) {
	return domain.ValuationReport{EstimatedValue: 10000000, PricePerSqft: 10000, Confidence: 0.9, Method: domain.ValuationModel}, nil
}

type stubRecommender struct{}

func (s *stubRecommender) Recommend(context.Context, domain.ApplicantData, domain.EligibilityReport) (domain.RecommendationReport, error) {
	return domain.RecommendationReport{Text: "three options"}, nil
}

func stubCollaborators() workflow.Collaborators {
	return workflow.Collaborators{
		Documents:   &stubValidator{},
		Credit:      &stubScorer{},
		Valuation:   &stubValuer{},
		Recommender: &stubRecommender{},
	}
}

func suiteApplicant() domain.ApplicantData {
	return domain.ApplicantData{
		FullName:         "Anita Desai",
		PANNumber:        "FGHIJ5678K",
		EmploymentStatus: "salaried",
		MonthlyIncome:    90000,
		CreditScore:      755,
		LoanAmount:       6000000,
		PropertyValue:    10000000,
		Property:         &domain.PropertyDetails{City: "Pune", PropertyType: "apartment", SizeSqft: 1000},
	}
}

func suiteDocuments() []domain.DocumentRef {
	return []domain.DocumentRef{{Kind: domain.DocKindPAN, Locator: "customers_data/HL2/documents/pan.txt"}}
}

var _ = Describe("Runner", func() {
	Describe("running the loan pipeline", func() {
		It("completes with success when every stage passes", func() {
			runner, err := workflow.NewRunner(stubCollaborators(), workflow.Options{})
			Expect(err).ToNot(HaveOccurred())

			result, err := runner.RunWorkflow(context.Background(), suiteApplicant(), suiteDocuments())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(domain.WorkflowSuccess))
			Expect(result.Results).To(HaveLen(6))
			Expect(result.Errors).To(BeEmpty())
		})

		It("reports failed when a fan-out stage errors but still runs the tail", func() {
			collab := stubCollaborators()
			collab.Credit = &stubScorer{err: fmt.Errorf("bureau outage")}
			runner, err := workflow.NewRunner(collab, workflow.Options{})
			Expect(err).ToNot(HaveOccurred())

			result, err := runner.RunWorkflow(context.Background(), suiteApplicant(), suiteDocuments())
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(domain.WorkflowFailed))
			Expect(result.Results).To(HaveKey(workflow.StageEligibility))
			Expect(result.Results).To(HaveKey(workflow.StageRecommendation))
			Expect(result.Errors).ToNot(BeEmpty())
		})

		It("exposes monotonic progress while a slow stage holds the barrier", func() {
			collab := stubCollaborators()
			collab.Documents = &stubValidator{delay: 80 * time.Millisecond}
			runner, err := workflow.NewRunner(collab, workflow.Options{})
			Expect(err).ToNot(HaveOccurred())

			resultCh := make(chan *workflow.WorkflowResult, 1)
			go func() {
				defer GinkgoRecover()
				result, runErr := runner.RunWorkflow(context.Background(), suiteApplicant(), suiteDocuments())
				Expect(runErr).ToNot(HaveOccurred())
				resultCh <- result
			}()

			Eventually(func() bool {
				return runner.Progress()[workflow.StageCreditScoring]
			}, time.Second, 5*time.Millisecond).Should(BeTrue())

			Eventually(resultCh, time.Second).Should(Receive())
			progress := runner.Progress()
			for _, done := range progress {
				Expect(done).To(BeTrue())
			}
		})
	})
})
