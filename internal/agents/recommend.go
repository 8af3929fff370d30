package agents

import (
	"context"
	"fmt"
	"time"

	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/llm"
)

// fallbackAdvisorScore stands in when the applicant never declared a score
// and the bureaus gave us nothing to work with.
const fallbackAdvisorScore = 700

// LoanAdvisor produces loan options by prompting a language model and
// parsing its markdown table back into structured rows.
type LoanAdvisor struct {
	client  llm.Client
	model   string
	timeout time.Duration
}

func NewLoanAdvisor(client llm.Client, model string, timeout time.Duration) (*LoanAdvisor, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	return &LoanAdvisor{client: client, model: model, timeout: timeout}, nil
}

func (a *LoanAdvisor) Recommend(ctx context.Context, applicant domain.ApplicantData, eligibility domain.EligibilityReport) (domain.RecommendationReport, error) {
	creditScore := applicant.CreditScore
	if creditScore <= 0 {
		creditScore = fallbackAdvisorScore
	}

	prompt := llm.BuildAdvisorPrompt(
		int64(applicant.LoanAmount),
		int64(applicant.PropertyValue),
		int64(applicant.MonthlyIncome),
		creditScore,
		summarizeEligibility(eligibility),
	)

	text, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:        a.model,
		SystemPrompt: llm.ADVISOR_SYSTEM,
		UserPrompt:   prompt,
		Temperature:  0.3,
		Timeout:      a.timeout,
	})
	if err != nil {
		return domain.RecommendationReport{}, fmt.Errorf("advisor completion: %w", err)
	}

	return domain.RecommendationReport{
		Text:    text,
		Options: llm.ParseLoanOptions(text),
	}, nil
}

func summarizeEligibility(report domain.EligibilityReport) string {
	if report == (domain.EligibilityReport{}) {
		return "eligibility assessment unavailable"
	}

	verdict := "not eligible under standard rules"
	if report.IsEligible {
		verdict = "eligible under standard rules"
	}

	failed := ""
	checks := report.Checks
	for _, c := range []struct {
		name   string
		passed bool
	}{
		{"LTV", checks.LTV},
		{"credit score", checks.CreditScore},
		{"income", checks.Income},
		{"employment", checks.Employment},
		{"DTI", checks.DTI},
	} {
		if !c.passed {
			if failed != "" {
				failed += ", "
			}
			failed += c.name
		}
	}
	if failed != "" {
		verdict += fmt.Sprintf(" (failed checks: %s)", failed)
	}
	return fmt.Sprintf("%s; LTV %.2f, DTI %.2f", verdict, report.LTV, report.DTI)
}
