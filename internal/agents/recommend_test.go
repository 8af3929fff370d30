package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/llm"
)

type cannedLLM struct {
	response string
	err      error
	lastReq  llm.CompletionRequest
}

func (c *cannedLLM) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

const advisorMarkdown = `**Current Scenario Analysis:**
Based on your requested loan we note the following.

| Loan Option | Loan Amount | Interest Rate | Tenure (years) | Monthly EMI | Eligibility |
|---|---|---|---|---|---|
| Option A | ₹60,00,000 | 8.5% | 20 | ₹52,069 | Eligible |
| Option B | ₹55,00,000 | 8.2% | 15 | ₹53,124 | Eligible |

**Offer Rationale:**
These options balance tenure and EMI affordability.`

func TestRecommendParsesAdvisorTable(t *testing.T) {
	client := &cannedLLM{response: advisorMarkdown}
	advisor, err := NewLoanAdvisor(client, "gpt-4o-mini", 0)
	require.NoError(t, err)

	applicant := domain.ApplicantData{
		FullName:      "Ravi Kumar",
		MonthlyIncome: 80000,
		CreditScore:   760,
		LoanAmount:    6000000,
		PropertyValue: 10000000,
	}
	eligibility := domain.EligibilityReport{
		IsEligible: true,
		Checks:     domain.EligibilityChecks{LTV: true, CreditScore: true, Income: true, Employment: true, DTI: true},
		LTV:        0.6,
		DTI:        0.2,
	}

	report, err := advisor.Recommend(context.Background(), applicant, eligibility)
	require.NoError(t, err)
	require.Equal(t, advisorMarkdown, report.Text)
	require.Len(t, report.Options, 2)
	require.Equal(t, "Option A", report.Options[0].Option)
	require.Equal(t, "₹52,069", report.Options[0].MonthlyEMI)

	require.Contains(t, client.lastReq.UserPrompt, "₹6000000")
	require.Contains(t, client.lastReq.UserPrompt, "eligible under standard rules")
	require.InDelta(t, 0.3, client.lastReq.Temperature, 0.001)
}

func TestRecommendDefaultsCreditScore(t *testing.T) {
	client := &cannedLLM{response: advisorMarkdown}
	advisor, err := NewLoanAdvisor(client, "", 0)
	require.NoError(t, err)

	_, err = advisor.Recommend(context.Background(), domain.ApplicantData{LoanAmount: 1000000}, domain.EligibilityReport{})
	require.NoError(t, err)
	require.Contains(t, client.lastReq.UserPrompt, "Credit score: 700")
	require.Contains(t, client.lastReq.UserPrompt, "eligibility assessment unavailable")
}

func TestRecommendFlagsHighIncomeLowCredit(t *testing.T) {
	client := &cannedLLM{response: advisorMarkdown}
	advisor, err := NewLoanAdvisor(client, "", 0)
	require.NoError(t, err)

	_, err = advisor.Recommend(context.Background(), domain.ApplicantData{
		MonthlyIncome: 250000,
		CreditScore:   580,
		LoanAmount:    5000000,
	}, domain.EligibilityReport{})
	require.NoError(t, err)
	require.True(t, strings.Contains(client.lastReq.UserPrompt, "special approval"),
		"prompt should carry the high-income low-credit note")
}

func TestRecommendPropagatesClientError(t *testing.T) {
	client := &cannedLLM{err: fmt.Errorf("rate limited")}
	advisor, err := NewLoanAdvisor(client, "", 0)
	require.NoError(t, err)

	_, err = advisor.Recommend(context.Background(), domain.ApplicantData{LoanAmount: 1}, domain.EligibilityReport{})
	require.ErrorContains(t, err, "rate limited")
}

func TestNewLoanAdvisorRequiresClient(t *testing.T) {
	_, err := NewLoanAdvisor(nil, "", 0)
	require.Error(t, err)
}
