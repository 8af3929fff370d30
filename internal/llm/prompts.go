package llm

import (
	"fmt"
	"strings"
)

const ADVISOR_SYSTEM = `You are a smart home loan advisor for an Indian bank.
You produce clear, structured recommendations in markdown.
Never invent applicant data; work only with the figures provided.`

const ADVISOR_USER_TEMPLATE = `The user has requested a loan of ₹{{LOAN_AMOUNT}},
for a property worth ₹{{PROPERTY_VALUE}}. Their monthly income is ₹{{MONTHLY_INCOME}}.
Credit score: {{CREDIT_SCORE}}. Strictly calculate EMI based on the formula below.

Bank rules:
- Max Loan-to-Value (LTV): 70%
- EMI must be <30% of monthly income
- Minimum credit score: 700 (except for special high-income cases)
- Calculate EMI using the formula: EMI = (P * r * (1 + r)^n) / ((1 + r)^n - 1)
  where P is the loan amount, r is the monthly interest rate (annual rate / 12),
  and n is the number of months.

Task:
1. Calculate maximum eligible loan amount based on LTV rules
2. Generate 3 loan options with different tenures and interest rates
3. For applicants with credit score <600 but high income (>₹200k/month),
   provide a special high-interest loan option they can afford
4. Format response with:
   - Brief explanation of the applicant's situation (2-3 lines before table)
   - Markdown table with columns:
     Loan Option | Loan Amount | Interest Rate | Tenure (years) | Monthly EMI | Eligibility
   - Follow-up explanation of why these offers were made (5-6 lines after table)

Current scenario:
- Requested amount: ₹{{LOAN_AMOUNT}}
- Property value: ₹{{PROPERTY_VALUE}}
- Monthly income: ₹{{MONTHLY_INCOME}}
- Credit score: {{CREDIT_SCORE}}
- Eligibility assessment: {{ELIGIBILITY}}
{{SPECIAL_NOTE}}

Provide your recommendations with explanations before and after the table:`

// highIncomeThreshold marks applicants who may qualify for a special
// high-interest option despite a weak credit score.
const (
	highIncomeThreshold = 200000
	lowCreditThreshold  = 600
)

func RenderTemplate(tpl string, vars map[string]string) string {
	rendered := tpl
	for k, v := range vars {
		rendered = strings.ReplaceAll(rendered, "{{"+k+"}}", v)
	}
	return rendered
}

func BuildAdvisorPrompt(loanAmount, propertyValue, monthlyIncome int64, creditScore int, eligibility string) string {
	special := ""
	if creditScore < lowCreditThreshold && monthlyIncome > highIncomeThreshold {
		special = "NOTE: Applicant has high income but low credit score - considering special approval"
	}
	return RenderTemplate(ADVISOR_USER_TEMPLATE, map[string]string{
		"LOAN_AMOUNT":    fmt.Sprintf("%d", loanAmount),
		"PROPERTY_VALUE": fmt.Sprintf("%d", propertyValue),
		"MONTHLY_INCOME": fmt.Sprintf("%d", monthlyIncome),
		"CREDIT_SCORE":   fmt.Sprintf("%d", creditScore),
		"ELIGIBILITY":    eligibility,
		"SPECIAL_NOTE":   special,
	})
}
