package domain

import "strings"

// Applicant defaults applied when the intake form left a field empty. The
// values mirror the bank's underwriting assumptions for missing data.
const (
	defaultMonthlyIncome = 10000
	defaultPropertyValue = 10000000
	defaultCreditScore   = 720
)

type EligibilityRules struct {
	MaxLTV            float64
	MinCreditScore    int
	AllowedEmployment []string
	MaxDTI            float64
	MinIncome         float64
}

func DefaultEligibilityRules() EligibilityRules {
	return EligibilityRules{
		MaxLTV:            0.7,
		MinCreditScore:    700,
		AllowedEmployment: []string{"salaried", "self-employed"},
		MaxDTI:            0.5,
		MinIncome:         15000,
	}
}

// EvaluateEligibility runs the fixed rule set against the applicant. A zero
// credit score on the applicant falls back to fallbackScore (typically the
// averaged bureau score from the credit stage), then to the default.
func EvaluateEligibility(rules EligibilityRules, applicant ApplicantData, fallbackScore int) EligibilityReport {
	income := applicant.MonthlyIncome
	if income <= 0 {
		income = defaultMonthlyIncome
	}
	propertyValue := applicant.PropertyValue
	if propertyValue <= 0 {
		propertyValue = defaultPropertyValue
	}
	creditScore := applicant.CreditScore
	if creditScore <= 0 {
		creditScore = fallbackScore
	}
	if creditScore <= 0 {
		creditScore = defaultCreditScore
	}

	ltv := applicant.LoanAmount / propertyValue
	dti := applicant.ExistingDebt / income

	checks := EligibilityChecks{
		LTV:         ltv <= rules.MaxLTV,
		CreditScore: creditScore >= rules.MinCreditScore,
		Income:      income >= rules.MinIncome,
		Employment:  employmentAllowed(rules.AllowedEmployment, applicant.EmploymentStatus),
		DTI:         dti <= rules.MaxDTI,
	}

	return EligibilityReport{
		IsEligible:    checks.LTV && checks.CreditScore && checks.Income && checks.Employment && checks.DTI,
		Checks:        checks,
		ApplicantName: applicant.FullName,
		LTV:           ltv,
		DTI:           dti,
	}
}

func employmentAllowed(allowed []string, status string) bool {
	normalized := strings.ToLower(strings.TrimSpace(status))
	for _, v := range allowed {
		if normalized == v {
			return true
		}
	}
	return false
}
