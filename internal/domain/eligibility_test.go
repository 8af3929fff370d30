package domain

import "testing"

func baseApplicant() ApplicantData {
	return ApplicantData{
		FullName:         "MARADANA YASWANTH",
		PANNumber:        "BOZPY0671P",
		EmploymentStatus: "Salaried",
		MonthlyIncome:    20000,
		ExistingDebt:     5000,
		CreditScore:      720,
		LoanAmount:       7000000,
		PropertyValue:    10000000,
	}
}

func TestEvaluateEligibilityAllChecksPass(t *testing.T) {
	report := EvaluateEligibility(DefaultEligibilityRules(), baseApplicant(), 0)

	if !report.IsEligible {
		t.Fatalf("expected eligible applicant, got checks %+v", report.Checks)
	}
	if report.LTV != 0.7 {
		t.Fatalf("ltv mismatch: got %v want 0.7", report.LTV)
	}
	if report.DTI != 0.25 {
		t.Fatalf("dti mismatch: got %v want 0.25", report.DTI)
	}
}

func TestEvaluateEligibilityLTVExceeded(t *testing.T) {
	applicant := baseApplicant()
	applicant.LoanAmount = 8000000

	report := EvaluateEligibility(DefaultEligibilityRules(), applicant, 0)

	if report.IsEligible {
		t.Fatalf("expected ineligible applicant at LTV 0.8")
	}
	if report.Checks.LTV {
		t.Fatalf("expected ltv_check to fail")
	}
	if !report.Checks.CreditScore || !report.Checks.Income || !report.Checks.Employment || !report.Checks.DTI {
		t.Fatalf("expected only ltv_check to fail, got %+v", report.Checks)
	}
}

func TestEvaluateEligibilityRuleBreaches(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ApplicantData)
		failed func(EligibilityChecks) bool
	}{
		{
			name:   "credit score below floor",
			mutate: func(a *ApplicantData) { a.CreditScore = 650 },
			failed: func(c EligibilityChecks) bool { return !c.CreditScore },
		},
		{
			name:   "income below floor",
			mutate: func(a *ApplicantData) { a.MonthlyIncome = 14000 },
			failed: func(c EligibilityChecks) bool { return !c.Income },
		},
		{
			name:   "employment not allowed",
			mutate: func(a *ApplicantData) { a.EmploymentStatus = "unemployed" },
			failed: func(c EligibilityChecks) bool { return !c.Employment },
		},
		{
			name:   "dti above cap",
			mutate: func(a *ApplicantData) { a.ExistingDebt = 11000 },
			failed: func(c EligibilityChecks) bool { return !c.DTI },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			applicant := baseApplicant()
			tc.mutate(&applicant)
			report := EvaluateEligibility(DefaultEligibilityRules(), applicant, 0)
			if report.IsEligible {
				t.Fatalf("expected ineligible applicant")
			}
			if !tc.failed(report.Checks) {
				t.Fatalf("expected check to fail, got %+v", report.Checks)
			}
		})
	}
}

func TestEvaluateEligibilityCreditScoreFallback(t *testing.T) {
	applicant := baseApplicant()
	applicant.CreditScore = 0

	report := EvaluateEligibility(DefaultEligibilityRules(), applicant, 650)
	if report.Checks.CreditScore {
		t.Fatalf("expected bureau fallback score 650 to fail the floor")
	}

	report = EvaluateEligibility(DefaultEligibilityRules(), applicant, 0)
	if !report.Checks.CreditScore {
		t.Fatalf("expected default score to pass the floor")
	}
}
