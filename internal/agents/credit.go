package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"

	"home-loan-orchestrator/internal/domain"
)

// BureauClient fetches one bureau's report for a PAN. A degraded bureau
// returns a report with a non-success status, not an error; errors are
// reserved for the client itself being unusable.
type BureauClient interface {
	FetchReport(ctx context.Context, pan string, fullName string) (domain.BureauReport, error)
}

// CreditAgent aggregates reports from several bureaus into one score plus a
// risk assessment.
type CreditAgent struct {
	bureaus []BureauClient
}

func NewCreditAgent(bureaus ...BureauClient) (*CreditAgent, error) {
	if len(bureaus) == 0 {
		return nil, fmt.Errorf("at least one bureau client is required")
	}
	return &CreditAgent{bureaus: bureaus}, nil
}

func (a *CreditAgent) Score(ctx context.Context, applicant domain.ApplicantData) (domain.CreditReport, error) {
	pan := strings.TrimSpace(applicant.PANNumber)
	if pan == "" {
		return domain.CreditReport{}, fmt.Errorf("PAN number required for credit score check")
	}

	reports := make([]domain.BureauReport, 0, len(a.bureaus))
	for _, bureau := range a.bureaus {
		report, err := bureau.FetchReport(ctx, pan, applicant.FullName)
		if err != nil {
			return domain.CreditReport{}, fmt.Errorf("fetch bureau report: %w", err)
		}
		reports = append(reports, report)
	}

	var sum, count int
	for _, report := range reports {
		if report.Status == "success" && report.CreditScore > 0 {
			sum += report.CreditScore
			count++
		}
	}
	if count == 0 {
		return domain.CreditReport{}, fmt.Errorf("no valid credit scores available")
	}
	average := int(math.Round(float64(sum) / float64(count)))

	risk := assessRisk(reports)
	return domain.CreditReport{
		CreditScore:     average,
		ScoreCategory:   categorizeScore(average),
		BureauReports:   reports,
		Risk:            risk,
		Recommendations: creditRecommendations(average, risk),
		Confidence:      0.95,
	}, nil
}

func categorizeScore(score int) string {
	switch {
	case score >= 750:
		return "excellent"
	case score >= 650:
		return "good"
	case score >= 550:
		return "fair"
	default:
		return "poor"
	}
}

func assessRisk(reports []domain.BureauReport) domain.RiskAssessment {
	var score float64
	var factors []string

	addFactor := func(f string) {
		for _, existing := range factors {
			if existing == f {
				return
			}
		}
		factors = append(factors, f)
	}

	for _, report := range reports {
		if report.Status != "success" {
			continue
		}
		history := report.PaymentHistory
		switch {
		case history.LatePayments90Days > 0:
			score += 0.4
			addFactor("90+ day late payments")
		case history.LatePayments60Days > 0:
			score += 0.3
			addFactor("60+ day late payments")
		case history.LatePayments30Days > 0:
			score += 0.2
			addFactor("30+ day late payments")
		}

		switch {
		case report.CreditUtilization > 0.7:
			score += 0.3
			addFactor("High credit utilization")
		case report.CreditUtilization > 0.5:
			score += 0.1
			addFactor("Moderate credit utilization")
		}

		if report.RecentInquiries > 3 {
			score += 0.2
			addFactor("Multiple recent credit inquiries")
		}
	}

	level := "low"
	switch {
	case score >= 0.7:
		level = "high"
	case score >= 0.4:
		level = "medium"
	}

	if factors == nil {
		factors = []string{}
	}
	return domain.RiskAssessment{
		RiskScore:             math.Round(score*100) / 100,
		RiskLevel:             level,
		RiskFactors:           factors,
		MitigationSuggestions: mitigationSuggestions(factors),
	}
}

func mitigationSuggestions(factors []string) []string {
	suggestions := []string{}
	for _, factor := range factors {
		switch {
		case strings.Contains(factor, "late payments"):
			suggestions = append(suggestions, "Improve payment history by making timely payments")
		case strings.Contains(factor, "credit utilization"):
			suggestions = append(suggestions, "Reduce credit card balances to lower utilization ratio")
		case strings.Contains(factor, "recent credit inquiries"):
			suggestions = append(suggestions, "Avoid applying for new credit in the next 6 months")
		}
	}
	return suggestions
}

func creditRecommendations(score int, risk domain.RiskAssessment) []string {
	recommendations := []string{}
	if score < 650 {
		recommendations = append(recommendations,
			"Consider improving credit score before applying for large loans",
			"Focus on reducing outstanding debt and making timely payments")
	}
	if risk.RiskLevel == "high" {
		recommendations = append(recommendations,
			"High risk profile - consider smaller loan amounts or co-applicant",
			"Address risk factors before proceeding with loan application")
	}
	if score >= 750 {
		recommendations = append(recommendations,
			"Excellent credit score - eligible for best interest rates",
			"Consider negotiating for better loan terms")
	}
	return recommendations
}

// SimulatedBureau fabricates a stable report for a PAN. The same PAN always
// yields the same numbers so reruns and tests are reproducible.
type SimulatedBureau struct {
	Name     string
	ScoreMin int
	ScoreMax int
}

func DefaultBureaus() []BureauClient {
	return []BureauClient{
		&SimulatedBureau{Name: "cibil", ScoreMin: 600, ScoreMax: 850},
		&SimulatedBureau{Name: "experian", ScoreMin: 580, ScoreMax: 830},
		&SimulatedBureau{Name: "equifax", ScoreMin: 590, ScoreMax: 840},
	}
}

func (b *SimulatedBureau) FetchReport(_ context.Context, pan string, _ string) (domain.BureauReport, error) {
	rng := rand.New(rand.NewSource(seedFor(b.Name, pan)))

	return domain.BureauReport{
		Bureau:      b.Name,
		Status:      "success",
		CreditScore: b.ScoreMin + rng.Intn(b.ScoreMax-b.ScoreMin+1),
		PaymentHistory: domain.PaymentHistory{
			TotalAccounts:          2 + rng.Intn(6),
			AccountsInGoodStanding: 1 + rng.Intn(5),
			LatePayments30Days:     rng.Intn(3),
			LatePayments60Days:     rng.Intn(2),
			LatePayments90Days:     rng.Intn(2),
		},
		CreditUtilization:  0.15 + rng.Float64()*0.6,
		CreditHistoryYears: 1 + rng.Intn(14),
		RecentInquiries:    rng.Intn(5),
	}, nil
}

func seedFor(bureau, pan string) int64 {
	h := fnv.New64a()
	h.Write([]byte(bureau))
	h.Write([]byte{0})
	h.Write([]byte(pan))
	return int64(h.Sum64())
}
