package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"home-loan-orchestrator/internal/domain"
)

type failingModel struct{}

func (m *failingModel) Predict(domain.PropertyDetails) (int64, float64, error) {
	return 0, 0, fmt.Errorf("weights are corrupt")
}

type cannedModel struct {
	value    int64
	accuracy float64
}

func (m *cannedModel) Predict(domain.PropertyDetails) (int64, float64, error) {
	return m.value, m.accuracy, nil
}

func TestRuleBasedValuationMumbaiApartment(t *testing.T) {
	agent := NewValuationAgent(nil)

	report, err := agent.Value(context.Background(), domain.PropertyDetails{
		City:         "Mumbai",
		PropertyType: "apartment",
		SizeSqft:     1000,
		AgeYears:     10,
		FloorNumber:  5,
	})
	require.NoError(t, err)

	// 20000 * 1000 * 1.0 * 0.9 * 1.1
	require.Equal(t, int64(19800000), report.EstimatedValue)
	require.Equal(t, int64(19800), report.PricePerSqft)
	require.Equal(t, domain.ValuationRuleBased, report.Method)
	require.InDelta(t, 0.75, report.Confidence, 0.001)
	require.NotEmpty(t, report.FallbackReason)
	require.Nil(t, report.ModelAccuracy)
}

func TestRuleBasedValuationAdjustments(t *testing.T) {
	agent := NewValuationAgent(nil)

	tests := []struct {
		name     string
		property domain.PropertyDetails
		want     int64
	}{
		{
			name:     "unknown city uses default base price",
			property: domain.PropertyDetails{City: "Indore", PropertyType: "apartment", SizeSqft: 100},
			// 10000 * 100 * 1.0 * 1.0 * 0.9 (ground floor discount)
			want: 900000,
		},
		{
			name:     "villa multiplier",
			property: domain.PropertyDetails{City: "Pune", PropertyType: "Villa", SizeSqft: 100},
			// 8000 * 100 * 1.5 * 1.0 * 0.9
			want: 1080000,
		},
		{
			name:     "age adjustment floors at 0.7",
			property: domain.PropertyDetails{City: "Chennai", PropertyType: "plot", SizeSqft: 100, AgeYears: 50},
			// 9000 * 100 * 0.7 * 0.7 * 0.9
			want: 396900,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report, err := agent.Value(context.Background(), tc.property)
			require.NoError(t, err)
			require.Equal(t, tc.want, report.EstimatedValue)
			require.Equal(t, domain.ValuationRuleBased, report.Method)
		})
	}
}

func TestValueFallsBackWhenModelFails(t *testing.T) {
	agent := NewValuationAgent(&failingModel{})

	report, err := agent.Value(context.Background(), domain.PropertyDetails{
		City:         "Delhi",
		PropertyType: "apartment",
		SizeSqft:     500,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ValuationRuleBased, report.Method)
	require.Contains(t, report.FallbackReason, "weights are corrupt")
}

func TestValueUsesModelWhenAvailable(t *testing.T) {
	agent := NewValuationAgent(&cannedModel{value: 15000000, accuracy: 0.88})

	report, err := agent.Value(context.Background(), domain.PropertyDetails{
		City:         "Hyderabad",
		Area:         "Gachibowli",
		PropertyType: "apartment",
		SizeSqft:     1500,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ValuationModel, report.Method)
	require.Equal(t, int64(15000000), report.EstimatedValue)
	require.Equal(t, int64(10000), report.PricePerSqft)
	require.NotNil(t, report.ModelAccuracy)
	require.InDelta(t, 0.88, *report.ModelAccuracy, 0.001)
	// 0.8 base + 0.1 size + 0.05 city and area, capped at 0.95
	require.InDelta(t, 0.95, report.Confidence, 0.001)
	require.Empty(t, report.FallbackReason)
}

func TestValueRejectsIncompleteProperty(t *testing.T) {
	agent := NewValuationAgent(nil)

	_, err := agent.Value(context.Background(), domain.PropertyDetails{City: "Mumbai"})
	require.ErrorContains(t, err, "incomplete property details")

	_, err = agent.Value(context.Background(), domain.PropertyDetails{SizeSqft: 900})
	require.ErrorContains(t, err, "incomplete property details")
}

func TestLinearModelPredict(t *testing.T) {
	model := &LinearModel{Weights: ModelWeights{
		PricePerSqft:    10000,
		CityFactors:     map[string]float64{"pune": 0.8},
		TypeFactors:     map[string]float64{"apartment": 1.0},
		AgePenaltyPct:   0.01,
		FloorPremiumPct: 0.02,
		Accuracy:        0.85,
	}}

	value, accuracy, err := model.Predict(domain.PropertyDetails{
		City:         "Pune",
		PropertyType: "apartment",
		SizeSqft:     1000,
		AgeYears:     10,
		FloorNumber:  2,
	})
	require.NoError(t, err)
	// 10000 * 1000 * 0.8 * 0.9 * 1.04
	require.Equal(t, int64(7488000), value)
	require.InDelta(t, 0.85, accuracy, 0.001)

	_, _, err = model.Predict(domain.PropertyDetails{City: "Goa", PropertyType: "apartment", SizeSqft: 100})
	require.ErrorContains(t, err, "no factor for city")
}
