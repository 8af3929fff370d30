package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"home-loan-orchestrator/internal/domain"
)

// ValuationModel predicts a property value from its details. Implementations
// are trained offline; the agent only consumes them.
type ValuationModel interface {
	Predict(property domain.PropertyDetails) (estimatedValue int64, accuracy float64, err error)
}

// ValuationAgent estimates property values. A trained model is preferred;
// rule-based pricing is the always-available fallback, never an error path.
type ValuationAgent struct {
	model ValuationModel
}

func NewValuationAgent(model ValuationModel) *ValuationAgent {
	return &ValuationAgent{model: model}
}

var cityBasePrices = map[string]float64{
	"mumbai":      20000,
	"delhi":       15000,
	"bangalore":   12000,
	"hyderabad":   10000,
	"chennai":     9000,
	"pune":        8000,
	"rajahmundry": 5000,
}

const defaultCityBasePrice = 10000

var propertyTypeMultipliers = map[string]float64{
	"apartment": 1.0,
	"villa":     1.5,
	"plot":      0.7,
	"penthouse": 2.0,
	"studio":    0.8,
}

func (a *ValuationAgent) Value(_ context.Context, property domain.PropertyDetails) (domain.ValuationReport, error) {
	if property.SizeSqft <= 0 || strings.TrimSpace(property.City) == "" {
		return domain.ValuationReport{}, fmt.Errorf("incomplete property details: size and city are required")
	}

	if a.model == nil {
		return ruleBasedValuation(property, "no trained model available"), nil
	}

	estimated, accuracy, err := a.model.Predict(property)
	if err != nil {
		return ruleBasedValuation(property, fmt.Sprintf("model prediction failed: %v", err)), nil
	}

	return domain.ValuationReport{
		EstimatedValue: estimated,
		PricePerSqft:   int64(float64(estimated) / property.SizeSqft),
		Confidence:     modelConfidence(property),
		Method:         domain.ValuationModel,
		ModelAccuracy:  &accuracy,
	}, nil
}

func ruleBasedValuation(property domain.PropertyDetails, reason string) domain.ValuationReport {
	basePrice, ok := cityBasePrices[strings.ToLower(strings.TrimSpace(property.City))]
	if !ok {
		basePrice = defaultCityBasePrice
	}
	typeMultiplier, ok := propertyTypeMultipliers[strings.ToLower(strings.TrimSpace(property.PropertyType))]
	if !ok {
		typeMultiplier = 1.0
	}

	ageAdjustment := math.Max(0.7, 1.0-float64(property.AgeYears)*0.01)
	floorAdjustment := 0.9
	if property.FloorNumber > 0 {
		floorAdjustment = 1.0 + float64(property.FloorNumber)*0.02
	}

	estimated := basePrice * property.SizeSqft * typeMultiplier * ageAdjustment * floorAdjustment
	return domain.ValuationReport{
		EstimatedValue: int64(estimated),
		PricePerSqft:   int64(estimated / property.SizeSqft),
		Confidence:     0.75,
		Method:         domain.ValuationRuleBased,
		FallbackReason: reason,
	}
}

func modelConfidence(property domain.PropertyDetails) float64 {
	confidence := 0.8
	if property.SizeSqft > 0 {
		confidence += 0.1
	}
	if property.City != "" && property.Area != "" {
		confidence += 0.05
	}
	return math.Min(confidence, 0.95)
}

// LinearModel is a weights-file based predictor. Weights are trained offline
// and loaded from object storage at startup.
type LinearModel struct {
	Weights ModelWeights
}

type ModelWeights struct {
	Intercept       float64            `json:"intercept"`
	PricePerSqft    float64            `json:"price_per_sqft"`
	CityFactors     map[string]float64 `json:"city_factors"`
	TypeFactors     map[string]float64 `json:"type_factors"`
	AgePenaltyPct   float64            `json:"age_penalty_pct"`
	FloorPremiumPct float64            `json:"floor_premium_pct"`
	Accuracy        float64            `json:"training_accuracy"`
}

func (m *LinearModel) Predict(property domain.PropertyDetails) (int64, float64, error) {
	if m.Weights.PricePerSqft <= 0 {
		return 0, 0, fmt.Errorf("model weights missing price_per_sqft")
	}

	cityFactor, ok := m.Weights.CityFactors[strings.ToLower(strings.TrimSpace(property.City))]
	if !ok {
		return 0, 0, fmt.Errorf("model has no factor for city %q", property.City)
	}
	typeFactor, ok := m.Weights.TypeFactors[strings.ToLower(strings.TrimSpace(property.PropertyType))]
	if !ok {
		typeFactor = 1.0
	}

	ageAdjustment := math.Max(0.5, 1.0-float64(property.AgeYears)*m.Weights.AgePenaltyPct)
	floorAdjustment := 1.0
	if property.FloorNumber > 0 {
		floorAdjustment += float64(property.FloorNumber) * m.Weights.FloorPremiumPct
	}

	estimated := m.Weights.Intercept +
		m.Weights.PricePerSqft*property.SizeSqft*cityFactor*typeFactor*ageAdjustment*floorAdjustment
	if estimated <= 0 {
		return 0, 0, fmt.Errorf("model produced non-positive value %f", estimated)
	}
	return int64(estimated), m.Weights.Accuracy, nil
}
