package scoring

import (
	"fmt"
	"strings"

	"wellness-engine/internal/scoring/reference"
)

var dependentsPenalty = map[string]float64{
	"0%":      1.00,
	"1-10%":   0.95,
	"11-25%":  0.85,
	"26-50%":  0.70,
	"51-75%":  0.50,
	"76-100%": 0.30,
}

// DependentsPenaltyFactor maps a dependents bucket to its income multiplier.
// Unrecognized labels carry no penalty.
func DependentsPenaltyFactor(label string) float64 {
	key := strings.Join(strings.Fields(label), "")
	key = strings.ReplaceAll(key, "–", "-")
	if f, ok := dependentsPenalty[key]; ok {
		return f
	}
	return 1.0
}

// IncomeScore looks up the annual income in the age group's percentile bands
// and scales the percentile to the policy's scale.
func IncomeScore(tables *reference.Tables, ageLabel string, annualIncome float64, p Policy) Outcome {
	if !tables.HasIncome() {
		return unavailable(ReasonNoReferenceTable, "income percentile table is not loaded")
	}
	groupID, found := tables.GroupID(ageLabel)
	if !found {
		return unavailable(ReasonUnknownAge, fmt.Sprintf("age %q has no income table group", ageLabel))
	}
	band, found := tables.IncomeBandFor(groupID, annualIncome)
	if !found {
		return unavailable(ReasonBandNotFound, fmt.Sprintf("no income band for group %d contains %.2f", groupID, annualIncome))
	}
	return ok(round(band.Percentile*p.percentileScale(), 2))
}

// IncomeScoreFormula scores annual income against the age group's median:
// ratio <= 0.5 scores 1, ratio >= 1.5 scores 10, linear in between. The
// dependents penalty is applied last and the result clamped to [1,10].
func IncomeScoreFormula(ageLabel string, annualIncome float64, dependents string) Outcome {
	info, found := reference.ResolveAge(ageLabel)
	if !found || info.MedianIncome <= 0 {
		return unavailable(ReasonUnknownAge, fmt.Sprintf("age %q has no median income", ageLabel))
	}

	ratio := annualIncome / info.MedianIncome
	var score float64
	switch {
	case ratio <= 0.5:
		score = 1
	case ratio >= 1.5:
		score = 10
	default:
		score = 1 + (ratio-0.5)*9
	}

	score *= DependentsPenaltyFactor(dependents)
	return ok(round(clamp(score, 1, 10), 2))
}
