package scoring

import (
	"fmt"
	"math"
	"strings"

	"wellness-engine/internal/models"
	"wellness-engine/internal/scoring/rangeparse"
	"wellness-engine/internal/scoring/reference"
)

// FailSafeRetirementScore is reported whenever readiness cannot be assessed.
const FailSafeRetirementScore = 1

const (
	logisticMidpoint  = 1.0
	logisticSteepness = 3.5
)

var growthRates = map[string]float64{
	"conservative": 0.05,
	"moderate":     0.08,
	"aggressive":   0.12,
}

var expenseMultipliers = map[string]float64{
	"lower":  0.8,
	"same":   1.0,
	"higher": 1.3,
}

// targetRatios holds the asset-ratio target by age milestone, ascending.
var targetRatios = []struct {
	age    float64
	target float64
}{
	{25, 0.1},
	{30, 0.2},
	{35, 0.3},
	{40, 0.4},
	{45, 0.5},
	{50, 0.6},
	{55, 0.7},
	{60, 0.85},
	{65, 1.0},
}

const minTargetRatio = 0.1

var stepThresholds = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

// RetirementInput is the slice of a request the retirement model reads.
type RetirementInput struct {
	AgeLabel string
	// MonthlyExpenses is a bucket label or number.
	MonthlyExpenses interface{}
	// LiquidAssets is a bucket label or number; nil means none.
	LiquidAssets  interface{}
	Strategy      string
	ExpenseChange string
	// RetirementAge overrides the policy default when positive.
	RetirementAge interface{}
}

// CalculateRetirement projects liquid assets to retirement and compares them
// with the expense draw over the retirement horizon. It never fails: any
// input it cannot use yields the fail-safe projection {0,0,0,1}.
func CalculateRetirement(in RetirementInput, p Policy) (models.RetirementProjection, Outcome) {
	info, found := reference.ResolveAge(in.AgeLabel)
	if !found {
		return failSafe(ReasonUnknownAge, fmt.Sprintf("age %q is not recognized", in.AgeLabel))
	}

	rate, found := lookupLabel(growthRates, in.Strategy)
	if !found {
		return failSafe(ReasonMissingStrategy, fmt.Sprintf("retirement strategy %q is not recognized", in.Strategy))
	}
	multiplier, found := lookupLabel(expenseMultipliers, in.ExpenseChange)
	if !found {
		multiplier = 1.0
	}

	if in.MonthlyExpenses == nil {
		return failSafe(ReasonMissingField, "familyExpenses is missing")
	}
	monthly, parsed := rangeparse.Parse(in.MonthlyExpenses, rangeparse.Extend)
	if !parsed {
		return failSafe(ReasonUnparseableValue, fmt.Sprintf("cannot parse expense bucket %v", in.MonthlyExpenses))
	}

	var assets float64
	if in.LiquidAssets != nil {
		if assets, parsed = rangeparse.Parse(in.LiquidAssets, rangeparse.Extend); !parsed {
			return failSafe(ReasonUnparseableValue, fmt.Sprintf("cannot parse asset bucket %v", in.LiquidAssets))
		}
	}

	retirementAge := p.RetirementAge
	if ra, parsed := rangeparse.Parse(in.RetirementAge, rangeparse.AsIs); parsed && ra > 0 {
		retirementAge = ra
	}

	yearsToRetirement := math.Max(retirementAge-info.RepresentativeAge, 0)
	yearsInRetirement := math.Max(p.HorizonAge-retirementAge, 0)

	futureAssets := assets * math.Pow(1+rate, yearsToRetirement)
	futureExpenses := monthly * 12 * multiplier * yearsInRetirement
	if !finite(futureAssets, futureExpenses) {
		return failSafe(ReasonUnparseableValue, "projection overflows for the given assets or expenses")
	}
	if futureExpenses <= 0 {
		return failSafe(ReasonZeroExpenseDraw, "projected retirement expense draw is zero")
	}

	currentRatio := assets / futureExpenses
	futureRatio := futureAssets / futureExpenses
	target := TargetRatio(info.RepresentativeAge)
	readiness := futureRatio / target
	if !finite(currentRatio, futureRatio, readiness) {
		return failSafe(ReasonUnparseableValue, "retirement ratios are not finite")
	}

	var score float64
	if p.RetirementCurve == CurveStep {
		score = StepScore(readiness)
	} else {
		score = LogisticScore(readiness)
	}

	proj := models.RetirementProjection{
		CurrentRatio:   round(currentRatio, 2),
		TargetRatio:    target,
		FutureRatio:    round(futureRatio, 2),
		ReadinessRatio: round(readiness, 2),
		Score:          score,
	}
	return proj, ok(score)
}

func failSafe(reason Reason, detail string) (models.RetirementProjection, Outcome) {
	return models.RetirementProjection{Score: FailSafeRetirementScore},
		degraded(FailSafeRetirementScore, reason, detail)
}

// lookupLabel matches a label case-insensitively on its first word, so
// "Moderate" and "moderate growth" resolve alike.
func lookupLabel(table map[string]float64, label string) (float64, bool) {
	words := strings.Fields(strings.ToLower(label))
	if len(words) == 0 {
		return 0, false
	}
	v, found := table[words[0]]
	return v, found
}

// TargetRatio returns the target at the highest milestone not above age.
func TargetRatio(age float64) float64 {
	target := minTargetRatio
	for _, m := range targetRatios {
		if age < m.age {
			break
		}
		target = m.target
	}
	return target
}

// StepScore gives one point per 0.1 of readiness: the score is set by the
// first threshold the ratio is below, and ratios at or above 1.0 score 10.
func StepScore(ratio float64) float64 {
	for i, th := range stepThresholds {
		if ratio < th {
			return math.Min(float64(i+1), 10)
		}
	}
	return 10
}

// LogisticScore maps readiness onto 1..10 along a logistic curve centred on
// a ratio of 1.0, rounded to one decimal.
func LogisticScore(ratio float64) float64 {
	s := 1 + 9/(1+math.Exp(-logisticSteepness*(ratio-logisticMidpoint)))
	return round(s, 1)
}
