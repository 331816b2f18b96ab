package scoring

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"wellness-engine/internal/models"
)

func baseRetirementInput() RetirementInput {
	return RetirementInput{
		AgeLabel:        "60 to 64 years",
		MonthlyExpenses: 1000.0,
		LiquidAssets:    100000.0,
		Strategy:        "Conservative",
		ExpenseChange:   "Same",
	}
}

func TestCalculateRetirement_Projection(t *testing.T) {
	step := DefaultPolicy()
	step.RetirementCurve = CurveStep

	tests := []struct {
		name     string
		mutate   func(in *RetirementInput)
		policy   Policy
		expected models.RetirementProjection
	}{
		{
			name:   "logistic curve",
			policy: DefaultPolicy(),
			expected: models.RetirementProjection{
				CurrentRatio: 0.28, TargetRatio: 0.85, FutureRatio: 0.32, ReadinessRatio: 0.38, Score: 1.9,
			},
		},
		{
			name:   "step curve",
			policy: step,
			expected: models.RetirementProjection{
				CurrentRatio: 0.28, TargetRatio: 0.85, FutureRatio: 0.32, ReadinessRatio: 0.38, Score: 4,
			},
		},
		{
			name:   "lower expenses in retirement",
			mutate: func(in *RetirementInput) { in.ExpenseChange = "Lower" },
			policy: step,
			expected: models.RetirementProjection{
				CurrentRatio: 0.35, TargetRatio: 0.85, FutureRatio: 0.4, ReadinessRatio: 0.47, Score: 5,
			},
		},
		{
			name:   "unknown expense change defaults to same",
			mutate: func(in *RetirementInput) { in.ExpenseChange = "" },
			policy: step,
			expected: models.RetirementProjection{
				CurrentRatio: 0.28, TargetRatio: 0.85, FutureRatio: 0.32, ReadinessRatio: 0.38, Score: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseRetirementInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			proj, o := CalculateRetirement(in, tt.policy)
			assert.Equal(t, models.StatusOK, o.Status)
			assert.Equal(t, tt.expected, proj)
			assert.Equal(t, proj.Score, o.Value)
		})
	}
}

func TestCalculateRetirement_FailSafe(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *RetirementInput)
		reason Reason
	}{
		{"unknown age", func(in *RetirementInput) { in.AgeLabel = "ancient" }, ReasonUnknownAge},
		{"missing strategy", func(in *RetirementInput) { in.Strategy = "" }, ReasonMissingStrategy},
		{"unknown strategy", func(in *RetirementInput) { in.Strategy = "YOLO" }, ReasonMissingStrategy},
		{"missing expenses", func(in *RetirementInput) { in.MonthlyExpenses = nil }, ReasonMissingField},
		{"unparseable expenses", func(in *RetirementInput) { in.MonthlyExpenses = "varies" }, ReasonUnparseableValue},
		{"unparseable assets", func(in *RetirementInput) { in.LiquidAssets = "some" }, ReasonUnparseableValue},
		{"zero expenses", func(in *RetirementInput) { in.MonthlyExpenses = "$0" }, ReasonZeroExpenseDraw},
		{"retiring at the horizon", func(in *RetirementInput) { in.RetirementAge = 95.0 }, ReasonZeroExpenseDraw},
		{"retiring past the horizon", func(in *RetirementInput) { in.RetirementAge = "100" }, ReasonZeroExpenseDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseRetirementInput()
			tt.mutate(&in)

			var proj models.RetirementProjection
			var o Outcome
			assert.NotPanics(t, func() { proj, o = CalculateRetirement(in, DefaultPolicy()) })

			assert.Equal(t, models.RetirementProjection{Score: 1}, proj)
			assert.Equal(t, models.StatusDegraded, o.Status)
			assert.Equal(t, 1.0, o.Value)
			assert.Equal(t, tt.reason, o.Reason)
		})
	}
}

func TestCalculateRetirement_NonFinite(t *testing.T) {
	huge := "Greater than $" + strings.Repeat("9", 308)

	tests := []struct {
		name   string
		mutate func(in *RetirementInput)
	}{
		{"assets overflow the projection", func(in *RetirementInput) { in.LiquidAssets = 1e308 }},
		{"huge open-ended asset label", func(in *RetirementInput) { in.LiquidAssets = huge }},
		{"expenses overflow the draw", func(in *RetirementInput) { in.MonthlyExpenses = 1e308 }},
		{"both overflow", func(in *RetirementInput) { in.LiquidAssets = 1e308; in.MonthlyExpenses = 1e308 }},
		{"infinite assets", func(in *RetirementInput) { in.LiquidAssets = math.Inf(1) }},
		{"NaN expenses", func(in *RetirementInput) { in.MonthlyExpenses = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseRetirementInput()
			in.AgeLabel = "30 to 34 years"
			in.Strategy = "Moderate"
			tt.mutate(&in)

			var proj models.RetirementProjection
			var o Outcome
			assert.NotPanics(t, func() { proj, o = CalculateRetirement(in, DefaultPolicy()) })

			assert.Equal(t, models.RetirementProjection{Score: 1}, proj)
			assert.Equal(t, models.StatusDegraded, o.Status)
			assert.Equal(t, ReasonUnparseableValue, o.Reason)
		})
	}
}

func TestRound_NonFinite(t *testing.T) {
	assert.True(t, math.IsInf(round(math.Inf(1), 2), 1))
	assert.True(t, math.IsInf(round(math.Inf(-1), 1), -1))
	assert.True(t, math.IsNaN(round(math.NaN(), 2)))
	assert.Equal(t, 1.24, round(1.235, 2))
}

func TestCalculateRetirement_NoAssets(t *testing.T) {
	in := baseRetirementInput()
	in.LiquidAssets = nil

	proj, o := CalculateRetirement(in, DefaultPolicy())
	assert.Equal(t, models.StatusOK, o.Status)
	assert.Equal(t, 0.0, proj.FutureRatio)
	assert.Equal(t, LogisticScore(0), proj.Score)
}

func TestCalculateRetirement_StrategyLabels(t *testing.T) {
	in := baseRetirementInput()
	in.AgeLabel = "25 to 29 years"
	in.LiquidAssets = "$50,000 - $100,000"

	var prev float64
	for _, s := range []string{"conservative", "Moderate", "AGGRESSIVE growth"} {
		in.Strategy = s
		proj, o := CalculateRetirement(in, DefaultPolicy())
		assert.Equal(t, models.StatusOK, o.Status, s)
		assert.Greater(t, proj.FutureRatio, prev, s)
		prev = proj.FutureRatio
	}
}

func TestTargetRatio(t *testing.T) {
	tests := []struct {
		age      float64
		expected float64
	}{
		{18, 0.1},
		{24.9, 0.1},
		{25, 0.1},
		{32, 0.2},
		{47, 0.5},
		{62, 0.85},
		{65, 1.0},
		{80, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TargetRatio(tt.age), "age %v", tt.age)
	}
}

func TestStepScore(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected float64
	}{
		{0, 1},
		{0.05, 1},
		{0.1, 2},
		{0.15, 2},
		{0.5, 6},
		{0.89, 9},
		{0.9, 10},
		{0.99, 10},
		{1.0, 10},
		{7, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StepScore(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestLogisticScore(t *testing.T) {
	assert.Equal(t, 5.5, LogisticScore(1.0))
	assert.Equal(t, 1.3, LogisticScore(0))
	assert.Equal(t, 10.0, LogisticScore(3))

	prev := 0.0
	for r := 0.0; r <= 3; r += 0.05 {
		s := LogisticScore(r)
		assert.GreaterOrEqual(t, s, prev)
		assert.GreaterOrEqual(t, s, 1.0)
		assert.LessOrEqual(t, s, 10.0)
		prev = s
	}
}
