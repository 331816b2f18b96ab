package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/logger"
	"wellness-engine/internal/models"
	"wellness-engine/internal/scoring/reference"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ObserveSubscore(subscore string, status models.SubscoreStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[subscore+"/"+string(status)]++
}

func shippedTables(t *testing.T) *reference.Tables {
	t.Helper()
	tables, err := reference.LoadFile("../../configs/reference_tables.yaml")
	require.NoError(t, err)
	return tables
}

func exampleRecord() map[string]interface{} {
	return map[string]interface{}{
		"age":               "30 to 34 years",
		"familyGrossIncome": 5000.0,
		"familyExpenses":    "$2,500 - $4,999",
		"totalAssets":       "$100,000 - $500,000",
		"totalDebt":         "Less than $100,000",
	}
}

func TestEngine_Evaluate_EndToEnd(t *testing.T) {
	engine := NewEngine(shippedTables(t), DefaultPolicy(), logger.NewTestLogger(t))
	record := exampleRecord()

	result, err := engine.Evaluate(context.Background(), record)
	require.NoError(t, err)

	for name, score := range map[string]*float64{
		"income":       result.IncomeScore,
		"familyBudget": result.FamilyBudgetScore,
		"netWorth":     result.NetWorthScore,
		"retirement":   result.RetirementScore,
	} {
		require.NotNil(t, score, name)
		assert.GreaterOrEqual(t, *score, 0.0, name)
		assert.LessOrEqual(t, *score, 10.0, name)
	}

	assert.Equal(t, 7.0, *result.IncomeScore)
	assert.Equal(t, 6.0, *result.FamilyBudgetScore)
	assert.Equal(t, 8.4, *result.NetWorthScore)
	assert.Equal(t, 1.0, *result.RetirementScore)
	assert.Equal(t, models.StatusDegraded, result.Subscores[models.SubscoreRetirement].Status)
	assert.Equal(t, string(ReasonMissingStrategy), result.Subscores[models.SubscoreRetirement].Reason)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 5.6, *result.OverallScore)

	assert.Equal(t, exampleRecord(), result.ReceivedData)
	assert.Equal(t, exampleRecord(), record, "input must not be modified")
}

func TestEngine_Evaluate_FormulaFallback(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), logger.NewTestLogger(t))

	record := exampleRecord()
	record["retirementStrategy"] = "Moderate"
	record["retirementExpenseChange"] = "Same"

	result, err := engine.Evaluate(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, 6.32, *result.IncomeScore)
	assert.Equal(t, 6.0, *result.FamilyBudgetScore)
	assert.Equal(t, 7.0, *result.NetWorthScore)
	assert.Equal(t, models.StatusOK, result.Subscores[models.SubscoreRetirement].Status)
	assert.Equal(t, 0.2, result.Retirement.TargetRatio)
	assert.Equal(t, 10.0, *result.RetirementScore)
}

func TestEngine_Evaluate_TableModeWithoutTables(t *testing.T) {
	policy := DefaultPolicy()
	policy.IncomeMode = ModeTable
	policy.NetWorthMode = ModeTable
	engine := NewEngine(reference.Empty(), policy, logger.NewNoOpLogger())

	result, err := engine.Evaluate(context.Background(), exampleRecord())
	require.NoError(t, err)

	assert.Nil(t, result.IncomeScore)
	assert.Nil(t, result.NetWorthScore)
	assert.Equal(t, string(ReasonNoReferenceTable), result.Subscores[models.SubscoreIncome].Reason)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 3.5, *result.OverallScore)
}

func TestEngine_Evaluate_BudgetRatioMode(t *testing.T) {
	policy := DefaultPolicy()
	policy.BudgetMode = BudgetRatio
	engine := NewEngine(nil, policy, logger.NewNoOpLogger())

	result, err := engine.Evaluate(context.Background(), exampleRecord())
	require.NoError(t, err)
	// 60000 / (3749.5 * 12) = 1.33
	assert.Equal(t, 2.0, *result.FamilyBudgetScore)
}

func TestEngine_Evaluate_LegacyRecord(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), logger.NewNoOpLogger())

	record := map[string]interface{}{"age": "30 - 39", "monthlyIncome": "5000"}
	result, err := engine.Evaluate(context.Background(), record)
	require.NoError(t, err)

	// 60000 / 55000 against the legacy median
	assert.Equal(t, 6.32, *result.IncomeScore)
	assert.Nil(t, result.NetWorthScore)
	assert.Equal(t, string(ReasonMissingField), result.Subscores[models.SubscoreNetWorth].Reason)
	assert.Equal(t, 5.0, *result.FamilyBudgetScore)
	assert.Equal(t, 1.0, *result.RetirementScore)
}

func TestEngine_Evaluate_UnknownAge(t *testing.T) {
	engine := NewEngine(shippedTables(t), DefaultPolicy(), logger.NewNoOpLogger())

	record := exampleRecord()
	record["age"] = "100 to 120 years"

	result, err := engine.Evaluate(context.Background(), record)
	require.NoError(t, err)

	assert.Nil(t, result.IncomeScore)
	assert.Nil(t, result.NetWorthScore)
	assert.Equal(t, 1.0, *result.RetirementScore)
	assert.Equal(t, string(ReasonUnknownAge), result.Subscores[models.SubscoreIncome].Reason)
	assert.Equal(t, string(ReasonUnknownAge), result.Subscores[models.SubscoreNetWorth].Reason)
	assert.Equal(t, string(ReasonUnknownAge), result.Subscores[models.SubscoreRetirement].Reason)
}

func TestEngine_Evaluate_RequestErrors(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), logger.NewNoOpLogger())

	tests := []struct {
		name   string
		record map[string]interface{}
		code   errors.ErrorCode
		field  string
	}{
		{"nil record", nil, errors.ErrCodeInvalidRequest, ""},
		{"missing age", map[string]interface{}{"familyGrossIncome": 5000}, errors.ErrCodeMissingField, "age"},
		{"empty age", map[string]interface{}{"age": ""}, errors.ErrCodeMissingField, "age"},
		{"blank age", map[string]interface{}{"age": "   "}, errors.ErrCodeMissingField, "age"},
		{"age not a string", map[string]interface{}{"age": 32}, errors.ErrCodeInvalidRequest, "age"},
		{"unparseable income", map[string]interface{}{"age": "30 to 34 years", "familyGrossIncome": "plenty"}, errors.ErrCodeUnparseableValue, "familyGrossIncome"},
		{"unparseable legacy income", map[string]interface{}{"age": "30 - 39", "monthlyIncome": ""}, errors.ErrCodeUnparseableValue, "monthlyIncome"},
		{"income wrong type", map[string]interface{}{"age": "30 to 34 years", "familyGrossIncome": true}, errors.ErrCodeInvalidRequest, "familyGrossIncome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Evaluate(context.Background(), tt.record)
			assert.Nil(t, result)
			require.Error(t, err)

			stdErr := errors.AsStandardError(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Field)
		})
	}
}

func TestEngine_Evaluate_CancelledContext(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), logger.NewNoOpLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Evaluate(ctx, exampleRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Evaluate_JSONNumbers(t *testing.T) {
	engine := NewEngine(shippedTables(t), DefaultPolicy(), logger.NewNoOpLogger())

	var record map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(`{"age":"30 to 34 years","familyGrossIncome":5000,"totalAssets":300000,"totalDebt":50000}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&record))

	result, err := engine.Evaluate(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, 7.0, *result.IncomeScore)
	assert.Equal(t, 8.4, *result.NetWorthScore)
}

func TestEngine_Evaluate_HugeNumbers(t *testing.T) {
	engine := NewEngine(shippedTables(t), DefaultPolicy(), logger.NewNoOpLogger())
	huge := "Greater than $" + strings.Repeat("9", 308)

	tests := []struct {
		name string
		body string
	}{
		{"huge assets number", `{"age":"30 to 34 years","familyGrossIncome":5000,"familyExpenses":"$2,500 - $4,999",` +
			`"totalAssets":1e308,"totalDebt":"Less than $100,000","retirementStrategy":"Moderate"}`},
		{"huge asset label", `{"age":"30 to 34 years","familyGrossIncome":5000,"familyExpenses":"$2,500 - $4,999",` +
			`"totalAssets":"` + huge + `","retirementStrategy":"Moderate"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record map[string]interface{}
			dec := json.NewDecoder(strings.NewReader(tt.body))
			dec.UseNumber()
			require.NoError(t, dec.Decode(&record))

			var result *models.AssessmentResult
			var err error
			require.NotPanics(t, func() { result, err = engine.Evaluate(context.Background(), record) })
			require.NoError(t, err)

			assert.Equal(t, models.StatusDegraded, result.Subscores[models.SubscoreRetirement].Status)
			assert.Equal(t, string(ReasonUnparseableValue), result.Subscores[models.SubscoreRetirement].Reason)
			assert.Equal(t, 1.0, *result.RetirementScore)
			require.NotNil(t, result.OverallScore)

			_, err = json.Marshal(result)
			assert.NoError(t, err, "result must stay encodable")
		})
	}
}

func TestEngine_Evaluate_IncomeOverflow(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), logger.NewNoOpLogger())

	result, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"age":               "30 to 34 years",
		"familyGrossIncome": 1e308,
	})
	require.NoError(t, err)
	assert.Nil(t, result.IncomeScore)
	assert.Equal(t, string(ReasonUnparseableValue), result.Subscores[models.SubscoreIncome].Reason)
}

func TestEngine_Evaluate_Concurrent(t *testing.T) {
	rec := &countingRecorder{}
	engine := NewEngine(shippedTables(t), DefaultPolicy(), logger.NewNoOpLogger(), WithRecorder(rec))

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				record := exampleRecord()
				record["familyGrossIncome"] = float64(1000 + w*500 + i)
				result, err := engine.Evaluate(context.Background(), record)
				if err != nil {
					errs <- err
					return
				}
				if result.IncomeScore == nil {
					errs <- fmt.Errorf("worker %d: income score missing", w)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, workers*perWorker, rec.counts["income/ok"])
	assert.Equal(t, workers*perWorker, rec.counts["retirement/degraded"])
}

func TestOverall(t *testing.T) {
	assert.Nil(t, Overall(unavailable(ReasonMissingField, ""), unavailable(ReasonUnknownAge, "")))
	assert.Equal(t, 4.0, *Overall(ok(7), unavailable(ReasonUnknownAge, ""), degraded(1, ReasonMissingStrategy, "")))
	assert.Equal(t, 6.7, *Overall(ok(6.5), ok(7), ok(6.5)))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.ScoringConfig{
		LegacyScaling:   true,
		IncomeMode:      "formula",
		NetWorthMode:    "table",
		BudgetMode:      "ratio",
		RetirementCurve: "step",
		RetirementAge:   60,
		HorizonAge:      90,
	})
	assert.True(t, p.LegacyScaling)
	assert.Equal(t, ModeFormula, p.IncomeMode)
	assert.Equal(t, ModeTable, p.NetWorthMode)
	assert.Equal(t, BudgetRatio, p.BudgetMode)
	assert.Equal(t, CurveStep, p.RetirementCurve)
	assert.Equal(t, 60.0, p.RetirementAge)
	assert.Equal(t, 90.0, p.HorizonAge)

	assert.Equal(t, DefaultPolicy(), PolicyFromConfig(config.ScoringConfig{}))
}
