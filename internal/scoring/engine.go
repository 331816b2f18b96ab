package scoring

import (
	"context"
	"strings"

	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/logger"
	"wellness-engine/internal/common/validation"
	"wellness-engine/internal/models"
	"wellness-engine/internal/scoring/rangeparse"
	"wellness-engine/internal/scoring/reference"
)

const requestSchema = `{
	"type": "object",
	"required": ["age"],
	"properties": {
		"age":                     {"type": "string", "minLength": 1},
		"familyGrossIncome":       {"type": ["number", "string", "null"]},
		"monthlyIncome":           {"type": ["number", "string", "null"]},
		"familyExpenses":          {"type": ["number", "string", "null"]},
		"totalAssets":             {"type": ["number", "string", "null"]},
		"totalDebt":               {"type": ["number", "string", "null"]},
		"retirementSavings":       {"type": ["number", "string", "null"]},
		"netWorth":                {"type": ["number", "string", "null"]},
		"retirementAge":           {"type": ["number", "string", "null"]},
		"dependentsPenalty":       {"type": ["string", "null"]},
		"retirementStrategy":      {"type": ["string", "null"]},
		"retirementExpenseChange": {"type": ["string", "null"]}
	}
}`

var schema = validation.MustSchema(requestSchema)

// Recorder observes subscore outcomes, typically for metrics.
type Recorder interface {
	ObserveSubscore(subscore string, status models.SubscoreStatus)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubscore(string, models.SubscoreStatus) {}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder installs a subscore recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// Engine validates requests and runs the four calculators. It holds no
// mutable state and may be shared across goroutines.
type Engine struct {
	tables   *reference.Tables
	policy   Policy
	logger   logger.Logger
	recorder Recorder
}

// NewEngine builds an engine over loaded tables. nil tables behave as
// reference.Empty().
func NewEngine(tables *reference.Tables, policy Policy, log logger.Logger, opts ...Option) *Engine {
	if tables == nil {
		tables = reference.Empty()
	}
	e := &Engine{
		tables:   tables,
		policy:   policy,
		logger:   log.WithFields(map[string]interface{}{"component": "scoring"}),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Tables() *reference.Tables { return e.tables }

func (e *Engine) Policy() Policy { return e.policy }

// Evaluate validates one record and scores it. Only request errors
// (MISSING_FIELD, UNPARSEABLE_VALUE, INVALID_REQUEST) are returned; every
// subscore problem is reported inside the result.
func (e *Engine) Evaluate(ctx context.Context, record map[string]interface{}) (*models.AssessmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := Decode(record)
	if err != nil {
		e.logger.Warn("assessment rejected", map[string]interface{}{
			"error": err,
		})
		return nil, err
	}

	result := e.Score(req)
	result.ReceivedData = make(map[string]interface{}, len(record))
	for k, v := range record {
		result.ReceivedData[k] = v
	}
	return result, nil
}

// Decode validates a raw record and extracts the typed request.
func Decode(record map[string]interface{}) (*models.AssessmentRequest, error) {
	if record == nil {
		return nil, errors.NewInvalidRequestError("request body must be a JSON object")
	}

	vr, err := schema.Validate(record)
	if err != nil {
		return nil, errors.NewInvalidRequestError(err.Error())
	}
	if !vr.Valid {
		if vr.HasErrors(models.FieldAge) {
			for _, ve := range vr.GetErrorsForField(models.FieldAge) {
				if ve.Code == "REQUIRED_FIELD_MISSING" || ve.Code == "LENGTH_VIOLATION" {
					return nil, errors.NewMissingFieldError(models.FieldAge)
				}
			}
		}
		stdErr := errors.NewInvalidRequestError(strings.Join(vr.GetErrorMessages(), "; "))
		stdErr.Field = vr.Errors[0].Field
		return nil, stdErr
	}

	age := strings.TrimSpace(record[models.FieldAge].(string))
	if age == "" {
		return nil, errors.NewMissingFieldError(models.FieldAge)
	}

	req := &models.AssessmentRequest{
		Age:                     age,
		GrossIncome:             record[models.FieldFamilyGrossIncome],
		FamilyExpenses:          record[models.FieldFamilyExpenses],
		TotalAssets:             record[models.FieldTotalAssets],
		TotalDebt:               record[models.FieldTotalDebt],
		DependentsPenalty:       stringField(record, models.FieldDependentsPenalty),
		RetirementStrategy:      stringField(record, models.FieldRetirementStrategy),
		RetirementExpenseChange: stringField(record, models.FieldRetirementExpenseChange),
		RetirementAge:           record[models.FieldRetirementAge],
		RetirementSavings:       record[models.FieldRetirementSavings],
		NetWorth:                record[models.FieldNetWorth],
	}

	incomeField := models.FieldFamilyGrossIncome
	if req.GrossIncome == nil {
		req.GrossIncome = record[models.FieldMonthlyIncome]
		incomeField = models.FieldMonthlyIncome
	}
	if req.GrossIncome != nil {
		if _, parsed := rangeparse.Parse(req.GrossIncome, rangeparse.AsIs); !parsed {
			return nil, errors.NewUnparseableValueError(incomeField, req.GrossIncome)
		}
	}
	return req, nil
}

func stringField(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}

// Score runs the calculators over a decoded request. ReceivedData is left
// for the caller to fill.
func (e *Engine) Score(req *models.AssessmentRequest) *models.AssessmentResult {
	monthly, incomeKnown := rangeparse.Parse(req.GrossIncome, rangeparse.AsIs)
	annual := monthly * 12

	income := e.income(req, annual, incomeKnown)
	budget := e.budget(req, annual, incomeKnown)
	netWorth := e.netWorth(req)
	projection, retirement := CalculateRetirement(RetirementInput{
		AgeLabel:        req.Age,
		MonthlyExpenses: req.FamilyExpenses,
		LiquidAssets:    firstPresent(req.RetirementSavings, req.NetWorth, req.TotalAssets),
		Strategy:        req.RetirementStrategy,
		ExpenseChange:   req.RetirementExpenseChange,
		RetirementAge:   req.RetirementAge,
	}, e.policy)

	outcomes := map[string]Outcome{
		models.SubscoreIncome:       income,
		models.SubscoreFamilyBudget: budget,
		models.SubscoreNetWorth:     netWorth,
		models.SubscoreRetirement:   retirement,
	}

	result := &models.AssessmentResult{
		IncomeScore:       income.Score(),
		FamilyBudgetScore: budget.Score(),
		NetWorthScore:     netWorth.Score(),
		RetirementScore:   retirement.Score(),
		OverallScore:      Overall(income, budget, netWorth, retirement),
		Subscores:         make(map[string]models.Subscore, len(outcomes)),
		Retirement:        projection,
	}

	fields := map[string]interface{}{"age": req.Age}
	for name, o := range outcomes {
		result.Subscores[name] = o.Subscore()
		e.recorder.ObserveSubscore(name, o.Status)
		fields[name] = string(o.Status)
		if o.Status != models.StatusOK {
			e.logger.Warn("subscore not computed from inputs", map[string]interface{}{
				"subscore": name,
				"status":   string(o.Status),
				"reason":   string(o.Reason),
				"age":      req.Age,
			})
		}
	}
	if result.OverallScore != nil {
		fields["overallScore"] = *result.OverallScore
	}
	e.logger.Info("assessment evaluated", fields)

	return result
}

func (e *Engine) income(req *models.AssessmentRequest, annual float64, known bool) Outcome {
	if !known {
		return unavailable(ReasonMissingField, "familyGrossIncome is missing")
	}
	if !finite(annual) {
		return unavailable(ReasonUnparseableValue, "annual income is out of range")
	}
	if e.useTable(e.policy.IncomeMode, e.tables.HasIncome()) {
		return IncomeScore(e.tables, req.Age, annual, e.policy)
	}
	return IncomeScoreFormula(req.Age, annual, req.DependentsPenalty)
}

func (e *Engine) budget(req *models.AssessmentRequest, annual float64, known bool) Outcome {
	if e.policy.BudgetMode == BudgetRatio {
		return FamilyBudgetRatioScore(annual, known, req.FamilyExpenses)
	}
	return FamilyBudgetScore(req.FamilyExpenses)
}

func (e *Engine) netWorth(req *models.AssessmentRequest) Outcome {
	if e.useTable(e.policy.NetWorthMode, e.tables.HasNetWorth()) {
		return NetWorthScore(e.tables, req.Age, req.TotalAssets, req.TotalDebt, e.policy)
	}
	return NetWorthScoreFormula(req.TotalAssets, req.TotalDebt)
}

func (e *Engine) useTable(mode Mode, loaded bool) bool {
	switch mode {
	case ModeTable:
		return true
	case ModeFormula:
		return false
	default:
		return loaded
	}
}

func firstPresent(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Overall is the mean of the available subscores, rounded to one decimal,
// or nil when none is available.
func Overall(outcomes ...Outcome) *float64 {
	var sum float64
	var n int
	for _, o := range outcomes {
		if o.Available() {
			sum += o.Value
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := round(sum/float64(n), 1)
	return &v
}
