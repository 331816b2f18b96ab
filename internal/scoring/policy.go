package scoring

import "wellness-engine/internal/common/config"

// Mode selects between the table-driven and formula calculators.
type Mode string

const (
	// ModeAuto uses the reference table when one is loaded, else the formula.
	ModeAuto    Mode = "auto"
	ModeTable   Mode = "table"
	ModeFormula Mode = "formula"
)

// BudgetMode selects the family budget calculator.
type BudgetMode string

const (
	BudgetTable BudgetMode = "table"
	BudgetRatio BudgetMode = "ratio"
)

// RetirementCurve selects how the readiness ratio maps to a score.
type RetirementCurve string

const (
	CurveLogistic RetirementCurve = "logistic"
	CurveStep     RetirementCurve = "step"
)

// Policy holds the calculator variants. The zero value is not usable; start
// from DefaultPolicy.
type Policy struct {
	// LegacyScaling reports percentiles x100 instead of x10.
	LegacyScaling   bool
	IncomeMode      Mode
	NetWorthMode    Mode
	BudgetMode      BudgetMode
	RetirementCurve RetirementCurve
	RetirementAge   float64
	HorizonAge      float64
}

// DefaultPolicy is the canonical configuration.
func DefaultPolicy() Policy {
	return Policy{
		IncomeMode:      ModeAuto,
		NetWorthMode:    ModeAuto,
		BudgetMode:      BudgetTable,
		RetirementCurve: CurveLogistic,
		RetirementAge:   65,
		HorizonAge:      95,
	}
}

// PolicyFromConfig maps the scoring config section onto a Policy. Empty
// fields keep their defaults.
func PolicyFromConfig(cfg config.ScoringConfig) Policy {
	p := DefaultPolicy()
	p.LegacyScaling = cfg.LegacyScaling
	if cfg.IncomeMode != "" {
		p.IncomeMode = Mode(cfg.IncomeMode)
	}
	if cfg.NetWorthMode != "" {
		p.NetWorthMode = Mode(cfg.NetWorthMode)
	}
	if cfg.BudgetMode != "" {
		p.BudgetMode = BudgetMode(cfg.BudgetMode)
	}
	if cfg.RetirementCurve != "" {
		p.RetirementCurve = RetirementCurve(cfg.RetirementCurve)
	}
	if cfg.RetirementAge > 0 {
		p.RetirementAge = float64(cfg.RetirementAge)
	}
	if cfg.HorizonAge > 0 {
		p.HorizonAge = float64(cfg.HorizonAge)
	}
	return p
}

func (p Policy) percentileScale() float64 {
	if p.LegacyScaling {
		return 100
	}
	return 10
}
