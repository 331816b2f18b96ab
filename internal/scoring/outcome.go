// Package scoring computes the four wellness subscores and assembles them
// into an assessment.
package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"wellness-engine/internal/models"
)

// Reason explains why an outcome is not StatusOK.
type Reason string

const (
	ReasonMissingField     Reason = "missing_field"
	ReasonUnparseableValue Reason = "unparseable_value"
	ReasonUnknownAge       Reason = "unknown_age"
	ReasonBandNotFound     Reason = "band_not_found"
	ReasonUnknownBucket    Reason = "unknown_bucket"
	ReasonZeroExpenseDraw  Reason = "zero_expense_draw"
	ReasonMissingStrategy  Reason = "missing_strategy"
	ReasonNoReferenceTable Reason = "no_reference_table"
)

// Outcome is the result of one calculator. Degraded outcomes carry a
// documented default in Value; unavailable outcomes carry no value.
type Outcome struct {
	Value  float64
	Status models.SubscoreStatus
	Reason Reason
	Detail string
}

func ok(v float64) Outcome {
	return Outcome{Value: v, Status: models.StatusOK}
}

func degraded(v float64, reason Reason, detail string) Outcome {
	return Outcome{Value: v, Status: models.StatusDegraded, Reason: reason, Detail: detail}
}

func unavailable(reason Reason, detail string) Outcome {
	return Outcome{Status: models.StatusUnavailable, Reason: reason, Detail: detail}
}

// Available reports whether the outcome has a value.
func (o Outcome) Available() bool {
	return o.Status != models.StatusUnavailable
}

// Score returns the value, or nil when unavailable.
func (o Outcome) Score() *float64 {
	if !o.Available() {
		return nil
	}
	v := o.Value
	return &v
}

// Subscore converts the outcome to its wire form.
func (o Outcome) Subscore() models.Subscore {
	return models.Subscore{
		Score:  o.Score(),
		Status: o.Status,
		Reason: string(o.Reason),
		Detail: o.Detail,
	}
}

// round rounds half away from zero to the given number of decimals.
// Non-finite values are returned unchanged.
func round(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
