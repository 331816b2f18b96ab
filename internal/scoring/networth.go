package scoring

import (
	"fmt"

	"wellness-engine/internal/scoring/rangeparse"
	"wellness-engine/internal/scoring/reference"
)

const defaultOrdinalScore = 5

var assetOrdinal = map[string]float64{
	"less than $10,000":       1,
	"$10,000 - $50,000":       3,
	"$50,000 - $100,000":      4,
	"$100,000 - $500,000":     6,
	"$500,000 - $1,000,000":   8,
	"$1,000,000 - $5,000,000": 9,
	"greater than $5,000,000": 10,
}

var debtOrdinal = map[string]float64{
	"no debt":                 10,
	"less than $100,000":      8,
	"$100,000 - $250,000":     6,
	"$250,000 - $500,000":     4,
	"$500,000 - $1,000,000":   2,
	"greater than $1,000,000": 1,
}

// NetWorth is assets minus debt from the two bucket midpoints.
type NetWorth struct {
	Value   float64
	RangeID int
}

// ComputeNetWorth parses both buckets. A missing debt bucket counts as zero
// debt; missing or unparseable assets yield an unavailable outcome.
func ComputeNetWorth(assets, debt interface{}) (NetWorth, *Outcome) {
	if assets == nil {
		o := unavailable(ReasonMissingField, "totalAssets is missing")
		return NetWorth{}, &o
	}
	a, parsed := rangeparse.Parse(assets, rangeparse.Extend)
	if !parsed {
		o := unavailable(ReasonUnparseableValue, fmt.Sprintf("cannot parse asset bucket %v", assets))
		return NetWorth{}, &o
	}

	var d float64
	if debt != nil {
		if d, parsed = rangeparse.Parse(debt, rangeparse.Extend); !parsed {
			o := unavailable(ReasonUnparseableValue, fmt.Sprintf("cannot parse debt bucket %v", debt))
			return NetWorth{}, &o
		}
	}

	v := a - d
	if !finite(v) {
		o := unavailable(ReasonUnparseableValue, "net worth is out of range")
		return NetWorth{}, &o
	}
	return NetWorth{Value: v, RangeID: reference.MapNetWorthToRangeID(v)}, nil
}

// NetWorthScore buckets assets minus debt and looks the bucket up in the age
// group's net-worth percentiles.
func NetWorthScore(tables *reference.Tables, ageLabel string, assets, debt interface{}, p Policy) Outcome {
	if !tables.HasNetWorth() {
		return unavailable(ReasonNoReferenceTable, "net worth percentile table is not loaded")
	}
	nw, failed := ComputeNetWorth(assets, debt)
	if failed != nil {
		return *failed
	}
	groupID, found := tables.GroupID(ageLabel)
	if !found {
		return unavailable(ReasonUnknownAge, fmt.Sprintf("age %q has no net worth table group", ageLabel))
	}
	percentile, found := tables.NetWorthPercentile(groupID, nw.RangeID)
	if !found {
		return unavailable(ReasonBandNotFound, fmt.Sprintf("no net worth band for group %d range %d", groupID, nw.RangeID))
	}
	return ok(round(percentile*p.percentileScale(), 2))
}

// NetWorthScoreFormula averages the ordinal scores of the asset and debt
// labels. Unrecognized labels score 5 and mark the outcome degraded.
func NetWorthScoreFormula(assets, debt interface{}) Outcome {
	if assets == nil {
		return unavailable(ReasonMissingField, "totalAssets is missing")
	}

	assetScore, assetKnown := ordinal(assetOrdinal, assets)
	debtScore, debtKnown := ordinal(debtOrdinal, debt)
	if debt == nil {
		debtScore, debtKnown = debtOrdinal["no debt"], true
	}

	score := round((assetScore+debtScore)/2, 1)
	switch {
	case !assetKnown:
		return degraded(score, ReasonUnknownBucket, fmt.Sprintf("unrecognized asset bucket %v", assets))
	case !debtKnown:
		return degraded(score, ReasonUnknownBucket, fmt.Sprintf("unrecognized debt bucket %v", debt))
	}
	return ok(score)
}

func ordinal(table map[string]float64, v interface{}) (float64, bool) {
	label, isText := v.(string)
	if !isText {
		return defaultOrdinalScore, false
	}
	if s, found := table[bucketKey(label)]; found {
		return s, true
	}
	return defaultOrdinalScore, false
}
