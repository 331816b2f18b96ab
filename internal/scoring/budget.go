package scoring

import (
	"fmt"
	"strings"

	"wellness-engine/internal/scoring/rangeparse"
)

// DefaultBudgetScore is reported when the expense bucket cannot be scored.
const DefaultBudgetScore = 5

var expenseBuckets = map[string]float64{
	"under $1,000":    10,
	"$1,000 - $2,499": 8,
	"$2,500 - $4,999": 6,
	"$5,000 - $7,499": 4,
	"$7,500 - $9,999": 2,
	"$10,000+":        1,
}

func bucketKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// FamilyBudgetScore maps a monthly household-expense bucket to 1..10; lower
// expenses score higher.
func FamilyBudgetScore(bucket interface{}) Outcome {
	label, isText := bucket.(string)
	if bucket == nil || (isText && strings.TrimSpace(label) == "") {
		return degraded(DefaultBudgetScore, ReasonMissingField, "familyExpenses is missing")
	}
	if !isText {
		return degraded(DefaultBudgetScore, ReasonUnknownBucket, fmt.Sprintf("expense bucket %v is not a label", bucket))
	}
	if score, found := expenseBuckets[bucketKey(label)]; found {
		return ok(score)
	}
	return degraded(DefaultBudgetScore, ReasonUnknownBucket, fmt.Sprintf("unrecognized expense bucket %q", label))
}

// budgetSteps are exclusive upper bounds; [4,5) shares the score of [3.5,4).
var budgetSteps = []struct {
	below float64
	score float64
}{
	{1, 1},
	{1.5, 2},
	{2, 3},
	{2.5, 4},
	{3, 5},
	{3.5, 6},
	{5, 7},
}

// FamilyBudgetRatioScore scores annual income over annualized expenses.
func FamilyBudgetRatioScore(annualIncome float64, incomeKnown bool, expenses interface{}) Outcome {
	if !incomeKnown {
		return degraded(DefaultBudgetScore, ReasonMissingField, "income is required for the ratio budget score")
	}
	if expenses == nil {
		return degraded(DefaultBudgetScore, ReasonMissingField, "familyExpenses is missing")
	}
	monthly, parsed := rangeparse.Parse(expenses, rangeparse.Extend)
	if !parsed {
		return degraded(DefaultBudgetScore, ReasonUnparseableValue, fmt.Sprintf("cannot parse expense bucket %v", expenses))
	}
	if monthly <= 0 {
		return degraded(DefaultBudgetScore, ReasonZeroExpenseDraw, "expenses must be positive")
	}

	ratio := annualIncome / (monthly * 12)
	if !finite(ratio) {
		return degraded(DefaultBudgetScore, ReasonUnparseableValue, "income to expense ratio is out of range")
	}
	for _, s := range budgetSteps {
		if ratio < s.below {
			return ok(s.score)
		}
	}
	return ok(10)
}
