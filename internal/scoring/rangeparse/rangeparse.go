// Package rangeparse turns bucketed range labels such as "Under $1,000",
// "$100,000 - $500,000" or "Greater than $5,000,000" into one representative
// number.
package rangeparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// OpenEndedPolicy controls how a trailing "+" bucket ("$10,000+") is valued.
type OpenEndedPolicy int

const (
	// Extend values "N+" like "Greater than N": N x OpenEndedFactor.
	Extend OpenEndedPolicy = iota
	// AsIs values "N+" as N.
	AsIs
)

// OpenEndedFactor is the heuristic extension applied to open-ended buckets.
// It is an estimate, not a bound.
const OpenEndedFactor = 1.5

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	rangeMarker   = regexp.MustCompile(`(?i)^\s*(?:-|–|—|to)\s*$`)
	separators    = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", " ")
)

// ParseRangeToMidpoint parses a range label with the Extend policy. Non-text
// input and labels matching no rule return 0, which callers must read as
// "unknown" rather than "zero dollars".
func ParseRangeToMidpoint(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := ParseText(s, Extend)
	return n
}

// ParseMonthlyIncome accepts raw numbers unchanged and parses strings with
// the AsIs policy. Unparseable input returns 0.
func ParseMonthlyIncome(v interface{}) float64 {
	n, _ := Parse(v, AsIs)
	return n
}

// Parse is the checked form of both parsers: ok is false when v is neither a
// number nor a string matching a rule.
func Parse(v interface{}, policy OpenEndedPolicy) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return ParseText(t, policy)
	default:
		return 0, false
	}
}

// ParseText applies the range grammar to a label. Rules are checked in order:
// "Under"/"Less than" N -> N/2, "Greater than" N -> N x 1.5, two numbers
// around a range marker -> their mean, a single number -> itself.
func ParseText(text string, policy OpenEndedPolicy) (float64, bool) {
	cleaned := strings.TrimSpace(separators.Replace(text))
	if cleaned == "" {
		return 0, false
	}
	lower := strings.ToLower(cleaned)

	locs := numberPattern.FindAllStringIndex(cleaned, -1)
	nums := make([]float64, 0, len(locs))
	for _, loc := range locs {
		f, err := strconv.ParseFloat(cleaned[loc[0]:loc[1]], 64)
		if err != nil {
			return 0, false
		}
		nums = append(nums, f)
	}

	switch {
	case strings.HasPrefix(lower, "under") || strings.Contains(lower, "less than"):
		if len(nums) != 1 {
			return 0, false
		}
		return nums[0] / 2, true

	case strings.Contains(lower, "greater than"):
		if len(nums) != 1 {
			return 0, false
		}
		return nums[0] * OpenEndedFactor, true

	case len(nums) == 2:
		if !rangeMarker.MatchString(cleaned[locs[0][1]:locs[1][0]]) {
			return 0, false
		}
		return (nums[0] + nums[1]) / 2, true

	case len(nums) == 1:
		if policy == Extend && strings.HasSuffix(cleaned, "+") {
			return nums[0] * OpenEndedFactor, true
		}
		return nums[0], true
	}

	return 0, false
}
