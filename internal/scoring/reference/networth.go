package reference

import "math"

// NetWorthRangeCount is the number of fixed net-worth ranges.
const NetWorthRangeCount = 7

// NetWorthRange is an inclusive [Min, Max] interval of signed net worth.
type NetWorthRange struct {
	ID  int
	Min float64
	Max float64
}

// The first range has no lower bound. The listed gaps between ranges
// (25000..26000 and so on) match nothing and fall to the top range.
var netWorthRanges = []NetWorthRange{
	{ID: 1, Min: math.Inf(-1), Max: 25000},
	{ID: 2, Min: 26000, Max: 100000},
	{ID: 3, Min: 101000, Max: 500000},
	{ID: 4, Min: 501000, Max: 1000000},
	{ID: 5, Min: 1000001, Max: 2000000},
	{ID: 6, Min: 2000001, Max: 5000000},
	{ID: 7, Min: 5000001, Max: math.Inf(1)},
}

// MapNetWorthToRangeID buckets a signed net-worth value into ranges 1..7.
// Values matching no range go to 7.
func MapNetWorthToRangeID(netWorth float64) int {
	for _, r := range netWorthRanges {
		if netWorth >= r.Min && netWorth <= r.Max {
			return r.ID
		}
	}
	return NetWorthRangeCount
}

// NetWorthRanges returns a copy of the range definitions.
func NetWorthRanges() []NetWorthRange {
	out := make([]NetWorthRange, len(netWorthRanges))
	copy(out, netWorthRanges)
	return out
}
