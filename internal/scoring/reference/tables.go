// Package reference holds the age-partitioned percentile tables consulted by
// the income and net-worth subscores, and the loaders that build them.
package reference

import (
	"fmt"
	"sort"

	"wellness-engine/internal/common/errors"
)

// IncomeBand states that, within an age group, incomes in
// [IncomeFrom, IncomeTo] sit at Percentile. A nil IncomeTo is open-ended.
type IncomeBand struct {
	AgeGroupID int      `json:"ageGroupId" yaml:"age_group_id"`
	IncomeFrom float64  `json:"incomeFrom" yaml:"income_from"`
	IncomeTo   *float64 `json:"incomeTo,omitempty" yaml:"income_to,omitempty"`
	Percentile float64  `json:"percentile" yaml:"percentile"`
}

// Contains reports whether income falls inside the band, both ends inclusive.
func (b IncomeBand) Contains(income float64) bool {
	if income < b.IncomeFrom {
		return false
	}
	return b.IncomeTo == nil || income <= *b.IncomeTo
}

// NetWorthBand maps an (age group, net-worth range) pair to a percentile.
type NetWorthBand struct {
	AgeGroupID      int     `json:"ageGroupId" yaml:"age_group_id"`
	NetWorthGroupID int     `json:"netWorthGroupId" yaml:"net_worth_group_id"`
	PercentileValue float64 `json:"percentileValue" yaml:"percentile_value"`
}

// Snapshot is the serializable form of Tables, used by the YAML loader and
// the redis cache.
type Snapshot struct {
	AgeGroups     []AgeGroup     `json:"ageGroups" yaml:"age_groups"`
	IncomeBands   []IncomeBand   `json:"incomeBands" yaml:"income_bands"`
	NetWorthBands []NetWorthBand `json:"netWorthBands" yaml:"net_worth_bands"`
}

type netWorthKey struct {
	ageGroupID      int
	netWorthGroupID int
}

// Tables is immutable once built. All lookups are safe for concurrent use
// without locking.
type Tables struct {
	groups      []AgeGroup
	idByLabel   map[string]int
	income      map[int][]IncomeBand
	netWorth    map[netWorthKey]float64
	incomeRows  int
	netWorthRow int
}

// Empty returns tables holding only the canonical age groups. Table-driven
// subscores report no_reference_table against it.
func Empty() *Tables {
	t, _ := NewTables(nil, nil, nil)
	return t
}

// NewTablesFromSnapshot validates a snapshot and builds Tables from it. A
// snapshot without age groups uses the canonical ones.
func NewTablesFromSnapshot(s Snapshot) (*Tables, error) {
	if len(s.AgeGroups) == 0 {
		s.AgeGroups = nil
	}
	return NewTables(s.AgeGroups, s.IncomeBands, s.NetWorthBands)
}

// NewTables validates the three datasets and indexes them. A nil groups
// slice means the canonical 12 groups.
func NewTables(groups []AgeGroup, incomeBands []IncomeBand, netWorthBands []NetWorthBand) (*Tables, error) {
	if groups == nil {
		groups = CanonicalAgeGroups()
	}

	t := &Tables{
		groups:    make([]AgeGroup, len(groups)),
		idByLabel: make(map[string]int, len(groups)),
		income:    make(map[int][]IncomeBand),
		netWorth:  make(map[netWorthKey]float64, len(netWorthBands)),
	}
	copy(t.groups, groups)

	known := make(map[int]bool, len(groups))
	for _, g := range groups {
		if g.ID <= 0 {
			return nil, invalid("age group %q has non-positive id %d", g.Label, g.ID)
		}
		if known[g.ID] {
			return nil, invalid("duplicate age group id %d", g.ID)
		}
		info, ok := ResolveAge(g.Label)
		if !ok || info.Legacy {
			return nil, invalid("age group %d label %q is not a canonical age label", g.ID, g.Label)
		}
		key := normalizeLabel(info.Label)
		if _, dup := t.idByLabel[key]; dup {
			return nil, invalid("duplicate age group label %q", g.Label)
		}
		known[g.ID] = true
		t.idByLabel[key] = g.ID
	}

	for _, b := range incomeBands {
		if !known[b.AgeGroupID] {
			return nil, invalid("income band references unknown age group %d", b.AgeGroupID)
		}
		if b.IncomeFrom < 0 {
			return nil, invalid("income band for group %d starts below zero (%v)", b.AgeGroupID, b.IncomeFrom)
		}
		if b.IncomeTo != nil && *b.IncomeTo < b.IncomeFrom {
			return nil, invalid("income band for group %d has income_to %v below income_from %v",
				b.AgeGroupID, *b.IncomeTo, b.IncomeFrom)
		}
		if b.Percentile < 0 || b.Percentile > 1 {
			return nil, invalid("income band for group %d has percentile %v outside [0,1]", b.AgeGroupID, b.Percentile)
		}
		if b.IncomeTo != nil {
			to := *b.IncomeTo
			b.IncomeTo = &to
		}
		t.income[b.AgeGroupID] = append(t.income[b.AgeGroupID], b)
	}

	for id, bands := range t.income {
		sort.SliceStable(bands, func(i, j int) bool { return bands[i].IncomeFrom < bands[j].IncomeFrom })
		if bands[0].IncomeFrom != 0 {
			return nil, invalid("income bands for group %d start at %v instead of 0", id, bands[0].IncomeFrom)
		}
		for i := 1; i < len(bands); i++ {
			prev, cur := bands[i-1], bands[i]
			if prev.IncomeTo == nil {
				return nil, invalid("open-ended income band for group %d is not the last band", id)
			}
			if cur.IncomeFrom < *prev.IncomeTo {
				return nil, invalid("income bands for group %d overlap at %v", id, cur.IncomeFrom)
			}
			if cur.IncomeFrom > *prev.IncomeTo {
				return nil, invalid("income bands for group %d leave a gap between %v and %v", id, *prev.IncomeTo, cur.IncomeFrom)
			}
			if cur.Percentile < prev.Percentile {
				return nil, invalid("income band percentiles for group %d are not ascending at %v", id, cur.IncomeFrom)
			}
		}
		t.income[id] = bands
		t.incomeRows += len(bands)
	}

	for _, b := range netWorthBands {
		if !known[b.AgeGroupID] {
			return nil, invalid("net worth band references unknown age group %d", b.AgeGroupID)
		}
		if b.NetWorthGroupID < 1 || b.NetWorthGroupID > NetWorthRangeCount {
			return nil, invalid("net worth band for group %d has range id %d outside 1..%d",
				b.AgeGroupID, b.NetWorthGroupID, NetWorthRangeCount)
		}
		if b.PercentileValue < 0 || b.PercentileValue > 1 {
			return nil, invalid("net worth band (%d,%d) has percentile %v outside [0,1]",
				b.AgeGroupID, b.NetWorthGroupID, b.PercentileValue)
		}
		key := netWorthKey{b.AgeGroupID, b.NetWorthGroupID}
		if _, dup := t.netWorth[key]; dup {
			return nil, invalid("duplicate net worth band (%d,%d)", b.AgeGroupID, b.NetWorthGroupID)
		}
		t.netWorth[key] = b.PercentileValue
	}
	t.netWorthRow = len(t.netWorth)

	return t, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.NewReferenceDataInvalidError(fmt.Sprintf(format, args...))
}

// GroupID resolves a canonical or legacy age label to this table's group id.
func (t *Tables) GroupID(label string) (int, bool) {
	info, ok := ResolveAge(label)
	if !ok {
		return 0, false
	}
	canonical := canonicalGroups[info.GroupID-1].Label
	id, ok := t.idByLabel[normalizeLabel(canonical)]
	return id, ok
}

// HasIncome reports whether any income bands were loaded.
func (t *Tables) HasIncome() bool { return t.incomeRows > 0 }

// HasNetWorth reports whether any net-worth bands were loaded.
func (t *Tables) HasNetWorth() bool { return t.netWorthRow > 0 }

// IncomeBandFor returns the band of the group containing income. When two
// bands share an edge value, the higher band wins.
func (t *Tables) IncomeBandFor(groupID int, income float64) (IncomeBand, bool) {
	bands := t.income[groupID]
	i := sort.Search(len(bands), func(i int) bool { return bands[i].IncomeFrom > income })
	if i == 0 {
		return IncomeBand{}, false
	}
	band := bands[i-1]
	if !band.Contains(income) {
		return IncomeBand{}, false
	}
	return band, true
}

// NetWorthPercentile returns the percentile for a group and net-worth range.
func (t *Tables) NetWorthPercentile(groupID, netWorthGroupID int) (float64, bool) {
	p, ok := t.netWorth[netWorthKey{groupID, netWorthGroupID}]
	return p, ok
}

// Misses lists the lookups that would fall through a loaded table: age groups
// with no income bands, and (age group, net-worth range) cells with no
// percentile. Tables that were not loaded at all are skipped.
func (t *Tables) Misses() []*errors.StandardError {
	var misses []*errors.StandardError
	for _, g := range t.groups {
		if t.HasIncome() && len(t.income[g.ID]) == 0 {
			misses = append(misses, errors.NewLookupMissError("income_percentiles",
				fmt.Sprintf("no income bands for age group %d (%s)", g.ID, g.Label)))
		}
		if !t.HasNetWorth() {
			continue
		}
		for nw := 1; nw <= NetWorthRangeCount; nw++ {
			if _, ok := t.netWorth[netWorthKey{g.ID, nw}]; !ok {
				misses = append(misses, errors.NewLookupMissError("networth_percentiles",
					fmt.Sprintf("no percentile for age group %d (%s), net worth range %d", g.ID, g.Label, nw)))
			}
		}
	}
	return misses
}

// RowCounts reports loaded rows per table, keyed by table name.
func (t *Tables) RowCounts() map[string]int {
	return map[string]int{
		"age_groups":           len(t.groups),
		"income_percentiles":   t.incomeRows,
		"networth_percentiles": t.netWorthRow,
	}
}

// Snapshot returns a deep copy of the tables in serializable form.
func (t *Tables) Snapshot() Snapshot {
	s := Snapshot{
		AgeGroups:     make([]AgeGroup, len(t.groups)),
		IncomeBands:   make([]IncomeBand, 0, t.incomeRows),
		NetWorthBands: make([]NetWorthBand, 0, t.netWorthRow),
	}
	copy(s.AgeGroups, t.groups)

	for _, g := range t.groups {
		for _, b := range t.income[g.ID] {
			if b.IncomeTo != nil {
				to := *b.IncomeTo
				b.IncomeTo = &to
			}
			s.IncomeBands = append(s.IncomeBands, b)
		}
		for nw := 1; nw <= NetWorthRangeCount; nw++ {
			if p, ok := t.netWorth[netWorthKey{g.ID, nw}]; ok {
				s.NetWorthBands = append(s.NetWorthBands, NetWorthBand{AgeGroupID: g.ID, NetWorthGroupID: nw, PercentileValue: p})
			}
		}
	}
	return s
}
