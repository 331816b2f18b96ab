package reference

import "strings"

// AgeGroup is one of the fixed age partitions used as the key of both
// percentile tables.
type AgeGroup struct {
	ID     int    `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	MinAge int    `json:"minAge" yaml:"min_age"`
	MaxAge int    `json:"maxAge" yaml:"max_age"` // 0 means open-ended
}

// AgeInfo is what an age label resolves to.
type AgeInfo struct {
	Label string
	// GroupID is the canonical AgeGroup id used for table lookups.
	GroupID int
	// RepresentativeAge is the bucket midpoint used by the retirement model.
	RepresentativeAge float64
	// MedianIncome is the annual median used by the formula income score.
	MedianIncome float64
	Legacy       bool
}

var canonicalGroups = []AgeGroup{
	{ID: 1, Label: "15 to 24 years", MinAge: 15, MaxAge: 24},
	{ID: 2, Label: "25 to 29 years", MinAge: 25, MaxAge: 29},
	{ID: 3, Label: "30 to 34 years", MinAge: 30, MaxAge: 34},
	{ID: 4, Label: "35 to 39 years", MinAge: 35, MaxAge: 39},
	{ID: 5, Label: "40 to 44 years", MinAge: 40, MaxAge: 44},
	{ID: 6, Label: "45 to 49 years", MinAge: 45, MaxAge: 49},
	{ID: 7, Label: "50 to 54 years", MinAge: 50, MaxAge: 54},
	{ID: 8, Label: "55 to 59 years", MinAge: 55, MaxAge: 59},
	{ID: 9, Label: "60 to 64 years", MinAge: 60, MaxAge: 64},
	{ID: 10, Label: "65 to 69 years", MinAge: 65, MaxAge: 69},
	{ID: 11, Label: "70 to 74 years", MinAge: 70, MaxAge: 74},
	{ID: 12, Label: "75 years and over", MinAge: 75},
}

// openEndedRepresentativeAge is used for "75 years and over".
const openEndedRepresentativeAge = 80

// Annual medians for the formula income score, by canonical group id.
var canonicalMedianIncome = map[int]float64{
	1:  25000,
	2:  45000,
	3:  55000,
	4:  62000,
	5:  68000,
	6:  72000,
	7:  75000,
	8:  72000,
	9:  65000,
	10: 55000,
	11: 48000,
	12: 40000,
}

// legacyLabels are the decade labels accepted by the first deployed revision.
var legacyLabels = []AgeInfo{
	{Label: "Under 20", GroupID: 1, RepresentativeAge: 18, MedianIncome: 20000, Legacy: true},
	{Label: "20 - 29", GroupID: 2, RepresentativeAge: 24.5, MedianIncome: 35000, Legacy: true},
	{Label: "30 - 39", GroupID: 4, RepresentativeAge: 34.5, MedianIncome: 55000, Legacy: true},
	{Label: "40 - 49", GroupID: 6, RepresentativeAge: 44.5, MedianIncome: 70000, Legacy: true},
	{Label: "50 - 59", GroupID: 8, RepresentativeAge: 54.5, MedianIncome: 75000, Legacy: true},
	{Label: "60 - 69", GroupID: 10, RepresentativeAge: 64.5, MedianIncome: 65000, Legacy: true},
	{Label: "70 - 79", GroupID: 12, RepresentativeAge: 74.5, MedianIncome: 50000, Legacy: true},
	{Label: "80 - 89", GroupID: 12, RepresentativeAge: 84.5, MedianIncome: 40000, Legacy: true},
	{Label: "90 and above", GroupID: 12, RepresentativeAge: 92, MedianIncome: 30000, Legacy: true},
}

var ageIndex = buildAgeIndex()

func buildAgeIndex() map[string]AgeInfo {
	idx := make(map[string]AgeInfo, len(canonicalGroups)+len(legacyLabels))
	for _, g := range canonicalGroups {
		rep := float64(g.MinAge+g.MaxAge) / 2
		if g.MaxAge == 0 {
			rep = openEndedRepresentativeAge
		}
		info := AgeInfo{
			Label:             g.Label,
			GroupID:           g.ID,
			RepresentativeAge: rep,
			MedianIncome:      canonicalMedianIncome[g.ID],
		}
		idx[normalizeLabel(g.Label)] = info
		// short form: "30 to 34", "75 and over"
		idx[normalizeLabel(strings.Replace(g.Label, " years", "", 1))] = info
	}
	for _, l := range legacyLabels {
		idx[normalizeLabel(l.Label)] = l
	}
	return idx
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// ResolveAge maps a canonical or legacy age label to its group and
// representative age. Matching ignores case and repeated whitespace.
func ResolveAge(label string) (AgeInfo, bool) {
	info, ok := ageIndex[normalizeLabel(label)]
	return info, ok
}

// CanonicalAgeGroups returns a copy of the 12 canonical groups.
func CanonicalAgeGroups() []AgeGroup {
	out := make([]AgeGroup, len(canonicalGroups))
	copy(out, canonicalGroups)
	return out
}

// AgeLabels lists every accepted label, canonical first.
func AgeLabels() []string {
	out := make([]string, 0, len(canonicalGroups)+len(legacyLabels))
	for _, g := range canonicalGroups {
		out = append(out, g.Label)
	}
	for _, l := range legacyLabels {
		out = append(out, l.Label)
	}
	return out
}
