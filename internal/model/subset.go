package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Subset names one of the five output files.
type Subset string

const (
	SubsetAll       Subset = "all"
	SubsetTotal     Subset = "total"
	SubsetPermanent Subset = "permanent"
	SubsetElsewhere Subset = "elsewhere"
	SubsetAbroad    Subset = "abroad"
)

// AllSubsets returns every subset in output order.
func AllSubsets() []Subset {
	return []Subset{SubsetAll, SubsetTotal, SubsetPermanent, SubsetElsewhere, SubsetAbroad}
}

// ParseSubset maps a name to a Subset.
func ParseSubset(s string) (Subset, error) {
	sub := Subset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSubsets() {
		if sub == known {
			return sub, nil
		}
	}
	return "", eris.Errorf("model: unknown subset %q", s)
}

// Includes reports whether a record belongs to the subset. The all subset
// takes every record; the others require a positive count.
func (s Subset) Includes(r PopulationRecord) bool {
	switch s {
	case SubsetAll:
		return true
	case SubsetTotal:
		return r.PopTotal > 0
	case SubsetPermanent:
		return r.PopPermanent > 0
	case SubsetElsewhere:
		return r.PopElsewhereDomestic > 0
	case SubsetAbroad:
		return r.PopAbroad > 0
	default:
		return false
	}
}
