package usecases

import (
	"fmt"
	"strings"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
)

// RepresentativePolicy picks the municipality whose region stamps the
// outbound query. matches is never empty when a policy is called.
type RepresentativePolicy func(matches []domain.Municipality) domain.Municipality

// FirstMatch picks the first municipality in dataset order. A viewport that
// spans several states is stamped with whichever state comes first.
func FirstMatch(matches []domain.Municipality) domain.Municipality {
	return matches[0]
}

// MajorityRegion picks the first municipality of the most frequent region.
// Ties go to the region that appears first.
func MajorityRegion(matches []domain.Municipality) domain.Municipality {
	counts := make(map[int]int, 4)
	first := make(map[int]int, 4)
	for i, m := range matches {
		if _, seen := first[m.RegionCode]; !seen {
			first[m.RegionCode] = i
		}
		counts[m.RegionCode]++
	}

	best := matches[0].RegionCode
	for code, n := range counts {
		switch {
		case n > counts[best]:
			best = code
		case n == counts[best] && first[code] < first[best]:
			best = code
		}
	}
	return matches[first[best]]
}

// PolicyByName maps a config value to a policy.
func PolicyByName(name string) (RepresentativePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return FirstMatch, nil
	case "majority":
		return MajorityRegion, nil
	default:
		return nil, fmt.Errorf("unknown region policy %q", name)
	}
}
