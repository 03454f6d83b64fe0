// Package match ranks vendor directory names against a free-text
// merchant name using sequence similarity.
package match

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"revolut-odoo-sync/internal/domain"
)

const (
	// DefaultCutoff drops candidates whose similarity ratio is below it.
	DefaultCutoff = 0.5
	// DefaultLimit caps how many candidates are offered for selection.
	DefaultLimit = 5
)

type Matcher struct {
	Cutoff float64
	Limit  int
}

func NewMatcher() *Matcher {
	return &Matcher{Cutoff: DefaultCutoff, Limit: DefaultLimit}
}

// Rank scores every vendor name against the merchant name and returns
// at most Limit candidates with ratio >= Cutoff, best first. The sort
// is stable, so equal scores keep the directory's original order.
// Deterministic and side-effect free; the caller supplies the name set
// fresh per lookup because the directory can change between runs.
func (m *Matcher) Rank(merchant string, vendorNames []string) []domain.VendorCandidate {
	var candidates []domain.VendorCandidate
	query := splitRunes(merchant)

	for _, name := range vendorNames {
		ratio := difflib.NewMatcher(splitRunes(name), query).Ratio()
		if ratio >= m.Cutoff {
			candidates = append(candidates, domain.VendorCandidate{Name: name, Score: ratio})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > m.Limit {
		candidates = candidates[:m.Limit]
	}
	return candidates
}

// The sequence matcher compares element sequences; one element per rune
// gives character-level similarity.
func splitRunes(s string) []string {
	return strings.Split(s, "")
}
