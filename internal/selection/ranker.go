package selection

import (
	"sort"

	"github.com/wonny/finpulse/internal/contracts"
)

// Rank orders opportunities by score descending and keeps the top n.
// The sort is stable, so equal scores keep their input (universe) order.
// ⭐ SSOT: 기회 랭킹은 여기서만
func Rank(opportunities []contracts.OpportunityResult, n int) []contracts.OpportunityResult {
	ranked := make([]contracts.OpportunityResult, len(opportunities))
	copy(ranked, opportunities)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OpportunityScore > ranked[j].OpportunityScore
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
