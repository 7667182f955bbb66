package ddl

import (
	"sort"

	"github.com/dbops/repart"
)

// disableRank orders constraint types for disabling before a bulk load:
// referential first, primary last, so no constraint is disabled while
// something depending on it is still enabled.
var disableRank = map[repart.ConstraintType]int{
	repart.ConstraintForeign: 0,
	repart.ConstraintCheck:   1,
	repart.ConstraintUnique:  2,
	repart.ConstraintPrimary: 3,
}

// SortForDisable returns the constraints in disable order: R, C, U, P.
// The input is not modified; ties keep their discovered order.
func SortForDisable(constraints []repart.ConstraintInfo) []repart.ConstraintInfo {
	sorted := make([]repart.ConstraintInfo, len(constraints))
	copy(sorted, constraints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return disableRank[sorted[i].Type] < disableRank[sorted[j].Type]
	})
	return sorted
}

// SortForEnable returns the constraints in enable order: P, U, C, R,
// the exact reverse of the disable order.
func SortForEnable(constraints []repart.ConstraintInfo) []repart.ConstraintInfo {
	sorted := make([]repart.ConstraintInfo, len(constraints))
	copy(sorted, constraints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return disableRank[sorted[i].Type] > disableRank[sorted[j].Type]
	})
	return sorted
}
