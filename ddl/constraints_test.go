package ddl

import (
	"testing"

	"github.com/dbops/repart"
	"github.com/stretchr/testify/assert"
)

func mixedConstraints() []repart.ConstraintInfo {
	return []repart.ConstraintInfo{
		{Name: "PK_ORDERS", Type: repart.ConstraintPrimary},
		{Name: "CK_STATUS", Type: repart.ConstraintCheck},
		{Name: "FK_CUSTOMER", Type: repart.ConstraintForeign},
		{Name: "UQ_ORDER_NO", Type: repart.ConstraintUnique},
	}
}

func typeOrder(constraints []repart.ConstraintInfo) []repart.ConstraintType {
	types := make([]repart.ConstraintType, len(constraints))
	for i, c := range constraints {
		types[i] = c.Type
	}
	return types
}

func TestSortForDisable(t *testing.T) {
	sorted := SortForDisable(mixedConstraints())

	assert.Equal(t, []repart.ConstraintType{
		repart.ConstraintForeign,
		repart.ConstraintCheck,
		repart.ConstraintUnique,
		repart.ConstraintPrimary,
	}, typeOrder(sorted))
}

func TestSortForEnable(t *testing.T) {
	sorted := SortForEnable(mixedConstraints())

	assert.Equal(t, []repart.ConstraintType{
		repart.ConstraintPrimary,
		repart.ConstraintUnique,
		repart.ConstraintCheck,
		repart.ConstraintForeign,
	}, typeOrder(sorted))
}

func TestSort_Stability(t *testing.T) {
	constraints := []repart.ConstraintInfo{
		{Name: "FK_A", Type: repart.ConstraintForeign},
		{Name: "FK_B", Type: repart.ConstraintForeign},
		{Name: "FK_C", Type: repart.ConstraintForeign},
	}

	sorted := SortForDisable(constraints)

	assert.Equal(t, "FK_A", sorted[0].Name)
	assert.Equal(t, "FK_B", sorted[1].Name)
	assert.Equal(t, "FK_C", sorted[2].Name)
}

func TestSort_InputUntouched(t *testing.T) {
	constraints := mixedConstraints()
	original := typeOrder(constraints)

	SortForDisable(constraints)
	SortForEnable(constraints)

	assert.Equal(t, original, typeOrder(constraints))
}
