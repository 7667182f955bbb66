package ddl

import (
	"fmt"
	"strings"

	"github.com/dbops/repart"
)

// lobTablespaceName distributes subpartition i over n LOB tablespaces:
// the suffix is (i mod n)+1, two digits, zero padded, appended to the
// LOB's base tablespace name.
func lobTablespaceName(base string, i, n int) string {
	return fmt.Sprintf("%s%02d", base, (i%n)+1)
}

// lobSegmentName names the segment for subpartition i. Names are unique
// across the full subpartition range because i is.
func lobSegmentName(base string, i int) string {
	return fmt.Sprintf("%s_%d", base, i)
}

// subpartitionTemplate renders the SUBPARTITION TEMPLATE block for a
// table with LOB storage: one sub-block per subpartition index, each
// placing every LOB's segment in its distributed tablespace. The last
// sub-block carries no trailing comma.
func subpartitionTemplate(lobs []repart.LobInfo, subpartitions, lobTablespaces int) string {
	var b strings.Builder
	b.WriteString("SUBPARTITION TEMPLATE (\n")

	for i := 0; i < subpartitions; i++ {
		b.WriteString(fmt.Sprintf("  SUBPARTITION SP_%d", i))
		for _, lob := range lobs {
			b.WriteString(fmt.Sprintf("\n    LOB (%s) STORE AS %s (TABLESPACE %s)",
				lob.Column,
				lobSegmentName(lob.SegmentBase, i),
				lobTablespaceName(lob.TablespaceBase, i, lobTablespaces),
			))
		}
		if i < subpartitions-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString(")")
	return b.String()
}
