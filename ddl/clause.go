// Package ddl compiles a validated TableConfig into ordered phase
// artifacts. Statement text is assembled from a small typed clause AST
// so the physical clause order is enforced by construction rather than
// by template convention.
package ddl

import (
	"fmt"
	"sort"
	"strings"
)

// ClauseKind identifies one physical clause of the CREATE TABLE
// statement. The declaration order below is the fixed total order the
// renderer emits clauses in; it never varies.
type ClauseKind int

const (
	KindCompress ClauseKind = iota
	KindTablespace
	KindPctfree
	KindInitrans
	KindMaxtrans
	KindStorage
	KindPartitionByRange
	KindInterval
	KindSubpartitionByHash
	KindSubpartitionSpec
	KindInitialPartition
	KindRowMovement
)

// Clause is one rendered physical clause tagged with its position in
// the total order.
type Clause struct {
	Kind ClauseKind
	Text string
}

// ClauseList collects the physical clauses of one CREATE TABLE
// statement. Each kind may appear at most once.
type ClauseList struct {
	clauses []Clause
}

// Add appends a clause. Adding a second clause of the same kind is a
// programming error and is reported so the compiler can abort the table.
func (l *ClauseList) Add(kind ClauseKind, text string) error {
	for _, c := range l.clauses {
		if c.Kind == kind {
			return fmt.Errorf("duplicate clause of kind %d", kind)
		}
	}
	l.clauses = append(l.clauses, Clause{Kind: kind, Text: text})
	return nil
}

// Render emits the clauses in the fixed total order, one per line.
// Insertion order does not matter; the order is a property of the kind.
func (l *ClauseList) Render() string {
	sorted := make([]Clause, len(l.clauses))
	copy(sorted, l.clauses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind < sorted[j].Kind
	})

	lines := make([]string, len(sorted))
	for i, c := range sorted {
		lines[i] = c.Text
	}
	return strings.Join(lines, "\n")
}
