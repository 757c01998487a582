package postgres

import (
	"fmt"
	"strings"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// updateBuilder assembles a partial UPDATE statement from a fixed-order
// sequence of Set calls. Every value is bound positionally; the builder
// never places a value into the SQL text.
type updateBuilder struct {
	table       string
	assignments []string
	args        []any
}

func newUpdateBuilder(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

// Set appends a column assignment bound to the next positional placeholder.
func (b *updateBuilder) Set(column string, value any) {
	b.args = append(b.args, value)
	b.assignments = append(b.assignments, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// Bind adds a value to the argument list without an assignment and returns
// its placeholder, for use in WHERE or FROM clauses.
func (b *updateBuilder) Bind(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// Empty reports whether no assignments have been made yet.
func (b *updateBuilder) Empty() bool {
	return len(b.assignments) == 0
}

// Build produces the final statement by joining the assignments and
// appending tail (WHERE/FROM/RETURNING). An update with zero assignments is
// rejected rather than emitting invalid SQL.
func (b *updateBuilder) Build(tail string) (string, []any, error) {
	if len(b.assignments) == 0 {
		return "", nil, simplecms.ErrEmptyUpdate
	}
	query := fmt.Sprintf("UPDATE %s SET %s %s", b.table, strings.Join(b.assignments, ", "), tail)
	return query, b.args, nil
}
