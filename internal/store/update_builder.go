package store

import (
	"fmt"
	"strings"
)

// UpdateBuilder accumulates only the columns a caller actually supplied
// and renders them as one parameterised UPDATE statement.
type UpdateBuilder struct {
	table   string
	sets    []string
	args    []any
	touched []string
}

// NewUpdate starts an UPDATE against table
func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set binds value to column
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// Touch sets column to NOW() whenever at least one other column changes
func (b *UpdateBuilder) Touch(column string) *UpdateBuilder {
	b.touched = append(b.touched, column)
	return b
}

// Len is the number of bound columns
func (b *UpdateBuilder) Len() int {
	return len(b.sets)
}

// Build renders the statement. It returns ErrNoFields when nothing was set.
func (b *UpdateBuilder) Build(idColumn string, id any, returning string) (string, []any, error) {
	if len(b.sets) == 0 {
		return "", nil, ErrNoFields
	}

	sets := append([]string{}, b.sets...)
	for _, col := range b.touched {
		sets = append(sets, col+" = NOW()")
	}

	args := append(append([]any{}, b.args...), id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		b.table, strings.Join(sets, ", "), idColumn, len(args))
	if returning != "" {
		query += " RETURNING " + returning
	}
	return query, args, nil
}
