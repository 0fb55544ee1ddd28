package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder helps construct PostgreSQL queries dynamically.
// Conditions are written with "?" markers which Build numbers as $1, $2, ...
type SQLBuilder struct {
	table      string
	columns    []string
	rows       [][]interface{}
	conditions []condition
	joins      []string
	orderBy    []string
	limit      int
	offset     int
	setCols    []string
	setArgs    []interface{}
	returning  []string
	conflict   string
	isInsert   bool
	isUpdate   bool
	isDelete   bool
	isSelect   bool
}

// condition is one WHERE term and the connective that joins it to the previous term.
type condition struct {
	conj  string
	sql   string
	args  []interface{}
	group *SQLBuilder
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.isUpdate = true
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.isDelete = true
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set specifies the columns and values for update.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Values adds one row of values for insertion. Call it repeatedly for a multi-row insert.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflictDoNothing makes an insert skip rows that violate a unique constraint.
func (b *SQLBuilder) OnConflictDoNothing(target ...string) *SQLBuilder {
	b.conflict = "ON CONFLICT"
	if len(target) > 0 {
		b.conflict += " (" + strings.Join(target, ", ") + ")"
	}
	b.conflict += " DO NOTHING"
	return b
}

// Returning adds a RETURNING clause to insert, update and delete statements.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// Where adds a condition joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.conditions = append(b.conditions, condition{conj: "AND", sql: cond, args: args})
	return b
}

// Or adds a condition joined with OR.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.conditions = append(b.conditions, condition{conj: "OR", sql: cond, args: args})
	return b
}

// WhereGroup adds a parenthesized group joined with AND.
// The provided function receives a new SQLBuilder for building the grouped conditions.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	return b.group("AND", fn)
}

// OrGroup adds a parenthesized group joined with OR.
func (b *SQLBuilder) OrGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	return b.group("OR", fn)
}

func (b *SQLBuilder) group(conj string, fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	g := fn(NewSQLBuilder())
	if g == nil || len(g.conditions) == 0 {
		return b
	}
	b.conditions = append(b.conditions, condition{conj: conj, group: g})
	return b
}

// WhereRaw adds a raw SQL condition with arguments, joined with AND.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	return b.Where(sql, args...)
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// It rejects conditions whose "?" markers don't match their arguments and
// insert rows whose width doesn't match the column list.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	if err := b.validate(); err != nil {
		return "", nil, err
	}
	sql, args := b.Build()
	return sql, args, nil
}

func (b *SQLBuilder) validate() error {
	if b.table == "" {
		return fmt.Errorf("no table specified")
	}
	if b.isInsert {
		if len(b.rows) == 0 {
			return fmt.Errorf("insert into %s has no values", b.table)
		}
		for i, row := range b.rows {
			if len(row) != len(b.columns) {
				return fmt.Errorf("row %d has %d values for %d columns", i+1, len(row), len(b.columns))
			}
		}
	}
	if b.isUpdate && len(b.setCols) == 0 {
		return fmt.Errorf("update of %s sets no columns", b.table)
	}
	return validateConditions(b.conditions)
}

func validateConditions(conds []condition) error {
	for _, c := range conds {
		if c.group != nil {
			if err := validateConditions(c.group.conditions); err != nil {
				return err
			}
			continue
		}
		if n := strings.Count(c.sql, "?"); n != len(c.args) {
			return fmt.Errorf("placeholder count (%d) does not match argument count (%d) in %q", n, len(c.args), c.sql)
		}
	}
	return nil
}

// Build constructs the final SQL string and arguments. It does not modify the builder.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case b.isSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case b.isInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES ")
		tuples := make([]string, len(b.rows))
		for i, row := range b.rows {
			placeholders := make([]string, len(row))
			for j, v := range row {
				placeholders[j] = next(v)
			}
			tuples[i] = "(" + strings.Join(placeholders, ", ") + ")"
		}
		sb.WriteString(strings.Join(tuples, ", "))
		if b.conflict != "" {
			sb.WriteString(" ")
			sb.WriteString(b.conflict)
		}
		b.writeReturning(&sb)
		return sb.String(), args
	case b.isUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.setCols))
		for i, col := range b.setCols {
			setClauses[i] = fmt.Sprintf("%s = %s", col, next(b.setArgs[i]))
		}
		sb.WriteString(strings.Join(setClauses, ", "))
	case b.isDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(renderConditions(b.conditions, next))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	if b.isUpdate || b.isDelete {
		b.writeReturning(&sb)
	}

	return sb.String(), args
}

func (b *SQLBuilder) writeReturning(sb *strings.Builder) {
	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}
}

func renderConditions(conds []condition, next func(interface{}) string) string {
	var sb strings.Builder
	for i, c := range conds {
		if i > 0 {
			sb.WriteString(" " + c.conj + " ")
		}
		if c.group != nil {
			sb.WriteString("(" + renderConditions(c.group.conditions, next) + ")")
			continue
		}
		sb.WriteString(numberPlaceholders(c.sql, c.args, next))
	}
	return sb.String()
}

// numberPlaceholders replaces each "?" with the next positional marker.
// Surplus markers are left as-is; BuildSafe reports them.
func numberPlaceholders(sql string, args []interface{}, next func(interface{}) string) string {
	parts := strings.Split(sql, "?")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			if i < len(args) {
				sb.WriteString(next(args[i]))
			} else {
				sb.WriteString("?")
			}
		}
	}
	return sb.String()
}
