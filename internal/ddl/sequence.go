package ddl

import (
	"context"
	"database/sql"
	"fmt"

	"mysql2pg/internal/core"
)

// Sequence emits §4.E step 4 for the table's single auto-increment
// column, if it has one: CREATE SEQUENCE, SET DEFAULT NEXTVAL, ALTER
// SEQUENCE ... OWNED BY, then SETVAL to the current max value. If any step
// fails the remaining steps are skipped for that column, but since every
// step here is independently non-fatal the table itself stays usable.
func Sequence(ctx context.Context, dest *sql.DB, schema string, t *core.SourceTable) []core.DDLStep {
	col := t.AutoIncrementColumn()
	if col == nil {
		return nil
	}

	qualified := QuoteQualified(schema, t.Name)
	colQuoted := QuoteIdentifier(col.Field)
	seqName := fmt.Sprintf("%s_%s_seq", t.Name, col.Field)
	seqQualified := QuoteQualified(schema, seqName)

	var steps []core.DDLStep

	step := execStep(ctx, dest, fmt.Sprintf("CREATE SEQUENCE %s", seqQualified), false)
	steps = append(steps, step)
	if !step.Ok() {
		return steps
	}

	step = execStep(ctx, dest,
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT NEXTVAL('%s')", qualified, colQuoted, sequenceLiteral(schema, seqName)),
		false)
	steps = append(steps, step)
	if !step.Ok() {
		return steps
	}

	step = execStep(ctx, dest,
		fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s.%s", seqQualified, qualified, colQuoted),
		false)
	steps = append(steps, step)
	if !step.Ok() {
		return steps
	}

	step = execStep(ctx, dest,
		fmt.Sprintf("SELECT SETVAL('%s', (SELECT MAX(%s) FROM %s))", sequenceLiteral(schema, seqName), colQuoted, qualified),
		false)
	steps = append(steps, step)

	return steps
}

// sequenceLiteral renders the schema-qualified sequence name the way
// NEXTVAL/SETVAL expect it: a regclass string literal, double-quoted
// internally so case is preserved, single-quoted by the caller's %s format.
func sequenceLiteral(schema, name string) string {
	return QuoteQualified(schema, name)
}
