package ddl

import (
	"context"
	"database/sql"
	"fmt"

	"mysql2pg/internal/core"
)

// Deferred emits §4.E step 3 for every column of t: NOT NULL, DEFAULT,
// the enum CHECK constraint, and the column comment. Every statement here
// is independently non-fatal: a failure on one column's DEFAULT does not
// prevent the next column's COMMENT from being attempted.
func Deferred(ctx context.Context, dest *sql.DB, schema string, t *core.SourceTable) []core.DDLStep {
	var steps []core.DDLStep
	qualified := QuoteQualified(schema, t.Name)

	for _, c := range t.Columns {
		col := QuoteIdentifier(c.Field)

		if !c.Nullable {
			sqlText := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", qualified, col)
			steps = append(steps, execStep(ctx, dest, sqlText, false))
		}

		if c.Default != nil {
			sqlText := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", qualified, col, mapDefaultExpr(*c.Default))
			steps = append(steps, execStep(ctx, dest, sqlText, false))
		}

		if enumList := extractEnumList(c.RawType); enumList != "" {
			sqlText := fmt.Sprintf("ALTER TABLE %s ADD CHECK (%s IN (%s))", qualified, col, enumList)
			steps = append(steps, execStep(ctx, dest, sqlText, false))
		}

		if c.Comment != "" {
			sqlText := fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", qualified, col, QuoteString(c.Comment))
			steps = append(steps, execStep(ctx, dest, sqlText, false))
		}
	}

	return steps
}
