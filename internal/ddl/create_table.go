package ddl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mysql2pg/internal/core"
	"mysql2pg/internal/migerr"
	"mysql2pg/internal/typemap"
)

// CreateTable emits §4.E step 1 (CREATE TABLE) followed by step 2
// (COMMENT ON TABLE, only if the source table carries one). CREATE TABLE
// failure is fatal for the table; a failing COMMENT is not.
func CreateTable(ctx context.Context, dest *sql.DB, schema string, t *core.SourceTable) []core.DDLStep {
	sqlText, err := buildCreateTable(schema, t)
	if err != nil {
		return []core.DDLStep{{SQL: sqlText, Err: err, Fatal: true}}
	}

	steps := []core.DDLStep{execStep(ctx, dest, sqlText, true)}
	if !steps[0].Ok() {
		return steps
	}

	if t.Comment != "" {
		commentSQL := fmt.Sprintf("COMMENT ON TABLE %s IS %s", QuoteQualified(schema, t.Name), QuoteString(t.Comment))
		steps = append(steps, execStep(ctx, dest, commentSQL, false))
	}
	return steps
}

func buildCreateTable(schema string, t *core.SourceTable) (string, error) {
	var cols []string
	for _, c := range t.Columns {
		mapped, err := typemap.Map(c.RawType)
		if err != nil {
			return "", migerr.New(migerr.CodeUnsupportedType, "", "mapping column "+t.Name+"."+c.Field, err)
		}
		cols = append(cols, fmt.Sprintf("%s %s", QuoteIdentifier(c.Field), strings.TrimSpace(mapped.PgType)))
	}

	sqlText := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteQualified(schema, t.Name), strings.Join(cols, ", "))
	return sqlText, nil
}

func execStep(ctx context.Context, dest *sql.DB, sqlText string, fatal bool) core.DDLStep {
	_, err := dest.ExecContext(ctx, sqlText)
	if err != nil {
		code := migerr.CodeDeferredDDL
		if fatal {
			code = migerr.CodeTableCreate
		}
		return core.DDLStep{SQL: sqlText, Err: migerr.New(code, sqlText, "executing DDL", err), Fatal: fatal}
	}
	return core.DDLStep{SQL: sqlText}
}
