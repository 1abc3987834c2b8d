package ddl

import (
	"context"
	"database/sql"
	"fmt"

	"mysql2pg/internal/core"
)

// ForeignKey emits §4.E step 6, run only in the orchestrator's global
// final phase (§2G) once every table exists: one ALTER TABLE ... ADD
// FOREIGN KEY per constraint, with column order preserved from discovery.
func ForeignKey(ctx context.Context, dest *sql.DB, schema string, t *core.SourceTable) []core.DDLStep {
	var steps []core.DDLStep
	qualified := QuoteQualified(schema, t.Name)

	for _, fk := range t.ForeignKeys {
		sqlText := fmt.Sprintf(
			"ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s",
			qualified,
			quoteColumnList(fk.Columns),
			QuoteQualified(schema, fk.RefTable),
			quoteColumnList(fk.RefColumns),
			referentialRule(fk.OnUpdate),
			referentialRule(fk.OnDelete),
		)
		steps = append(steps, execStep(ctx, dest, sqlText, false))
	}

	return steps
}

// referentialRule passes MySQL's ON UPDATE/ON DELETE rule through: both
// dialects share the same five keywords (CASCADE, SET NULL, SET DEFAULT,
// RESTRICT, NO ACTION).
func referentialRule(rule string) string {
	if rule == "" {
		return "NO ACTION"
	}
	return rule
}
