package ddl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mysql2pg/internal/core"
)

// Index emits §4.E step 5: one statement per index, grouped by Key_name
// with column order already preserved by the discoverer. PRIMARY becomes
// ADD PRIMARY KEY; unique indexes become named UNIQUE constraints;
// everything else becomes a CREATE INDEX with a best-effort access method.
func Index(ctx context.Context, dest *sql.DB, schema string, t *core.SourceTable) []core.DDLStep {
	var steps []core.DDLStep
	qualified := QuoteQualified(schema, t.Name)
	counter := 0

	for _, idx := range t.Indexes {
		cols := quoteColumnList(idx.Columns)

		if idx.KeyName == "PRIMARY" {
			sqlText := fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", qualified, cols)
			steps = append(steps, execStep(ctx, dest, sqlText, false))
			continue
		}

		counter++
		name := indexName(schema, t.Name, idx.Columns[0], counter)

		if idx.IsUnique {
			sqlText := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)", qualified, QuoteIdentifier(name), cols)
			steps = append(steps, execStep(ctx, dest, sqlText, false))
			continue
		}

		method := pgIndexMethod(idx.Method)
		sqlText := fmt.Sprintf("CREATE INDEX %s ON %s USING %s (%s)", QuoteIdentifier(name), qualified, method, cols)
		steps = append(steps, execStep(ctx, dest, sqlText, false))
	}

	return steps
}

func indexName(schema, table, firstCol string, counter int) string {
	return fmt.Sprintf("%s_%s_%s%d_idx", schema, table, firstCol, counter)
}

func pgIndexMethod(m core.IndexMethod) string {
	switch m {
	case core.IndexSpatial:
		return "GIST"
	case core.IndexFullText:
		return "GIN"
	case core.IndexHash:
		return "HASH"
	default:
		return "BTREE"
	}
}

func quoteColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}
