package discover

import (
	"context"
	"database/sql"

	"mysql2pg/internal/core"
)

// introspectColumns is adapted from the teacher's introspect/mysql/columns.go
// query shape, trimmed to the facts the DDL Emitter and Data Pipeline need:
// raw type text (fed to typemap), nullability, default, extra and comment.
func (d *Discoverer) introspectColumns(ctx context.Context, mysqlDBName string, t *core.SourceTable) error {
	rows, err := d.Source.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.column_comment
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, mysqlDBName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var field, rawType, nullable, extra, comment sql.NullString
		var defaultVal sql.NullString
		if err := rows.Scan(&field, &rawType, &nullable, &defaultVal, &extra, &comment); err != nil {
			return err
		}

		col := &core.Column{
			Field:    field.String,
			RawType:  rawType.String,
			Nullable: nullable.String == "YES",
			Extra:    extra.String,
			Comment:  comment.String,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}

		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}
