package discover

import (
	"context"

	"mysql2pg/internal/core"
)

type fkColumnRow struct {
	constraintName string
	columnName     string
	refTable       string
	refColumn      string
	onUpdate       string
	onDelete       string
}

// introspectForeignKeys joins KEY_COLUMN_USAGE (for the column mapping)
// with REFERENTIAL_CONSTRAINTS (for the ON UPDATE/ON DELETE rules), the
// same pairing the DDL Emitter's global foreign-key phase (§4.E point 6)
// is specified to query directly; discovery runs it once up front so the
// emitter never touches the source connection again once data load begins.
func (d *Discoverer) introspectForeignKeys(ctx context.Context, mysqlDBName string, t *core.SourceTable) error {
	rows, err := d.Source.QueryContext(ctx, `
		SELECT
			k.constraint_name,
			k.column_name,
			k.referenced_table_name,
			k.referenced_column_name,
			r.update_rule,
			r.delete_rule
		FROM information_schema.key_column_usage k
		JOIN information_schema.referential_constraints r
			ON r.constraint_schema = k.constraint_schema
			AND r.constraint_name = k.constraint_name
		WHERE k.table_schema = ? AND k.table_name = ? AND k.referenced_table_name IS NOT NULL
		ORDER BY k.constraint_name, k.ordinal_position
	`, mysqlDBName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var entries []fkColumnRow
	for rows.Next() {
		var e fkColumnRow
		if err := rows.Scan(&e.constraintName, &e.columnName, &e.refTable, &e.refColumn, &e.onUpdate, &e.onDelete); err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.ForeignKeys = collapseForeignKeys(entries)
	return nil
}

func collapseForeignKeys(entries []fkColumnRow) []*core.ForeignKey {
	order := make([]string, 0)
	byName := make(map[string]*core.ForeignKey)

	for _, e := range entries {
		fk, ok := byName[e.constraintName]
		if !ok {
			fk = &core.ForeignKey{
				ConstraintName: e.constraintName,
				RefTable:       e.refTable,
				OnUpdate:       e.onUpdate,
				OnDelete:       e.onDelete,
			}
			byName[e.constraintName] = fk
			order = append(order, e.constraintName)
		}
		fk.Columns = append(fk.Columns, e.columnName)
		fk.RefColumns = append(fk.RefColumns, e.refColumn)
	}

	result := make([]*core.ForeignKey, 0, len(order))
	for _, name := range order {
		result = append(result, byName[name])
	}
	return result
}
