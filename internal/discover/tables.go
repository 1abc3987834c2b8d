package discover

import (
	"context"
	"math"

	"mysql2pg/internal/core"
)

// introspectTableMeta fills in the facts the Data Pipeline's chunk sizing
// (§4.F point 1) and the DDL Emitter's COMMENT ON TABLE (§4.E point 2)
// need: comment, row count and size in MB, following the teacher's own
// tables.go query against information_schema.tables.
func (d *Discoverer) introspectTableMeta(ctx context.Context, mysqlDBName string, t *core.SourceTable) error {
	row := d.Source.QueryRowContext(ctx, `
		SELECT
			table_comment,
			table_rows,
			(data_length + index_length) / 1024 / 1024 AS size_mb
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`, mysqlDBName, t.Name)

	var comment string
	var approxRows int64
	var sizeMB float64
	if err := row.Scan(&comment, &approxRows, &sizeMB); err != nil {
		return err
	}

	t.Comment = comment
	t.SizeMB = math.Max(sizeMB, 1)

	var exactRows int64
	countRow := d.Source.QueryRowContext(ctx, "SELECT COUNT(*) FROM `"+mysqlDBName+"`.`"+t.Name+"`")
	if err := countRow.Scan(&exactRows); err != nil {
		return err
	}
	t.RowCount = exactRows

	return nil
}
