package discover

import (
	"context"
	"strings"

	"mysql2pg/internal/core"
)

// indexColumnRow is one row of information_schema.statistics before the
// per-Key_name collapse the teacher's indexes.go did with GROUP_CONCAT; we
// collapse in Go instead so Seq_in_index ordering survives untouched for
// the DDL Emitter (§4.E point 5 requires preserved column order).
type indexColumnRow struct {
	keyName    string
	nonUnique  bool
	indexType  string
	seq        int
	columnName string
}

func (d *Discoverer) introspectIndexes(ctx context.Context, mysqlDBName string, t *core.SourceTable) error {
	rows, err := d.Source.QueryContext(ctx, `
		SELECT index_name, non_unique, index_type, seq_in_index, column_name
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		ORDER BY index_name, seq_in_index
	`, mysqlDBName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var entries []indexColumnRow
	for rows.Next() {
		var keyName, indexType, columnName string
		var nonUnique, seq int
		if err := rows.Scan(&keyName, &nonUnique, &indexType, &seq, &columnName); err != nil {
			return err
		}
		entries = append(entries, indexColumnRow{
			keyName:    keyName,
			nonUnique:  nonUnique != 0,
			indexType:  indexType,
			seq:        seq,
			columnName: columnName,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.Indexes = collapseIndexes(entries)
	return nil
}

// collapseIndexes groups rows by keyName, preserving first-seen order of
// key names and Seq_in_index order within each key.
func collapseIndexes(entries []indexColumnRow) []*core.Index {
	order := make([]string, 0)
	byName := make(map[string]*core.Index)

	for _, e := range entries {
		idx, ok := byName[e.keyName]
		if !ok {
			idx = &core.Index{
				KeyName:  e.keyName,
				IsUnique: !e.nonUnique,
				Method:   normalizeIndexMethod(e.indexType),
			}
			byName[e.keyName] = idx
			order = append(order, e.keyName)
		}
		idx.Columns = append(idx.Columns, e.columnName)
	}

	result := make([]*core.Index, 0, len(order))
	for _, name := range order {
		result = append(result, byName[name])
	}
	return result
}

func normalizeIndexMethod(raw string) core.IndexMethod {
	switch strings.ToUpper(raw) {
	case "HASH":
		return core.IndexHash
	case "FULLTEXT":
		return core.IndexFullText
	case "SPATIAL":
		return core.IndexSpatial
	default:
		return core.IndexBTree
	}
}
