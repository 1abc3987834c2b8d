package pipeline

import (
	"fmt"
	"strings"

	"mysql2pg/internal/core"
)

// projectedColumn is one column of the shaped SELECT: the column name,
// and whether the result should be treated by the row encoder as
// already-hex binary (so it gets a \x prefix, not escaping). The SQL
// projection text itself is returned separately by buildProjection.
type projectedColumn struct {
	field     string
	hexBinary bool
}

var spatialTypes = map[string]bool{
	"geometry": true, "point": true, "linestring": true, "polygon": true,
}

var binaryTypes = map[string]bool{
	"binary": true, "varbinary": true, "blob": true,
	"tinyblob": true, "mediumblob": true, "longblob": true,
}

var temporalTypes = map[string]bool{
	"timestamp": true, "date": true, "datetime": true,
}

// buildProjection implements §4.F point 2: per-column SELECT shaping so
// the values MySQL returns are already in the shape the row encoder
// expects, instead of teaching the encoder about MySQL column kinds.
func buildProjection(t *core.SourceTable) ([]projectedColumn, string) {
	cols := make([]projectedColumn, len(t.Columns))
	exprs := make([]string, len(t.Columns))

	for i, c := range t.Columns {
		base := bareBaseType(c.RawType)
		quoted := "`" + c.Field + "`"

		switch {
		case spatialTypes[base]:
			exprs[i] = fmt.Sprintf("HEX(ST_AsWKB(%s)) AS %s", quoted, quoted)
			cols[i] = projectedColumn{field: c.Field, hexBinary: true}
		case base == "bit":
			exprs[i] = fmt.Sprintf("BIN(%s) AS %s", quoted, quoted)
			cols[i] = projectedColumn{field: c.Field}
		case temporalTypes[base]:
			exprs[i] = fmt.Sprintf(
				"IF(%s IN ('0000-00-00','0000-00-00 00:00:00'), '-INFINITY', %s) AS %s",
				quoted, quoted, quoted)
			cols[i] = projectedColumn{field: c.Field}
		case binaryTypes[base]:
			exprs[i] = fmt.Sprintf("HEX(%s) AS %s", quoted, quoted)
			cols[i] = projectedColumn{field: c.Field, hexBinary: true}
		default:
			exprs[i] = quoted
			cols[i] = projectedColumn{field: c.Field}
		}
	}

	return cols, strings.Join(exprs, ", ")
}

func bareBaseType(rawType string) string {
	lower := strings.ToLower(strings.TrimSpace(rawType))
	if i := strings.IndexAny(lower, "( "); i >= 0 {
		return lower[:i]
	}
	return lower
}
