// Package pipeline is the Data Pipeline (spec component F): it chunks a
// single table by size, streams it out of MySQL with the projection from
// shape.go, holds each row as internal/rowencode fields, and bulk-loads it
// into PostgreSQL with lib/pq's native COPY FROM STDIN, falling back to a
// row-by-row retry when a chunk as a whole is rejected. rowencode's COPY
// text form is used only for the rejected-row log.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"

	"mysql2pg/internal/core"
	"mysql2pg/internal/metrics"
	"mysql2pg/internal/migerr"
	"mysql2pg/internal/rowencode"
)

// Options configures one table's run through the pipeline.
type Options struct {
	ChunkTargetMB float64
	Encoding      string // e.g. "UTF-8"; only UTF-8 is validated today
	// RejectWriter receives rejected-row diagnostics: for every dropped row,
	// a marker line naming the table followed by the row, per §4.F point 5.
	RejectWriter io.Writer
	// Metrics is optional; when set, chunks-failed-over-to-row-retry are
	// counted on it. A nil Metrics disables counting, for callers (tests)
	// that don't need it wired.
	Metrics *metrics.Metrics
}

// Run migrates all rows of t from source into schema.t.Name on dest,
// returning a SummaryRow for the final report.
func Run(ctx context.Context, source, dest *sql.DB, schema string, t *core.SourceTable, opts Options) (summary core.SummaryRow, err error) {
	summary = core.SummaryRow{QualifiedTableName: fmt.Sprintf("%s.%s", schema, t.Name)}
	start := time.Now()
	defer func() { summary.ElapsedSeconds = time.Since(start).Seconds() }()

	plan := ComputeChunkPlan(t.SizeMB, t.RowCount, opts.ChunkTargetMB)
	cols, projection := buildProjection(t)
	fieldNames := make([]string, len(cols))
	for i, c := range cols {
		fieldNames[i] = c.field
	}

	query := fmt.Sprintf("SELECT %s FROM `%s`", projection, t.Name)
	rows, queryErr := source.QueryContext(ctx, query)
	if queryErr != nil {
		return summary, migerr.New(migerr.CodeDataRow, query, "streaming select for "+t.Name, queryErr)
	}
	defer rows.Close()

	if _, execErr := dest.ExecContext(ctx, "SET synchronous_commit=off"); execErr != nil {
		return summary, migerr.New(migerr.CodeConnect, "", "setting synchronous_commit off", execErr)
	}

	scanDest := make([]sql.NullString, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range scanDest {
		scanArgs[i] = &scanDest[i]
	}

	var chunk [][]rowencode.Field

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		// The copy runs on a context detached from cancellation, so a chunk
		// already being delivered finishes even after ctx is cancelled.
		attempted, failed, flushErr := copyChunk(context.WithoutCancel(ctx), dest, schema, t.Name, fieldNames, chunk, opts.RejectWriter, opts.Metrics)
		summary.RowsAttempted += attempted
		summary.RowsFailed += failed
		chunk = chunk[:0]
		return flushErr
	}

	for rows.Next() {
		if scanErr := rows.Scan(scanArgs...); scanErr != nil {
			return summary, migerr.New(migerr.CodeDataRow, query, "scanning row for "+t.Name, scanErr)
		}

		fields := make([]rowencode.Field, len(cols))
		for i, c := range cols {
			if !scanDest[i].Valid {
				fields[i] = rowencode.Field{Null: true}
				continue
			}
			value := scanDest[i].String
			if !c.hexBinary && !validEncoding(value, opts.Encoding) {
				summary.RowsAttempted++
				summary.RowsFailed++
				logRejectedRow(opts.RejectWriter, t.Name, "invalid encoding: "+value)
				fields = nil
				break
			}
			fields[i] = rowencode.Field{Value: value, HexBinary: c.hexBinary}
		}
		if fields == nil {
			continue
		}

		chunk = append(chunk, fields)
		if int64(len(chunk)) >= plan.RowsPerChunk {
			if flushErr := flush(); flushErr != nil {
				return summary, flushErr
			}
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return summary, migerr.New(migerr.CodeDataRow, query, "reading rows for "+t.Name, rowsErr)
	}
	if flushErr := flush(); flushErr != nil {
		return summary, flushErr
	}

	return summary, nil
}

// validEncoding checks non-null text fields against the configured target
// encoding. Only UTF-8 is validated: no library in the dependency pack
// does general charset transcoding (see DESIGN.md), so a field that fails
// validation is dropped rather than transcoded.
func validEncoding(value, encoding string) bool {
	if !strings.EqualFold(encoding, "UTF-8") {
		return true
	}
	return utf8.ValidString(value)
}

// copyChunk delivers one chunk via COPY FROM STDIN inside its own
// transaction (synchronous_commit was already turned off for the
// session). On failure it falls back to copying the chunk's rows one at a
// time, per §4.F point 5.
func copyChunk(ctx context.Context, dest *sql.DB, schema, table string, fieldNames []string, chunk [][]rowencode.Field, reject io.Writer, m *metrics.Metrics) (attempted, failed int64, err error) {
	attempted = int64(len(chunk))

	if copyErr := copyRows(ctx, dest, schema, table, fieldNames, chunk); copyErr == nil {
		return attempted, 0, nil
	}

	if m != nil {
		m.ChunksFailed.WithLabelValues(fmt.Sprintf("%s.%s", schema, table)).Inc()
	}

	var rowsFailed int64
	for _, row := range chunk {
		if copyErr := copyRows(ctx, dest, schema, table, fieldNames, [][]rowencode.Field{row}); copyErr != nil {
			rowsFailed++
			logRejectedRow(reject, table, rowencode.EncodeRow(row))
			continue
		}
	}
	return attempted, rowsFailed, nil
}

func copyRows(ctx context.Context, dest *sql.DB, schema, table string, fieldNames []string, rows [][]rowencode.Field) error {
	tx, err := dest.BeginTx(ctx, nil)
	if err != nil {
		return migerr.New(migerr.CodeDataRow, "", "beginning copy transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(schema, table, fieldNames...))
	if err != nil {
		_ = tx.Rollback()
		return migerr.New(migerr.CodeDataRow, "", "preparing COPY for "+table, err)
	}

	for _, row := range rows {
		args := make([]any, len(row))
		for i, f := range row {
			args[i] = fieldToArg(f)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return migerr.New(migerr.CodeDataRow, "", "streaming COPY row for "+table, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return migerr.New(migerr.CodeDataRow, "", "flushing COPY for "+table, err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return migerr.New(migerr.CodeDataRow, "", "closing COPY statement for "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return migerr.New(migerr.CodeDataRow, "", "committing COPY for "+table, err)
	}
	return nil
}

// fieldToArg converts a shaped rowencode.Field into the value pq's COPY
// statement expects: nil for NULL, a decoded byte slice for bytea columns
// (pq encodes a []byte argument as a COPY bytea literal itself), or plain
// text for everything else.
func fieldToArg(f rowencode.Field) any {
	if f.Null {
		return nil
	}
	if f.HexBinary {
		decoded, err := hex.DecodeString(f.Value)
		if err != nil {
			return []byte(nil)
		}
		return decoded
	}
	return f.Value
}

func logRejectedRow(w io.Writer, table, line string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "-- rejected row in %s\n%s\n", table, line)
}
