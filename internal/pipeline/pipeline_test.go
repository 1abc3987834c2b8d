package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql2pg/internal/rowencode"
)

func TestFieldToArg_NullBecomesNilArg(t *testing.T) {
	assert.Nil(t, fieldToArg(rowencode.Field{Null: true}))
}

func TestFieldToArg_HexBinaryIsDecodedToBytes(t *testing.T) {
	arg := fieldToArg(rowencode.Field{HexBinary: true, Value: "deadbeef"})
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, arg)
}

func TestFieldToArg_PlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "hello", fieldToArg(rowencode.Field{Value: "hello"}))
}

func TestValidEncoding_RejectsInvalidUTF8(t *testing.T) {
	assert.False(t, validEncoding(string([]byte{0xff, 0xfe}), "UTF-8"))
	assert.True(t, validEncoding("hello", "UTF-8"))
}

func TestValidEncoding_NonUTF8TargetSkipsValidation(t *testing.T) {
	assert.True(t, validEncoding(string([]byte{0xff, 0xfe}), "LATIN1"))
}

func TestLogRejectedRow_WritesMarkerAndLine(t *testing.T) {
	var buf bytes.Buffer
	logRejectedRow(&buf, "orders", "1\t\\N")
	assert.Contains(t, buf.String(), "orders")
	assert.Contains(t, buf.String(), "1\t\\N")
}

func TestLogRejectedRow_NilWriterIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() { logRejectedRow(nil, "orders", "x") })
}

// TestCopyChunk_BadRowIsolation drives the §8.9 property directly: a
// 100-row chunk whose bulk COPY fails falls back to copying one row per
// transaction, isolating the single bad row instead of losing the whole
// chunk.
func TestCopyChunk_BadRowIsolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	const rowCount = 100
	const badRow = 42

	chunk := make([][]rowencode.Field, rowCount)
	for i := range chunk {
		chunk[i] = []rowencode.Field{{Value: fmt.Sprintf("row-%d", i)}}
	}

	// The bulk attempt fails on its first streamed row and rolls back
	// without ever reaching the final flush exec.
	mock.ExpectBegin()
	mock.ExpectPrepare(`COPY`)
	mock.ExpectExec(`COPY`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	// copyChunk then retries every row in its own transaction; only the
	// designated bad row fails.
	for i := 0; i < rowCount; i++ {
		mock.ExpectBegin()
		mock.ExpectPrepare(`COPY`)
		if i == badRow {
			mock.ExpectExec(`COPY`).WillReturnError(assert.AnError)
			mock.ExpectRollback()
			continue
		}
		mock.ExpectExec(`COPY`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`COPY`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	var reject bytes.Buffer
	attempted, failed, err := copyChunk(context.Background(), db, "public", "orders", []string{"v"}, chunk, &reject, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(rowCount), attempted)
	assert.Equal(t, int64(1), failed)
	assert.Contains(t, reject.String(), "orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}
