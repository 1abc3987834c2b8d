package ddl

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql2pg/internal/core"
)

func newTestTable() *core.SourceTable {
	return &core.SourceTable{
		Name: "users",
		Columns: []*core.Column{
			{Field: "id", RawType: "int(11) unsigned", Nullable: false, Extra: "auto_increment"},
			{Field: "name", RawType: "varchar(255)", Nullable: true},
		},
		Comment: "application users",
	}
}

func TestCreateTable_SucceedsAndEmitsComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE "public"\."users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`COMMENT ON TABLE "public"\."users"`).WillReturnResult(sqlmock.NewResult(0, 0))

	steps := CreateTable(context.Background(), db, "public", newTestTable())
	require.Len(t, steps, 2)
	assert.True(t, steps[0].Ok())
	assert.True(t, steps[1].Ok())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable_FailureIsFatalAndSkipsComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(assert.AnError)

	steps := CreateTable(context.Background(), db, "public", newTestTable())
	require.Len(t, steps, 1)
	assert.False(t, steps[0].Ok())
	assert.True(t, steps[0].Fatal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildCreateTable_UnsupportedColumnTypeFailsBeforeAnyExec(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tbl := &core.SourceTable{Name: "t", Columns: []*core.Column{{Field: "x", RawType: "nclob"}}}
	steps := CreateTable(context.Background(), db, "public", tbl)
	require.Len(t, steps, 1)
	assert.False(t, steps[0].Ok())
	assert.True(t, steps[0].Fatal)
}
