package discover

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql2pg/internal/core"
)

func TestNextCandidate_FirstCollisionAppendsUnderscoreOne(t *testing.T) {
	assert.Equal(t, "shop_1", nextCandidate("shop"))
}

func TestNextCandidate_SubsequentCollisionIncrementsCounter(t *testing.T) {
	assert.Equal(t, "shop_2", nextCandidate("shop_1"))
	assert.Equal(t, "shop_10", nextCandidate("shop_9"))
}

func TestCollapseIndexes_GroupsByKeyNamePreservingSeqOrder(t *testing.T) {
	entries := []indexColumnRow{
		{keyName: "PRIMARY", nonUnique: false, indexType: "BTREE", seq: 1, columnName: "id"},
		{keyName: "idx_name_email", nonUnique: true, indexType: "BTREE", seq: 1, columnName: "name"},
		{keyName: "idx_name_email", nonUnique: true, indexType: "BTREE", seq: 2, columnName: "email"},
	}

	indexes := collapseIndexes(entries)
	require.Len(t, indexes, 2)
	assert.Equal(t, "PRIMARY", indexes[0].KeyName)
	assert.True(t, indexes[0].IsUnique)
	assert.Equal(t, []string{"name", "email"}, indexes[1].Columns)
	assert.False(t, indexes[1].IsUnique)
}

func TestCollapseIndexes_MapsMySQLIndexTypes(t *testing.T) {
	entries := []indexColumnRow{
		{keyName: "s", nonUnique: true, indexType: "SPATIAL", seq: 1, columnName: "geo"},
		{keyName: "f", nonUnique: true, indexType: "FULLTEXT", seq: 1, columnName: "body"},
	}
	indexes := collapseIndexes(entries)
	assert.Equal(t, core.IndexSpatial, indexes[0].Method)
	assert.Equal(t, core.IndexFullText, indexes[1].Method)
}

func TestCollapseForeignKeys_GroupsMultiColumnKeys(t *testing.T) {
	entries := []fkColumnRow{
		{constraintName: "fk_order_item", columnName: "order_id", refTable: "orders", refColumn: "id", onUpdate: "CASCADE", onDelete: "RESTRICT"},
		{constraintName: "fk_order_item", columnName: "item_id", refTable: "orders", refColumn: "item_ref", onUpdate: "CASCADE", onDelete: "RESTRICT"},
	}
	fks := collapseForeignKeys(entries)
	require.Len(t, fks, 1)
	assert.Equal(t, []string{"order_id", "item_id"}, fks[0].Columns)
	assert.Equal(t, []string{"id", "item_ref"}, fks[0].RefColumns)
}

func TestResolveSchemaName_ReusesExistingOperatorSuppliedSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT schema_name FROM information_schema.schemata`).
		WithArgs("migrated").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("migrated"))

	d := &Discoverer{Dest: db}
	name, exists, err := d.ResolveSchemaName(context.Background(), "migrated", "shop")
	require.NoError(t, err)
	assert.Equal(t, "migrated", name)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveSchemaName_ProbesNextCandidateAndReturnsProbeError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT schema_name FROM information_schema.schemata`).
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("shop"))
	mock.ExpectQuery(`SELECT schema_name FROM information_schema.schemata`).
		WithArgs("shop_1").
		WillReturnError(errors.New("connection reset"))

	d := &Discoverer{Dest: db}
	_, _, err = d.ResolveSchemaName(context.Background(), "", "shop")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
