// Package core contains the single source of truth for a migration run: the
// in-memory representation of everything discovered on the MySQL source and
// everything planned for the PostgreSQL destination. All other packages
// operate on these types rather than on raw database rows.
package core

import (
	"fmt"
	"strings"
)

// TableKind distinguishes a base table from a view during discovery.
type TableKind string

const (
	KindBaseTable TableKind = "BASE_TABLE"
	KindView      TableKind = "VIEW"
)

// SourceTable is a table or view as discovered on the MySQL source.
// Populated once during discovery and treated as immutable thereafter.
type SourceTable struct {
	Name        string
	Kind        TableKind
	Columns     []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
	Comment     string
	RowCount    int64
	SizeMB      float64

	// ViewDefinition holds the MySQL `Create View` text (second column of
	// SHOW CREATE VIEW). Empty for base tables.
	ViewDefinition string
}

// Column is a single MySQL column as reported by SHOW FULL COLUMNS /
// information_schema.columns.
type Column struct {
	Field    string
	RawType  string // full MySQL type declaration, including "(...)" and unsigned/zerofill
	Nullable bool
	Default  *string
	Extra    string // e.g. "auto_increment"
	Comment  string
}

// IsAutoIncrement reports whether Extra carries MySQL's auto_increment marker.
func (c *Column) IsAutoIncrement() bool {
	return strings.Contains(c.Extra, "auto_increment")
}

// IndexMethod is the MySQL index algorithm reported by SHOW INDEX.
type IndexMethod string

const (
	IndexBTree    IndexMethod = "BTREE"
	IndexHash     IndexMethod = "HASH"
	IndexSpatial  IndexMethod = "SPATIAL"
	IndexFullText IndexMethod = "FULLTEXT"
)

// Index is a MySQL index collapsed from the (possibly many) SHOW INDEX rows
// that share a Key_name into one entry with ordered columns.
// KeyName == "PRIMARY" denotes the primary key.
type Index struct {
	KeyName  string
	IsUnique bool
	Method   IndexMethod
	Columns  []string // ordered by Seq_in_index
}

// ForeignKey is a single foreign key constraint on a source table.
type ForeignKey struct {
	ConstraintName string
	Columns        []string
	RefTable       string
	RefColumns     []string
	OnUpdate       string
	OnDelete       string
}

// MappedType is the result of the type mapper: a PostgreSQL column type
// spelling ready to splice into a CREATE TABLE statement.
type MappedType struct {
	PgType          string
	HasLengthSuffix bool
}

// MigrationPlan is the resolved configuration for a single migration run.
type MigrationPlan struct {
	TargetSchemaName string
	Tables           []*SourceTable
	Views            []*SourceTable
	ChunkTargetMB    float64
}

// SummaryRow is one line of the final migration report, appended once per
// table.
type SummaryRow struct {
	QualifiedTableName string
	RowsAttempted      int64
	RowsFailed         int64
	ElapsedSeconds     float64
}

// String renders a SourceTable for diagnostic logging.
func (t *SourceTable) String() string {
	return fmt.Sprintf("%s %s (%d cols, %d indexes, %d fks, ~%d rows)",
		t.Kind, t.Name, len(t.Columns), len(t.Indexes), len(t.ForeignKeys), t.RowCount)
}

// FindColumn looks for a column by name inside a table.
func (t *SourceTable) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Field == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the table's primary key index, or nil if none.
func (t *SourceTable) PrimaryKey() *Index {
	for _, idx := range t.Indexes {
		if idx.KeyName == "PRIMARY" {
			return idx
		}
	}
	return nil
}

// AutoIncrementColumn returns the table's single auto_increment column, or
// nil. MySQL permits at most one per table.
func (t *SourceTable) AutoIncrementColumn() *Column {
	for _, c := range t.Columns {
		if c.IsAutoIncrement() {
			return c
		}
	}
	return nil
}
