// Package discover is the schema planner (spec component D). It owns both
// ends of a migration run's connections, resolves the destination schema
// name, and walks MySQL's information_schema to build the core.SourceTable
// graph the DDL Emitter and Data Pipeline operate on. The query shapes
// here are adapted from the teacher's internal/introspect/mysql package,
// which already queried information_schema.columns/statistics/tables for
// the same facts; this package completes what that package left stubbed
// (foreign keys, views, row counts) and retargets the result at core.SourceTable.
package discover

import (
	"context"
	"database/sql"
	"fmt"

	"mysql2pg/internal/core"
	"mysql2pg/internal/migerr"
)

// Discoverer holds the two live connections for one migration run.
type Discoverer struct {
	Source *sql.DB // MySQL
	Dest   *sql.DB // PostgreSQL
}

func New(source, dest *sql.DB) *Discoverer {
	return &Discoverer{Source: source, Dest: dest}
}

// Connect opens and pings both connections, following the teacher's own
// Connect/Close pattern in internal/apply.Applier.
func Connect(ctx context.Context, sourceDriver, sourceDSN, destDriver, destDSN string) (*Discoverer, error) {
	source, err := sql.Open(sourceDriver, sourceDSN)
	if err != nil {
		return nil, migerr.New(migerr.CodeConnect, "", "opening source connection", err)
	}
	if err := source.PingContext(ctx); err != nil {
		return nil, migerr.New(migerr.CodeConnect, "", "pinging source", err)
	}

	dest, err := sql.Open(destDriver, destDSN)
	if err != nil {
		return nil, migerr.New(migerr.CodeConnect, "", "opening destination connection", err)
	}
	if err := dest.PingContext(ctx); err != nil {
		return nil, migerr.New(migerr.CodeConnect, "", "pinging destination", err)
	}

	return &Discoverer{Source: source, Dest: dest}, nil
}

func (d *Discoverer) Close() {
	if d.Source != nil {
		_ = d.Source.Close()
	}
	if d.Dest != nil {
		_ = d.Dest.Close()
	}
}

// DiscoverStructure issues SHOW FULL TABLES IN <db> and fully populates
// each resulting table or view with columns, indexes, foreign keys and
// (for views) the MySQL view definition text.
func (d *Discoverer) DiscoverStructure(ctx context.Context, mysqlDBName string) (*core.MigrationPlan, error) {
	names, err := d.listTablesAndViews(ctx, mysqlDBName)
	if err != nil {
		return nil, migerr.New(migerr.CodeDiscovery, "", "listing tables in "+mysqlDBName, err)
	}

	plan := &core.MigrationPlan{}
	for _, n := range names {
		switch n.kind {
		case core.KindBaseTable:
			t, err := d.discoverBaseTable(ctx, mysqlDBName, n.name)
			if err != nil {
				return nil, migerr.New(migerr.CodeDiscovery, "", "discovering table "+n.name, err)
			}
			plan.Tables = append(plan.Tables, t)
		case core.KindView:
			v, err := d.discoverView(ctx, n.name)
			if err != nil {
				return nil, migerr.New(migerr.CodeDiscovery, "", "discovering view "+n.name, err)
			}
			plan.Views = append(plan.Views, v)
		}
	}
	return plan, nil
}

type tableRef struct {
	name string
	kind core.TableKind
}

// listTablesAndViews runs SHOW FULL TABLES IN <db>, whose second column
// ("Table_type") is either BASE TABLE or VIEW.
func (d *Discoverer) listTablesAndViews(ctx context.Context, mysqlDBName string) ([]tableRef, error) {
	rows, err := d.Source.QueryContext(ctx, fmt.Sprintf("SHOW FULL TABLES IN `%s`", mysqlDBName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []tableRef
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, err
		}
		kind := core.KindBaseTable
		if tableType == "VIEW" {
			kind = core.KindView
		}
		refs = append(refs, tableRef{name: name, kind: kind})
	}
	return refs, rows.Err()
}

func (d *Discoverer) discoverBaseTable(ctx context.Context, mysqlDBName, name string) (*core.SourceTable, error) {
	t := &core.SourceTable{Name: name, Kind: core.KindBaseTable}

	if err := d.introspectTableMeta(ctx, mysqlDBName, t); err != nil {
		return nil, err
	}
	if err := d.introspectColumns(ctx, mysqlDBName, t); err != nil {
		return nil, err
	}
	if err := d.introspectIndexes(ctx, mysqlDBName, t); err != nil {
		return nil, err
	}
	if err := d.introspectForeignKeys(ctx, mysqlDBName, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Discoverer) discoverView(ctx context.Context, name string) (*core.SourceTable, error) {
	v := &core.SourceTable{Name: name, Kind: core.KindView}

	row := d.Source.QueryRowContext(ctx, fmt.Sprintf("SHOW CREATE VIEW `%s`", name))
	var viewName, createStmt, charsetClient, collation sql.NullString
	if err := row.Scan(&viewName, &createStmt, &charsetClient, &collation); err != nil {
		return nil, err
	}
	v.ViewDefinition = createStmt.String
	return v, nil
}
