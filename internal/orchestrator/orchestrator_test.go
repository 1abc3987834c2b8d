package orchestrator

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql2pg/internal/config"
	"mysql2pg/internal/core"
	"mysql2pg/internal/discover"
	"mysql2pg/internal/logx"
	"mysql2pg/internal/metrics"
)

func newTestOrchestrator(t *testing.T, cfg *config.Config) (*Orchestrator, sqlmock.Sqlmock, sqlmock.Sqlmock) {
	t.Helper()
	sourceDB, sourceMock, err := sqlmock.New()
	require.NoError(t, err)
	destDB, destMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sourceDB.Close(); destDB.Close() })

	disc := discover.New(sourceDB, destDB)
	log, err := logx.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return New(cfg, disc, log, metrics.New(), Options{Workers: 1}), sourceMock, destMock
}

func TestRun_FailsValidationWhenSourceOrTargetMissing(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, &config.Config{Source: "", Target: ""})
	_, err := o.Run(context.Background(), "shop")
	assert.Error(t, err)
}

func TestRunForeignKeys_EmitsOneStatementPerForeignKey(t *testing.T) {
	o, _, destMock := newTestOrchestrator(t, &config.Config{Source: "x", Target: "y"})

	plan := &core.MigrationPlan{
		TargetSchemaName: "public",
		Tables: []*core.SourceTable{
			{
				Name: "orders",
				ForeignKeys: []*core.ForeignKey{
					{ConstraintName: "fk_customer", Columns: []string{"customer_id"}, RefTable: "customers", RefColumns: []string{"id"}},
				},
			},
		},
	}

	destMock.ExpectExec(`ALTER TABLE "public"\."orders" ADD FOREIGN KEY`).WillReturnResult(sqlmock.NewResult(0, 0))

	o.runForeignKeys(context.Background(), plan)
	assert.NoError(t, destMock.ExpectationsWereMet())
}

func TestRunViews_LogsFailureWithoutAborting(t *testing.T) {
	o, _, destMock := newTestOrchestrator(t, &config.Config{Source: "x", Target: "y"})

	plan := &core.MigrationPlan{
		TargetSchemaName: "public",
		Views: []*core.SourceTable{
			{Name: "active_users", ViewDefinition: "CREATE VIEW `active_users` AS SELECT * FROM `users` WHERE `active` = 1"},
		},
	}

	destMock.ExpectExec(`CREATE VIEW`).WillReturnError(errors.New("relation \"users\" does not exist"))

	assert.NotPanics(t, func() { o.runViews(context.Background(), plan) })
}

func TestRunSingleTable_AbortsOnFatalCreateTableFailure(t *testing.T) {
	o, _, destMock := newTestOrchestrator(t, &config.Config{Source: "x", Target: "y", Encoding: "UTF-8", DataChunkSize: 10})

	table := &core.SourceTable{
		Name: "widgets",
		Columns: []*core.Column{
			{Field: "id", RawType: "int(11)"},
		},
	}

	destMock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("connection refused"))

	_, err := o.runSingleTable(context.Background(), "public", table)
	assert.Error(t, err)
}
