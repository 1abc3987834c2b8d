package discover

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"mysql2pg/internal/migerr"
)

var trailingCounterRE = regexp.MustCompile(`^(.*)_(\d+)$`)

// ResolveSchemaName implements §4.D point 2. When the operator supplied a
// name it is reused as-is, whether or not it already exists — the caller
// is responsible for creating it if alreadyExists is false. With no
// supplied name, it probes "<db>", "<db>_1", "<db>_2", ... for the first
// free slot, which by construction never exists yet.
func (d *Discoverer) ResolveSchemaName(ctx context.Context, operatorSupplied, mysqlDBName string) (name string, alreadyExists bool, err error) {
	if operatorSupplied != "" {
		exists, err := d.schemaExists(ctx, operatorSupplied)
		if err != nil {
			return "", false, migerr.New(migerr.CodeSchema, "", "checking schema "+operatorSupplied, err)
		}
		return operatorSupplied, exists, nil
	}

	candidate := mysqlDBName
	for {
		exists, err := d.schemaExists(ctx, candidate)
		if err != nil {
			return "", false, migerr.New(migerr.CodeSchema, "", "probing schema "+candidate, err)
		}
		if !exists {
			return candidate, false, nil
		}
		candidate = nextCandidate(candidate)
	}
}

// nextCandidate turns "db" into "db_1" and "db_N" into "db_(N+1)".
func nextCandidate(name string) string {
	if m := trailingCounterRE.FindStringSubmatch(name); m != nil {
		n := 0
		fmt.Sscanf(m[2], "%d", &n)
		return fmt.Sprintf("%s_%d", m[1], n+1)
	}
	return name + "_1"
}

func (d *Discoverer) schemaExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := d.Dest.QueryRowContext(ctx,
		`SELECT schema_name FROM information_schema.schemata WHERE schema_name = $1`, name).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateSchema issues CREATE SCHEMA for a resolved name that schemaExists
// reported missing.
func (d *Discoverer) CreateSchema(ctx context.Context, name string) error {
	_, err := d.Dest.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA "%s"`, name))
	if err != nil {
		return migerr.New(migerr.CodeSchema, "", "creating schema "+name, err)
	}
	return nil
}
