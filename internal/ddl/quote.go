// Package ddl is the DDL Emitter (spec component E). Each file covers one
// phase from §4.E, in the order the Orchestrator calls them: create_table,
// then (after data load) deferred, sequence, index, and finally, in the
// orchestrator's global last phase, foreignkey.
package ddl

import "github.com/lib/pq"

// QuoteIdentifier quotes a PostgreSQL identifier, delegating to the
// driver's own quoting (lib/pq, used the same way in xataio-pgroll's
// migration operations) rather than re-deriving PostgreSQL's escaping
// rules by hand.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteQualified quotes a schema-qualified identifier as "<schema>"."<name>".
func QuoteQualified(schema, name string) string {
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(name)
}

// QuoteString quotes a PostgreSQL string literal.
func QuoteString(value string) string {
	return pq.QuoteLiteral(value)
}
