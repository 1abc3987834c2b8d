package config

import (
	"fmt"
	"strings"

	"mysql2pg/internal/migerr"
)

// TargetDSN builds a lib/pq-compatible space-separated "key=value" connection
// string from the config's "target" triple. lib/pq has no ParseDSN/FormatDSN
// pair to delegate to the way go-sql-driver/mysql does, so the PDO-style
// fields are mapped by hand onto pq's own key names (host, port, dbname,
// user, password, sslmode); this is the bespoke half of Open Question 2's
// resolution, justified because no pack library targets this microsyntax.
func (c *Config) TargetDSN() (string, error) {
	pdoDSN, user, password, err := splitTriple(c.Target)
	if err != nil {
		return "", migerr.New(migerr.CodeConfig, "", "parsing target DSN", err)
	}

	fields := parsePDOFields(pdoDSN)

	dbname := fields["dbname"]
	if dbname == "" {
		return "", migerr.New(migerr.CodeConfig, "", "target DSN missing dbname", nil)
	}

	host := fields["host"]
	if host == "" {
		host = "127.0.0.1"
	}
	port := fields["port"]
	if port == "" {
		port = "5432"
	}
	sslmode := fields["sslmode"]
	if sslmode == "" {
		sslmode = "disable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%s dbname=%s user=%s sslmode=%s",
		pqQuote(host), pqQuote(port), pqQuote(dbname), pqQuote(user), pqQuote(sslmode))
	if password != "" {
		fmt.Fprintf(&b, " password=%s", pqQuote(password))
	}
	return b.String(), nil
}

// pqQuote wraps a connection-string value in single quotes and escapes any
// embedded backslash or quote, per the libpq connection-string format.
func pqQuote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}
