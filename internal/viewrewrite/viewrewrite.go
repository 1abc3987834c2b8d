// Package viewrewrite turns a MySQL `SHOW CREATE VIEW` definition into a
// PostgreSQL `CREATE VIEW` statement (spec component B). It leans on the
// same TiDB SQL parser the teacher repo already used for statement
// splitting and restoration (internal/apply in the teacher) rather than
// hand-rolled string surgery, because view bodies are arbitrary SQL and a
// real parser is the only way to reliably find and requalify table names.
package viewrewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"mysql2pg/internal/migerr"
)

// pgRestoreFlags asks the TiDB restorer for double-quoted identifiers and
// upper-cased keywords, which is PostgreSQL's preferred quoting even
// though the parser itself understands only MySQL grammar.
const pgRestoreFlags = format.RestoreStringSingleQuotes | format.RestoreNameDoubleQuotes | format.RestoreKeyWordUppercase

// Rewrite produces a CREATE VIEW statement for schema.viewName from a
// MySQL view definition (the second column of SHOW CREATE VIEW). It never
// returns an error for MySQL-only syntax: whether the result is valid
// PostgreSQL DDL is discovered only when the orchestrator's view phase
// issues it, per
// the "never abort the run" rule for views. Rewrite only fails when
// mysqlDefinition is empty or contains no AS clause at all.
func Rewrite(schema, viewName, mysqlDefinition string) (string, error) {
	mysqlDefinition = strings.TrimSpace(mysqlDefinition)
	if mysqlDefinition == "" {
		return "", migerr.New(migerr.CodeView, "", "empty view definition for "+viewName, nil)
	}

	if sql, ok := rewriteViaParser(schema, viewName, mysqlDefinition); ok {
		return sql, nil
	}
	return rewriteViaRegex(schema, viewName, mysqlDefinition)
}

// rewriteViaParser is the primary path: parse the full CREATE VIEW
// statement, pull out its SELECT body, requalify every table reference
// with the target schema, and restore the body with PostgreSQL-flavored
// quoting.
func rewriteViaParser(schema, viewName, mysqlDefinition string) (string, bool) {
	p := parser.New()
	stmtNodes, _, err := p.Parse(mysqlDefinition, "", "")
	if err != nil || len(stmtNodes) == 0 {
		return "", false
	}

	createView, ok := stmtNodes[0].(*ast.CreateViewStmt)
	if !ok || createView.Select == nil {
		return "", false
	}

	createView.Select.Accept(&schemaQualifier{schema: schema})

	var sb strings.Builder
	ctx := format.NewRestoreCtx(pgRestoreFlags, &sb)
	if err := createView.Select.Restore(ctx); err != nil {
		return "", false
	}

	return fmt.Sprintf("CREATE VIEW %s AS %s", quoteQualified(schema, viewName), sb.String()), true
}

// schemaQualifier rewrites every table reference's Schema to the target
// PostgreSQL schema, so a bare "FROM orders" in the MySQL body becomes
// "FROM "target_schema"."orders"" once restored.
type schemaQualifier struct {
	schema string
}

func (v *schemaQualifier) Enter(n ast.Node) (ast.Node, bool) {
	if tn, ok := n.(*ast.TableName); ok {
		tn.Schema = ast.NewCIStr(v.schema)
	}
	return n, false
}

func (v *schemaQualifier) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

var (
	definerPrefixRE = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:ALGORITHM\s*=\s*\S+\s+)?(?:DEFINER\s*=\s*\S+\s+)?(?:SQL\s+SECURITY\s+\S+\s+)?VIEW\s+`)
	asClauseRE      = regexp.MustCompile(`(?is)\bAS\b`)
)

// rewriteViaRegex is the fallback used when the body does not parse as
// MySQL at all (rare, but the TiDB grammar is not 100% of every MySQL
// version's dialect). It strips the DEFINER/ALGORITHM/SQL SECURITY
// preamble and the original view name, keeping everything after the first
// standalone AS keyword (nesting is not considered), and rewrites backtick
// quoting to double quotes.
func rewriteViaRegex(schema, viewName, mysqlDefinition string) (string, error) {
	body := definerPrefixRE.ReplaceAllString(mysqlDefinition, "")
	loc := asClauseRE.FindStringIndex(body)
	if loc == nil {
		return "", migerr.New(migerr.CodeView, mysqlDefinition, "no AS clause found in view definition for "+viewName, nil)
	}
	selectBody := strings.TrimSpace(body[loc[1]:])
	selectBody = backtickToDoubleQuote(selectBody)
	return fmt.Sprintf("CREATE VIEW %s AS %s", quoteQualified(schema, viewName), selectBody), nil
}

func backtickToDoubleQuote(s string) string {
	return strings.ReplaceAll(s, "`", `"`)
}

func quoteQualified(schema, name string) string {
	return fmt.Sprintf(`"%s"."%s"`, schema, name)
}
