package ddl

import (
	"regexp"
	"strings"
)

var selfMappingDefaults = map[string]bool{
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"LOCALTIME":         true,
	"LOCALTIMESTAMP":    true,
}

var utcDefaults = map[string]bool{
	"UTC_DATE":      true,
	"UTC_TIME":      true,
	"UTC_TIMESTAMP": true,
}

var zeroDateDefaults = map[string]bool{
	"0000-00-00":          true,
	"0000-00-00 00:00:00": true,
}

var numericLiteralRE = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
var bitLiteralRE = regexp.MustCompile(`^[bB]'([01]*)'$`)

// mapDefaultExpr translates a MySQL COLUMN_DEFAULT value into the
// PostgreSQL expression spliced after SET DEFAULT, per §4.E step 3.
func mapDefaultExpr(raw string) string {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	switch {
	case upper == "NULL":
		return "NULL"
	case selfMappingDefaults[upper]:
		return upper
	case zeroDateDefaults[trimmed]:
		return "'-INFINITY'"
	case utcDefaults[upper]:
		return "(" + upper + " AT TIME ZONE 'UTC')"
	}

	if m := bitLiteralRE.FindStringSubmatch(trimmed); m != nil {
		return "'" + m[1] + "'::bit"
	}

	if numericLiteralRE.MatchString(trimmed) {
		return trimmed
	}

	return QuoteString(trimmed)
}

var enumListRE = regexp.MustCompile(`(?is)^enum\((.*)\)$`)

// extractEnumList pulls the verbatim value list out of a MySQL
// "enum('a','b','c')" type declaration, for the CHECK ... IN (...)
// constraint in §4.E step 3. Returns "" if rawType is not an enum.
func extractEnumList(rawType string) string {
	m := enumListRE.FindStringSubmatch(strings.TrimSpace(rawType))
	if m == nil {
		return ""
	}
	return m[1]
}
