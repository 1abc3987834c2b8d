// Package typemap is the pure MySQL-to-PostgreSQL column type translator
// (spec component A). It holds a single read-only dictionary keyed by the
// lowercase MySQL base type — a static table, not an object, in the same
// spirit as the teacher's normalizeDataTypeRules table — and a Map function
// with no external dependencies of any kind.
package typemap

import (
	"fmt"
	"strings"

	"mysql2pg/internal/core"
	"mysql2pg/internal/migerr"
)

// rule describes how one MySQL base type is translated.
type rule struct {
	// plain is the PostgreSQL type used when the column is not
	// unsigned/zerofill.
	plain string
	// promoted is the PostgreSQL type used when the column carries
	// unsigned or zerofill. Empty means "same as plain" (no promotion
	// exists for this base type).
	promoted string
	// fixedLen is true when PostgreSQL must never see the original
	// MySQL length suffix (mySqlVarLenPgSqlFixedLen in spec terms).
	fixedLen bool
}

var dictionary = map[string]rule{
	"tinyint":  {plain: "SMALLINT", promoted: "INT", fixedLen: true},
	"smallint": {plain: "SMALLINT", promoted: "INT", fixedLen: true},
	"year":     {plain: "SMALLINT", promoted: "INT", fixedLen: true},

	"mediumint": {plain: "INT", promoted: "BIGINT", fixedLen: true},
	"int":       {plain: "INT", promoted: "BIGINT", fixedLen: true},
	"integer":   {plain: "INT", promoted: "BIGINT", fixedLen: true},

	"bigint": {plain: "BIGINT", promoted: "BIGINT", fixedLen: true},

	"float": {plain: "REAL", promoted: "DOUBLE PRECISION", fixedLen: true},

	"double":          {plain: "DOUBLE PRECISION", promoted: "DOUBLE PRECISION", fixedLen: true},
	"double precision": {plain: "DOUBLE PRECISION", promoted: "DOUBLE PRECISION", fixedLen: true},

	"decimal": {plain: "DECIMAL", fixedLen: false},
	"numeric": {plain: "NUMERIC", fixedLen: false},

	"char":    {plain: "CHARACTER", fixedLen: false},
	"varchar": {plain: "CHARACTER VARYING", fixedLen: false},

	"enum": {plain: "CHARACTER VARYING(255)", fixedLen: true},
	"set":  {plain: "CHARACTER VARYING(255)", fixedLen: true},

	"date":      {plain: "DATE", fixedLen: true},
	"time":      {plain: "TIME", fixedLen: true},
	"datetime":  {plain: "TIMESTAMP", fixedLen: true},
	"timestamp": {plain: "TIMESTAMP", fixedLen: true},

	"tinytext":   {plain: "TEXT", fixedLen: true},
	"mediumtext": {plain: "TEXT", fixedLen: true},
	"longtext":   {plain: "TEXT", fixedLen: true},
	"text":       {plain: "TEXT", fixedLen: true},

	"binary":     {plain: "BYTEA", fixedLen: true},
	"varbinary":  {plain: "BYTEA", fixedLen: true},
	"tinyblob":   {plain: "BYTEA", fixedLen: true},
	"mediumblob": {plain: "BYTEA", fixedLen: true},
	"longblob":   {plain: "BYTEA", fixedLen: true},
	"blob":       {plain: "BYTEA", fixedLen: true},

	"bit": {plain: "BIT VARYING", promoted: "BIT VARYING", fixedLen: true},

	"json": {plain: "JSON", fixedLen: true},

	// Spatial columns are streamed as HEX(ST_AsWKB(...)) and COPYed as
	// hex-encoded bytea (Open Question 3, resolved in SPEC_FULL.md §9):
	// the destination column is bytea, never geometry/point/polygon, so a
	// plain \x... COPY payload is always valid for it.
	"geometry":   {plain: "BYTEA", fixedLen: true},
	"point":      {plain: "BYTEA", fixedLen: true},
	"polygon":    {plain: "BYTEA", fixedLen: true},
	"linestring": {plain: "BYTEA", fixedLen: true},
}

// moneyType is the exact-match upgrade applied to "decimal(19,2)" columns.
const moneyType = "MONEY"

// Map translates a MySQL column type declaration (e.g. "int(10) unsigned",
// "decimal(10,2)", "enum('a','b')") into the PostgreSQL type spelling to
// splice into a CREATE TABLE statement: uppercased, with a trailing space.
func Map(rawType string) (core.MappedType, error) {
	fields := strings.Fields(strings.TrimSpace(rawType))
	if len(fields) == 0 {
		return core.MappedType{}, migerr.New(migerr.CodeUnsupportedType, rawType, "empty type declaration", nil)
	}

	base := fields[0]
	promote := false
	for _, mod := range fields[1:] {
		m := strings.ToLower(mod)
		if m == "unsigned" || m == "zerofill" {
			promote = true
		}
	}

	lowerBase := strings.ToLower(base)
	bareType, length := splitLength(lowerBase)

	if bareType == "decimal" && length == "19,2" {
		if promote {
			return core.MappedType{PgType: pad("NUMERIC"), HasLengthSuffix: false}, nil
		}
		return core.MappedType{PgType: pad(moneyType), HasLengthSuffix: false}, nil
	}

	r, ok := dictionary[bareType]
	if !ok {
		return core.MappedType{}, migerr.New(migerr.CodeUnsupportedType, rawType,
			fmt.Sprintf("unsupported MySQL base type %q", bareType), nil)
	}

	pg := r.plain
	if promote && r.promoted != "" {
		pg = r.promoted
	}

	if r.fixedLen || length == "" {
		return core.MappedType{PgType: pad(pg), HasLengthSuffix: false}, nil
	}

	length = rewriteZeroLength(length)
	return core.MappedType{PgType: pad(fmt.Sprintf("%s(%s)", pg, length)), HasLengthSuffix: true}, nil
}

// splitLength separates "varchar(255)" into ("varchar", "255") and
// "int" into ("int", "").
func splitLength(lowerDecl string) (bareType, length string) {
	open := strings.IndexByte(lowerDecl, '(')
	if open < 0 {
		return lowerDecl, ""
	}
	close := strings.LastIndexByte(lowerDecl, ')')
	if close < open {
		return lowerDecl[:open], ""
	}
	return lowerDecl[:open], lowerDecl[open+1 : close]
}

// rewriteZeroLength turns "0" into "1" (PostgreSQL rejects CHARACTER(0)
// and CHARACTER VARYING(0)); multi-arg lengths such as "10,2" pass through.
func rewriteZeroLength(length string) string {
	if length == "0" {
		return "1"
	}
	return length
}

func pad(s string) string {
	return strings.ToUpper(s) + " "
}
