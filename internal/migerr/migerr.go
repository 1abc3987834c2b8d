// Package migerr defines the typed error taxonomy used across the
// migration engine. Every error raised by a component carries an offending
// SQL statement (when there is one), the call site that raised it, a
// stable Code, and a wrapped cause, following §7 of the migration design:
// an explicit result type plus a per-code fatality policy, instead of the
// source project's try/catch-everywhere control flow.
package migerr

import (
	"fmt"
	"runtime"
)

// Code identifies a class of migration failure. The orchestrator is the
// only package that branches on Code to decide whether a run continues.
type Code string

const (
	CodeConfig         Code = "CONFIG"          // fatal before any connection
	CodeConnect        Code = "CONNECT"         // fatal
	CodeSchema         Code = "SCHEMA"          // fatal
	CodeDiscovery      Code = "DISCOVERY"       // fatal
	CodeTableCreate    Code = "TABLE_CREATE"    // fatal for the run
	CodeDataRow        Code = "DATA_ROW"        // recorded in rowsFailed, not fatal
	CodeDeferredDDL    Code = "DEFERRED_DDL"    // logged, non-fatal
	CodeForeignKey     Code = "FOREIGN_KEY"     // logged, non-fatal
	CodeView           Code = "VIEW"            // logged, non-fatal
	CodeUnsupportedType Code = "UNSUPPORTED_TYPE" // fatal for the containing CREATE TABLE
)

// Fatal reports whether an error of this code must abort the entire run,
// per the taxonomy in spec §7. CodeTableCreate and CodeUnsupportedType are
// fatal only for the table that raised them, but since CREATE TABLE failure
// is itself fatal for the run (spec §7), both map to true here.
func (c Code) Fatal() bool {
	switch c {
	case CodeConfig, CodeConnect, CodeSchema, CodeDiscovery, CodeTableCreate, CodeUnsupportedType:
		return true
	default:
		return false
	}
}

// MigrationError is the single error type every component returns.
type MigrationError struct {
	Code    Code
	SQL     string
	File    string
	Line    int
	Message string
	Cause   error
}

// New builds a MigrationError, capturing the caller's file/line.
func New(code Code, sql, message string, cause error) *MigrationError {
	_, file, line, _ := runtime.Caller(1)
	return &MigrationError{
		Code:    code,
		SQL:     sql,
		File:    file,
		Line:    line,
		Message: message,
		Cause:   cause,
	}
}

func (e *MigrationError) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("%s: %s (sql: %s) [%s:%d]: %v", e.Code, e.Message, e.SQL, e.File, e.Line, e.Cause)
	}
	return fmt.Sprintf("%s: %s [%s:%d]: %v", e.Code, e.Message, e.File, e.Line, e.Cause)
}

func (e *MigrationError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether this error must abort the run.
func (e *MigrationError) Fatal() bool {
	return e.Code.Fatal()
}
