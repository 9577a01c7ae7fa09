// Package testutil provides shared test helpers: structural diffing via
// go-cmp and small filesystem conveniences for tests that need a scratch
// directory or log-like file. Adapted from the teacher's driver/log/testutil
// package, trimmed of the file-writing helper that depended on an
// unavailable internal logging package (see DESIGN.md).
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Diff returns a human-readable diff between a and b, or "" if equal.
func Diff(a, b interface{}, opts ...cmp.Option) string {
	return cmp.Diff(a, b, opts...)
}

// AllowUnexported permits cmp to compare the unexported fields of the given
// types, for structs (like histogram.Histogram) with no exported equivalent.
func AllowUnexported(types ...interface{}) cmp.Option {
	return cmp.AllowUnexported(types...)
}

// IgnoreFields excludes the named fields of typ from comparison.
func IgnoreFields(typ interface{}, names ...string) cmp.Option {
	return cmpopts.IgnoreFields(typ, names...)
}

// ExpectNoDiff fails tb with a -want +got diff if a and b differ, and
// reports whether they were equal.
func ExpectNoDiff(tb testing.TB, a, b interface{}, opts ...cmp.Option) bool {
	tb.Helper()
	if diff := Diff(a, b, opts...); diff != "" {
		tb.Errorf("unexpected diff, -want +got:\n%s", diff)
		return false
	}
	return true
}

// FatalIfErr fails the test immediately if err is not nil.
func FatalIfErr(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatal(err)
	}
}

// OpenLogFile creates a new truncated file at name for a test to append
// log lines to.
func OpenLogFile(tb testing.TB, name string) *os.File {
	tb.Helper()
	f, err := os.OpenFile(filepath.Clean(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	FatalIfErr(tb, err)
	return f
}
