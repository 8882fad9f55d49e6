// Package shared holds code used across packages that belongs to no
// single layer.
//
// The testutil subpackage writes the sample workbooks the tests load and
// captures structured log output:
//
//	dir := t.TempDir()
//	testutil.WriteSampleData(t, dir)
//	logger, logs := testutil.NewTestLogger(t)
package shared
