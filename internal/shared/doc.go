// Package shared groups helpers used by more than one package.
//
// The testutil subpackage captures slog records so tests can assert on
// what a component logged.
package shared
