// Package app wires the export application together.
//
// NewApplication turns a loaded configuration into a source opener for the
// configured driver, a job runner with the default steps, the export metrics
// and the tracer provider. The command line front end calls Export,
// Libraries, Symbols or Seed on the result and Close before exiting.
//
// Errors are returned to the caller; the package never exits the process.
package app
