// Package source defines the boundary to the time-series document store the
// exporters read from.
//
// A store is organised in libraries, each holding named symbols. Every symbol
// resolves to a domain.Dataset. Backends live in subpackages:
//
//	mongo   - MongoDB, one collection per library, one document per symbol
//	sqlite  - embedded SQLite file, symbols stored as JSON documents
//	xlsx    - a directory of workbooks, one workbook per library, one sheet per symbol
//	memory  - in-process store used by tests and dry runs
//
// Exporters only depend on Reader. Connections are acquired through an Opener
// and released by closing the returned Session, so every library access is
// scoped to one open/close pair.
package source
