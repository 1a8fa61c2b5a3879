package config

import "time"

// Application constants
const (
	AppName    = "symexport"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. SYMEXPORT_SOURCE_DRIVER
	EnvPrefix = "SYMEXPORT"

	// Source drivers
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverXLSX   = "xlsx"

	DefaultMongoURI       = "mongodb://localhost:27017"
	DefaultMongoDatabase  = "arctic"
	DefaultConnectTimeout = 10 * time.Second

	// Composition export
	DefaultCompositionSymbol = "MOSENEW Index"
	DefaultCompositionFile   = "composition.csv"
	DefaultMemberColumn      = "index_member"
	DefaultSymbolColumn      = "symbol"

	DefaultLogFile = "logs/symexport.log"
)

// Library names of the Bloomberg mirror
const (
	LibraryEOD              = "Bloomberg.EOD"
	LibraryEODUnadjusted    = "Bloomberg.EOD_Unadjusted"
	LibraryCorporateActions = "Bloomberg.Corporate_Actions"
	LibraryIndexesMembers   = "Bloomberg.Indexes_Members"
)
