package source

import "errors"

var (
	// ErrConnectivity means the store could not be reached or refused the credentials
	ErrConnectivity = errors.New("source unreachable")
	// ErrLibraryNotFound means the requested library does not exist
	ErrLibraryNotFound = errors.New("library not found")
	// ErrSymbolNotFound means the library has no symbol with the requested name
	ErrSymbolNotFound = errors.New("symbol not found")
)
