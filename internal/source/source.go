package source

import (
	"context"

	"symexport/pkg/contracts/domain"
)

// Reader is the read side of the store consumed by the exporters
type Reader interface {
	// ListLibraries returns the library names known to the store
	ListLibraries(ctx context.Context) ([]string, error)
	// ListSymbols returns the symbols of a library in store order
	ListSymbols(ctx context.Context, library string) ([]string, error)
	// ReadSymbol returns the dataset stored under symbol in library
	ReadSymbol(ctx context.Context, library, symbol string) (*domain.Dataset, error)
}

// Session is an open connection to the store
type Session interface {
	Reader
	Close() error
}

// Opener acquires sessions
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f(ctx)
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// WithSession opens a session, runs fn with it and always closes it. A close
// error is only returned when fn succeeded.
func WithSession(ctx context.Context, opener Opener, fn func(Reader) error) (err error) {
	session, err := opener.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(session)
}
