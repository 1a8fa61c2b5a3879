// Package mongo provides a MongoDB-backed source store. A library maps to a
// collection of the configured database and each symbol is one document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"symexport/internal/source"
	"symexport/pkg/contracts/domain"
)

// Options configures the connection
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Store reads symbol documents from MongoDB
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
}

// Open connects and pings the server. Any failure is reported as
// source.ErrConnectivity.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("mongo database is required")
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", source.ErrConnectivity, opts.URI, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping %s: %v", source.ErrConnectivity, opts.URI, err)
	}

	return &Store{
		client:   client,
		database: client.Database(opts.Database),
		timeout:  timeout,
	}, nil
}

// Opener returns a source.Opener that connects for every session
func Opener(opts Options) source.Opener {
	return source.OpenerFunc(func(ctx context.Context) (source.Session, error) {
		store, err := Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}

// Close disconnects the client
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ListLibraries returns collection names in alphabetical order
func (s *Store) ListLibraries(ctx context.Context) ([]string, error) {
	names, err := s.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// ListSymbols returns the symbols of library in natural (insertion) order
func (s *Store) ListSymbols(ctx context.Context, library string) ([]string, error) {
	if err := s.requireLibrary(ctx, library); err != nil {
		return nil, err
	}
	cursor, err := s.database.Collection(library).Find(ctx, bson.D{},
		options.Find().SetProjection(bson.D{{Key: "symbol", Value: 1}, {Key: "_id", Value: 0}}))
	if err != nil {
		return nil, fmt.Errorf("list symbols of %s: %w", library, err)
	}
	defer cursor.Close(ctx)

	var symbols []string
	for cursor.Next(ctx) {
		var doc struct {
			Symbol string `bson:"symbol"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode symbol of %s: %w", library, err)
		}
		symbols = append(symbols, doc.Symbol)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list symbols of %s: %w", library, err)
	}
	return symbols, nil
}

// ReadSymbol loads one symbol document
func (s *Store) ReadSymbol(ctx context.Context, library, symbol string) (*domain.Dataset, error) {
	if err := s.requireLibrary(ctx, library); err != nil {
		return nil, err
	}
	var doc symbolDocument
	err := s.database.Collection(library).FindOne(ctx, bson.D{{Key: "symbol", Value: symbol}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s/%s", source.ErrSymbolNotFound, library, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}
	ds, err := doc.dataset()
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}
	return ds, nil
}

// WriteSymbol replaces (or inserts) the document of symbol
func (s *Store) WriteSymbol(ctx context.Context, library, symbol string, ds *domain.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("write %s/%s: %w", library, symbol, err)
	}
	_, err := s.database.Collection(library).ReplaceOne(ctx,
		bson.D{{Key: "symbol", Value: symbol}},
		newSymbolDocument(symbol, ds),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", library, symbol, err)
	}
	return nil
}

func (s *Store) requireLibrary(ctx context.Context, library string) error {
	names, err := s.database.ListCollectionNames(ctx, bson.D{{Key: "name", Value: library}})
	if err != nil {
		return fmt.Errorf("lookup library %s: %w", library, err)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", source.ErrLibraryNotFound, library)
	}
	return nil
}
