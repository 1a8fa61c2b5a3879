package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symexport/internal/source"
	"symexport/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "arctic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDataset() *domain.Dataset {
	d1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	return &domain.Dataset{
		IndexName: "date",
		Index:     []any{d1, d2},
		Columns: []domain.Column{
			{Name: "PX_LAST", Values: []any{153.25, nil}},
			{Name: "PX_VOLUME", Values: []any{int64(500000), int64(600000)}},
			{Name: "CRNCY", Values: []any{"USD", "USD"}},
			{Name: "HALTED", Values: []any{false, true}},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.WriteSymbol(ctx, "Bloomberg.EOD", "AAPL US Equity", sampleDataset()))

	got, err := store.ReadSymbol(ctx, "Bloomberg.EOD", "AAPL US Equity")
	require.NoError(t, err)
	assert.Equal(t, sampleDataset(), got)
}

func TestStore_NaNIsStoredAsMissing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	ds := &domain.Dataset{
		Index:   []any{"a"},
		Columns: []domain.Column{{Name: "v", Values: []any{math.NaN()}}},
	}
	require.NoError(t, store.WriteSymbol(ctx, "lib", "X", ds))

	got, err := store.ReadSymbol(ctx, "lib", "X")
	require.NoError(t, err)
	assert.Nil(t, got.Columns[0].Values[0])
}

func TestStore_ListSymbolsKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, symbol := range []string{"MSFT US Equity", "AAPL US Equity", "IBM US Equity"} {
		require.NoError(t, store.WriteSymbol(ctx, "Bloomberg.EOD", symbol, &domain.Dataset{}))
	}
	// Overwriting keeps the original position
	require.NoError(t, store.WriteSymbol(ctx, "Bloomberg.EOD", "MSFT US Equity", sampleDataset()))

	symbols, err := store.ListSymbols(ctx, "Bloomberg.EOD")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT US Equity", "AAPL US Equity", "IBM US Equity"}, symbols)
}

func TestStore_ListLibraries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.CreateLibrary(ctx, "Bloomberg.Metadata"))
	require.NoError(t, store.WriteSymbol(ctx, "Bloomberg.EOD", "X", &domain.Dataset{}))
	require.NoError(t, store.CreateLibrary(ctx, "Bloomberg.EOD"))

	libs, err := store.ListLibraries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bloomberg.EOD", "Bloomberg.Metadata"}, libs)

	symbols, err := store.ListSymbols(ctx, "Bloomberg.Metadata")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.CreateLibrary(ctx, "lib"))

	_, err := store.ListSymbols(ctx, "missing")
	assert.ErrorIs(t, err, source.ErrLibraryNotFound)

	_, err = store.ReadSymbol(ctx, "missing", "X")
	assert.ErrorIs(t, err, source.ErrLibraryNotFound)

	_, err = store.ReadSymbol(ctx, "lib", "X")
	assert.ErrorIs(t, err, source.ErrSymbolNotFound)
}

func TestStore_RejectsMalformedDataset(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	ds := &domain.Dataset{
		Index:   []any{"a", "b"},
		Columns: []domain.Column{{Name: "v", Values: []any{1.0}}},
	}
	err := store.WriteSymbol(ctx, "lib", "X", ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column \"v\"")
}

func TestStore_RejectsUnsupportedValue(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	ds := &domain.Dataset{
		Index:   []any{"a"},
		Columns: []domain.Column{{Name: "v", Values: []any{struct{}{}}}},
	}
	err := store.WriteSymbol(ctx, "lib", "X", ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestOpener_OpensSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arctic.db")

	seed, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, seed.WriteSymbol(ctx, "lib", "X", sampleDataset()))
	require.NoError(t, seed.Close())

	var symbols []string
	err = source.WithSession(ctx, Opener(path), func(r source.Reader) error {
		var err error
		symbols, err = r.ListSymbols(ctx, "lib")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, symbols)
}
