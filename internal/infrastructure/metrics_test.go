package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMetrics_SymbolExported(t *testing.T) {
	m := NewExportMetrics()

	m.SymbolExported("Bloomberg.EOD", 3)
	m.SymbolExported("Bloomberg.EOD", 2)
	m.SymbolExported("Bloomberg.EOD_Unadjusted", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.symbolsExported.WithLabelValues("Bloomberg.EOD")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.rowsWritten.WithLabelValues("Bloomberg.EOD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rowsWritten.WithLabelValues("Bloomberg.EOD_Unadjusted")))
}

func TestExportMetrics_JobFinished(t *testing.T) {
	m := NewExportMetrics()

	m.JobFinished("eod", "eod", time.Second, nil)
	m.JobFinished("eod", "eod", time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsTotal.WithLabelValues("eod", "eod", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsTotal.WithLabelValues("eod", "eod", "failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lastSuccess))
}

func TestExportMetrics_NilSafe(t *testing.T) {
	var m *ExportMetrics

	assert.NotPanics(t, func() {
		m.SymbolExported("lib", 1)
		m.JobFinished("job", "eod", time.Second, nil)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestExportMetrics_WriteTextfile(t *testing.T) {
	m := NewExportMetrics()
	m.SymbolExported("Bloomberg.EOD", 4)

	path := filepath.Join(t.TempDir(), "symexport.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `symexport_symbols_exported_total{library="Bloomberg.EOD"} 1`)
	assert.Contains(t, string(content), `symexport_rows_written_total{library="Bloomberg.EOD"} 4`)

	assert.NoError(t, m.WriteTextfile(""))
}
