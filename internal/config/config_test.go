package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Source.Driver)
	assert.Equal(t, DefaultMongoURI, cfg.Source.URI)
	assert.Equal(t, DefaultMongoDatabase, cfg.Source.Database)
	assert.Equal(t, 10*time.Second, cfg.Source.ConnectTimeout)
	assert.Equal(t, []string{"composition"}, cfg.Export.Jobs)
	assert.Equal(t, DefaultPlan(), cfg.Export.Plan)
	assert.Equal(t, "MOSENEW Index", cfg.Export.CompositionSymbol)
	assert.Equal(t, "index_member", cfg.Export.MemberColumn)
	assert.Equal(t, "symbol", cfg.Export.SymbolColumn)
	assert.False(t, cfg.Export.BOMPrefix)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoadFile_YAMLOverlay(t *testing.T) {
	path := writeConfigFile(t, `
source:
  driver: sqlite
  path: /var/lib/arctic.db
export:
  jobs: [eod, composition]
  composition_symbol: "SPX Index"
  plan:
    - name: eod
      library: Bloomberg.EOD
      kind: eod
      output: out/eod
    - name: composition
      library: Bloomberg.Indexes_Members
      kind: composition
      output: out/members.csv
logging:
  level: debug
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Source.Driver)
	assert.Equal(t, "/var/lib/arctic.db", cfg.Source.Path)
	// Untouched keys keep their defaults
	assert.Equal(t, DefaultConnectTimeout, cfg.Source.ConnectTimeout)
	assert.Equal(t, "index_member", cfg.Export.MemberColumn)
	assert.Equal(t, "SPX Index", cfg.Export.CompositionSymbol)
	assert.Equal(t, []string{"eod", "composition"}, cfg.Export.Jobs)
	require.Len(t, cfg.Export.Plan, 2)
	assert.Equal(t, Job{Name: "composition", Library: "Bloomberg.Indexes_Members", Kind: KindComposition, Output: "out/members.csv"}, cfg.Export.Plan[1])
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
source:
  driver: sqlite
  path: from-file.db
`)
	t.Setenv("SYMEXPORT_SOURCE_PATH", "from-env.db")
	t.Setenv("SYMEXPORT_SOURCE_CONNECT_TIMEOUT", "3s")
	t.Setenv("SYMEXPORT_EXPORT_JOBS", "eod,eod_unadjusted")
	t.Setenv("SYMEXPORT_EXPORT_BOM_PREFIX", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Source.Driver)
	assert.Equal(t, "from-env.db", cfg.Source.Path)
	assert.Equal(t, 3*time.Second, cfg.Source.ConnectTimeout)
	assert.Equal(t, []string{"eod", "eod_unadjusted"}, cfg.Export.Jobs)
	assert.True(t, cfg.Export.BOMPrefix)
}

func TestLoadFile_IgnoresUnprefixedEnv(t *testing.T) {
	path := writeConfigFile(t, `
source:
  driver: sqlite
  path: from-file.db
`)
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("LEVEL", "error")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file.db", cfg.Source.Path)
	assert.NotEqual(t, "error", cfg.Logging.Level)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown driver",
			env:     map[string]string{"SYMEXPORT_SOURCE_DRIVER": "arctic"},
			wantErr: "Driver",
		},
		{
			name:    "sqlite without path",
			env:     map[string]string{"SYMEXPORT_SOURCE_DRIVER": "sqlite"},
			wantErr: "Path",
		},
		{
			name:    "unknown job selected",
			env:     map[string]string{"SYMEXPORT_EXPORT_JOBS": "dividends"},
			wantErr: `job "dividends" is not in the export plan`,
		},
		{
			name:    "same member and symbol column",
			env:     map[string]string{"SYMEXPORT_EXPORT_SYMBOL_COLUMN": "index_member"},
			wantErr: "SymbolColumn",
		},
		{
			name: "eod job without output",
			yaml: `
export:
  jobs: [eod]
  plan:
    - name: eod
      library: Bloomberg.EOD
      kind: eod
`,
			wantErr: "Output",
		},
		{
			name: "unknown job kind",
			yaml: `
export:
  jobs: [x]
  plan:
    - name: x
      library: Bloomberg.EOD
      kind: dividends
      output: out
`,
			wantErr: "Kind",
		},
		{
			name: "duplicate job names",
			yaml: `
export:
  jobs: [x]
  plan:
    - {name: x, library: A, kind: eod, output: a}
    - {name: x, library: B, kind: eod, output: b}
`,
			wantErr: `duplicate job "x"`,
		},
		{
			name:    "malformed yaml",
			yaml:    "source: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfigFile(t, tt.yaml)
			}

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_CorporateActionsNeedsNoOutput(t *testing.T) {
	t.Setenv("SYMEXPORT_EXPORT_JOBS", "corporate_actions")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	jobs, err := cfg.Export.Plan.Select(cfg.Export.Jobs)
	require.NoError(t, err)
	assert.Equal(t, KindCorporateActions, jobs[0].Kind)
	assert.Empty(t, jobs[0].Output)
}

func TestGetConfigFilePath_FromEnv(t *testing.T) {
	t.Setenv("SYMEXPORT_CONFIG", "/etc/symexport.yaml")
	assert.Equal(t, "/etc/symexport.yaml", getConfigFilePath())
}
