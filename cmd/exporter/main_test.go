package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symexport/internal/infrastructure"
)

// writeConfig writes a sqlite configuration rooted at a temp dir
func writeConfig(t *testing.T) (configPath, baseDir string) {
	t.Helper()
	baseDir = t.TempDir()
	configPath = filepath.Join(baseDir, "config.yaml")
	content := fmt.Sprintf(`source:
  driver: sqlite
  path: %s
export:
  base_dir: %s
  jobs: [composition]
logging:
  level: error
  output: file
  file_path: %s
`, filepath.Join(baseDir, "store.db"), baseDir, filepath.Join(baseDir, "logs", "exporter.log"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	return configPath, baseDir
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: exporter")
}

func TestRun_UnknownCommand(t *testing.T) {
	configPath, _ := writeConfig(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-config", configPath, "export"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), `unknown command "export"`)
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  driver: arctic\n"), 0o644))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-config", path, "libraries"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to load configuration")
}

func TestRun_SeedListAndExport(t *testing.T) {
	configPath, baseDir := writeConfig(t)
	csvPath := filepath.Join(baseDir, "members.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,index_member,symbol\n2024-01-02,AAPL US Equity,MOSENEW Index\n"), 0o644))

	ctx := context.Background()
	var stdout, stderr bytes.Buffer

	code := run(ctx, []string{"-config", configPath, "seed",
		"-library", "Bloomberg.Indexes_Members", "-symbol", "MOSENEW Index", "-csv", csvPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	code = run(ctx, []string{"-config", configPath, "libraries"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Bloomberg.Indexes_Members\n", stdout.String())

	stdout.Reset()
	code = run(ctx, []string{"-config", configPath, "symbols", "-library", "Bloomberg.Indexes_Members"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "MOSENEW Index\n", stdout.String())

	code = run(ctx, []string{"-config", configPath, "run"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	content, err := os.ReadFile(filepath.Join(baseDir, "composition.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,index_member\n2024-01-02,AAPL\n", string(content))
}

func TestRun_ExportFailureExitCode(t *testing.T) {
	configPath, _ := writeConfig(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-config", configPath, "run", "-job", "composition"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
}

func TestRun_KeepsCallerTraceID(t *testing.T) {
	configPath, baseDir := writeConfig(t)
	var stdout, stderr bytes.Buffer

	ctx := infrastructure.WithTraceID(context.Background(), "run-42")
	code := run(ctx, []string{"-config", configPath, "run", "-job", "composition"}, &stdout, &stderr)
	require.Equal(t, 1, code)

	content, err := os.ReadFile(filepath.Join(baseDir, "logs", "exporter.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"trace_id":"run-42"`)
}

func TestRun_MissingFlags(t *testing.T) {
	configPath, _ := writeConfig(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(context.Background(), []string{"-config", configPath, "symbols"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-library is required")

	assert.Equal(t, 2, run(context.Background(), []string{"-config", configPath, "seed", "-library", "x"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-library, -symbol and -csv are required")
}

func TestJobList(t *testing.T) {
	var jobs jobList
	require.NoError(t, jobs.Set("eod, composition"))
	require.NoError(t, jobs.Set("corporate_actions"))
	require.NoError(t, jobs.Set(""))

	assert.Equal(t, jobList{"eod", "composition", "corporate_actions"}, jobs)
	assert.Equal(t, "eod,composition,corporate_actions", jobs.String())
}
