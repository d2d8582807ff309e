package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"impact-eval/internal/cfg"
	"impact-eval/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `[
  {"output": {"impact": "上涨"}, "impact1": "上涨", "title": "a"},
  {"output": {"impact": "上涨"}, "impact1": "横盘"},
  {"output": {"impact": "下跌"}, "impact1": "下跌"},
  {"output": {"impact": "上涨"}},
  {"output": {"impact": "横盘"}, "impact1": "上涨"}
]`

func testSettings(t *testing.T, dataPath string) cfg.Settings {
	t.Helper()
	return cfg.Settings{
		DataPath:     dataPath,
		Format:       common.FormatAuto,
		StorePath:    filepath.Join(t.TempDir(), "store"),
		Dataset:      common.DefaultDataset,
		RiseLabel:    "上涨",
		FallLabel:    "下跌",
		OutputFormat: common.OutputText,
		LogLevel:     "error",
		HTTPTimeout:  5 * time.Second,
	}
}

func writeRecords(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2024-1-24-original model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEvaluate_Text(t *testing.T) {
	settings := testSettings(t, writeRecords(t, sampleRecords))

	var out bytes.Buffer
	require.NoError(t, evaluate(context.Background(), settings, &out))

	expected := `Total sample count: 4
Matching count: 2
Accuracy: 50.00%

Accuracy for rise: 50.00%
Human-labeled impact distribution:
上涨: 2 times
下跌: 1 times
横盘: 1 times

=== Trading advice based on human labels ===
Recommendation: Buy (Probability of rise: 50.00%)

Model predicted impact1 distribution:
上涨: 2 times
横盘: 1 times
下跌: 1 times

=== Trading advice based on model predictions ===
Recommendation: Buy (Probability of rise: 50.00%)
`
	assert.Equal(t, expected, out.String())
}

func TestEvaluate_LoadErrorPrintsNothing(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "absent.json")},
		{name: "not an array", path: writeRecords(t, `{"output":{"impact":"rise"}}`)},
		{name: "array of strings", path: writeRecords(t, `["rise","fall"]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := evaluate(context.Background(), testSettings(t, tt.path), &out)
			assert.Error(t, err)
			assert.Empty(t, out.String())
		})
	}
}

func TestEvaluate_MetricsFile(t *testing.T) {
	settings := testSettings(t, writeRecords(t, sampleRecords))
	settings.MetricsFile = filepath.Join(t.TempDir(), "impact.prom")

	require.NoError(t, evaluate(context.Background(), settings, &bytes.Buffer{}))

	data, err := os.ReadFile(settings.MetricsFile)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "impact_records_evaluated_total 4")
	assert.Contains(t, content, "impact_matches_total 2")
	assert.Contains(t, content, `impact_records_skipped_total{field="impact1"} 1`)
	assert.Contains(t, content, `impact_accuracy_percent{class="overall"} 50`)
	assert.Contains(t, content, `impact_recommendations_total{action="buy",source="human"} 1`)
}

func TestEvaluate_JSONOutput(t *testing.T) {
	settings := testSettings(t, writeRecords(t, sampleRecords))
	settings.OutputFormat = common.OutputJSON

	var out bytes.Buffer
	require.NoError(t, evaluate(context.Background(), settings, &out))
	assert.Contains(t, out.String(), `"total": 4`)
	assert.Contains(t, out.String(), `"field": "impact1"`)
}

func TestIngestAndEvaluateStoredDataset(t *testing.T) {
	settings := testSettings(t, writeRecords(t, sampleRecords))

	n, err := ingest(settings.DataPath, settings.StorePath, "baseline")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var listing bytes.Buffer
	require.NoError(t, listDatasets(settings.StorePath, &listing))
	assert.Equal(t, "baseline: 5 items\n", listing.String())

	var fromFile, fromStore bytes.Buffer
	require.NoError(t, evaluate(context.Background(), settings, &fromFile))

	settings.Format = common.FormatBoltDB
	settings.Dataset = "baseline"
	require.NoError(t, evaluate(context.Background(), settings, &fromStore))

	assert.Equal(t, fromFile.String(), fromStore.String())
}

func TestIngest_RejectsMalformedFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store")

	_, err := ingest(writeRecords(t, `[{"ok":1}, 3]`), storePath, "bad")
	assert.Error(t, err)

	var listing bytes.Buffer
	require.NoError(t, listDatasets(storePath, &listing))
	assert.True(t, strings.HasPrefix(listing.String(), "No datasets"))
}

func TestEvaluate_UnknownStoredDataset(t *testing.T) {
	settings := testSettings(t, "unused.json")
	settings.Format = common.FormatBoltDB
	settings.Dataset = "missing"

	var out bytes.Buffer
	err := evaluate(context.Background(), settings, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
	assert.NoDirExists(t, settings.StorePath)
}
