package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolly-parseton/kql-panopticon/internal/queryclient"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Prod Logs!!", "prod_logs"},
		{"  leading-trailing_  ", "leading-trailing"},
		{"already-ok_name", "already-ok_name"},
		{"Multi   Space", "multi_space"},
		{"UPPER_CASE", "upper_case"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_NeverProducesConsecutiveUnderscores(t *testing.T) {
	got := Normalize("a!!!!!b")
	assert.NotContains(t, got, "__")
	assert.Equal(t, "a_b", got)
}

func TestFileStem_OmitsQuerySuffixWhenAbsent(t *testing.T) {
	assert.Equal(t, "job1", FileStem("job1", ""))
	assert.Equal(t, "job1_heartbeat", FileStem("job1", "heartbeat"))
}

func TestLayout_IsDeterministicForSameInputs(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	a := Layout("./out", "Sub One", "Workspace One", ts)
	b := Layout("./out", "Sub One", "Workspace One", ts)
	assert.Equal(t, a, b)
	assert.Equal(t, filepath.Join("out", "sub_one", "workspace_one", "2026-03-04_05-06-07"), a)
}

func TestEncodeCSV_HeaderAndRows(t *testing.T) {
	result := &queryclient.Result{
		Columns: []queryclient.Column{{Name: "a"}, {Name: "b"}},
		Rows:    [][]any{{"x", nil}, {true, 5}},
	}
	data, err := EncodeCSV(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a,b\n")
	assert.Contains(t, string(data), "x,\n")
	assert.Contains(t, string(data), "true,5\n")
}

func TestEncodeJSON_OneObjectPerRow(t *testing.T) {
	result := &queryclient.Result{
		Columns: []queryclient.Column{{Name: "a"}, {Name: "b"}},
		Rows:    [][]any{{"x", float64(1)}},
	}
	data, err := EncodeJSON(result)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0]["a"])
	assert.Equal(t, float64(1), rows[0]["b"])
}

func TestWriter_WriteResult_WritesBothFormatsWhenBothEnabled(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter()
	req := Request{
		OutputFolder:     dir,
		SubscriptionName: "sub",
		WorkspaceName:    "ws",
		DispatchTS:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		JobName:          "job1",
		ExportCSV:        true,
		ExportJSON:       true,
	}
	result := &queryclient.Result{
		Columns: []queryclient.Column{{Name: "a"}},
		Rows:    [][]any{{"v"}},
	}

	paths, err := w.WriteResult(req, result)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err, "expected %s to exist", p)
	}
}

func TestWriter_WriteResult_WritesNeitherFormatWhenBothDisabled(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter()
	req := Request{OutputFolder: dir, WorkspaceName: "ws", SubscriptionName: "sub", JobName: "job1"}
	result := &queryclient.Result{Columns: []queryclient.Column{{Name: "a"}}}

	paths, err := w.WriteResult(req, result)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
