package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dolly-parseton/kql-panopticon/internal/queryclient"
)

// Writer is the Export Writer (C4): it owns the deterministic hierarchy
// under settings.OutputFolder and is the sole filesystem writer for
// results. Concurrent writes to distinct files are safe because the
// (workspace x dispatch-timestamp x job-name) key is unique per job (spec
// §5). CSV and JSON encoding are left to the standard library
// (encoding/csv, encoding/json) — both are named as out-of-scope
// collaborators in spec §1 ("CSV/JSON serialization primitives"), so no
// third-party encoder is wired here; see DESIGN.md.
type Writer struct{}

// NewWriter returns a Writer. It holds no state; every call is
// self-contained so concurrent jobs can call it freely.
func NewWriter() *Writer { return &Writer{} }

// Request bundles everything WriteResult needs to place one job's output.
type Request struct {
	OutputFolder     string
	SubscriptionName string
	WorkspaceName    string
	DispatchTS       time.Time
	JobName          string
	QueryName        string // non-empty only for multi-query pack dispatches
	ExportCSV        bool
	ExportJSON       bool
	ParseDynamics    bool
}

// WriteResult writes the result to disk per the Request's settings and
// returns the paths actually written (spec §4.4: "Both formats may be
// emitted for the same job if both settings are true").
func (w *Writer) WriteResult(req Request, result *queryclient.Result) ([]string, error) {
	dir := Layout(req.OutputFolder, req.SubscriptionName, req.WorkspaceName, req.DispatchTS)
	stem := FileStem(req.JobName, req.QueryName)

	var written []string
	if req.ExportCSV {
		path := OutputPath(dir, stem, "csv")
		data, err := EncodeCSV(result)
		if err != nil {
			return written, fmt.Errorf("encode csv for job %q: %w", req.JobName, err)
		}
		if err := writeAtomic(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write csv for job %q: %w", req.JobName, err)
		}
		written = append(written, path)
	}
	if req.ExportJSON {
		path := OutputPath(dir, stem, "json")
		data, err := EncodeJSON(result)
		if err != nil {
			return written, fmt.Errorf("encode json for job %q: %w", req.JobName, err)
		}
		if err := writeAtomic(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write json for job %q: %w", req.JobName, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// EncodeCSV renders a result as RFC 4180 CSV: header row of column names,
// booleans as true/false, nulls as empty, timestamps ISO-8601 UTC,
// dynamics as compact JSON strings (spec §4.4, §6).
func EncodeCSV(result *queryclient.Result) ([]byte, error) {
	var buf strings.Builder
	cw := csv.NewWriter(&buf)
	cw.UseCRLF = false

	header := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return nil, err
	}

	for _, row := range result.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			s, err := formatCSVValue(v)
			if err != nil {
				return nil, err
			}
			record[i] = s
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func formatCSVValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case time.Time:
		return val.UTC().Format(time.RFC3339), nil
	case string:
		return val, nil
	case json.RawMessage:
		return string(val), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("format csv value %v: %w", v, err)
		}
		return string(b), nil
	}
}

// EncodeJSON renders a result as a JSON array of objects, one per row,
// column names as keys; dynamics are structured if the column carried a
// decoded value already, or left as raw strings otherwise (spec §4.4).
func EncodeJSON(result *queryclient.Result) ([]byte, error) {
	rows := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		obj := make(map[string]any, len(result.Columns))
		for i, col := range result.Columns {
			if i < len(row) {
				obj[col.Name] = row[i]
			}
		}
		rows = append(rows, obj)
	}
	return json.Marshal(rows)
}
