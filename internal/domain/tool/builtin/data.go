package builtin

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// JSONParse parses a JSON document and optionally checks that a set of
// required fields is present.
type JSONParse struct{}

func NewJSONParse() *JSONParse { return &JSONParse{} }

func (j *JSONParse) Schema() tool.Schema {
	return tool.Schema{
		Name:        "json_parse",
		Description: "Parse a JSON string into structured data, optionally validating required fields",
		Params: map[string]tool.Param{
			"json_string": {
				Type:        tool.TypeString,
				Description: "JSON document to parse",
				Required:    true,
			},
			"validate_schema": {
				Type:        tool.TypeObject,
				Description: "Optional schema with a \"required\" list of top-level field names",
			},
		},
	}
}

func (j *JSONParse) Timeout() time.Duration { return 5 * time.Second }

type jsonParseRequest struct {
	JSONString     string         `json:"json_string"`
	ValidateSchema map[string]any `json:"validate_schema"`
}

func (j *JSONParse) Execute(_ context.Context, params map[string]any) tool.Result {
	var req jsonParseRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid json_parse params: %v", err)
	}

	var parsed any
	if err := json.Unmarshal([]byte(req.JSONString), &parsed); err != nil {
		return tool.Errorf("JSON parse error: %v", err)
	}

	meta := map[string]any{
		"type": jsonTypeName(parsed),
		"size": len(req.JSONString),
	}

	if missing := missingFields(parsed, req.ValidateSchema); len(missing) > 0 {
		return tool.Result{
			Status:   tool.StatusPartial,
			Data:     parsed,
			Error:    "missing required fields: " + strings.Join(missing, ", "),
			Metadata: meta,
		}
	}

	return tool.SuccessWithMeta(parsed, meta)
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// missingFields returns required field names the parsed document lacks.
// Validation only applies when the document is an object and the schema
// carries a "required" list.
func missingFields(parsed any, schema map[string]any) []string {
	required, _ := schema["required"].([]any)
	if len(required) == 0 {
		return nil
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	var missing []string
	for _, f := range required {
		name, ok := f.(string)
		if !ok {
			continue
		}
		if _, present := obj[name]; !present {
			missing = append(missing, name)
		}
	}
	return missing
}

// JSONQuery extracts a value from structured data using a dot-separated path
// such as "users.0.name". Numeric segments index into arrays.
type JSONQuery struct{}

func NewJSONQuery() *JSONQuery { return &JSONQuery{} }

func (j *JSONQuery) Schema() tool.Schema {
	return tool.Schema{
		Name:        "json_query",
		Description: "Extract a value from JSON data using a dot-separated path, e.g. \"users.0.name\"",
		Params: map[string]tool.Param{
			"data": {
				Description: "JSON document, as a string or already-parsed structure",
				Required:    true,
			},
			"path": {
				Type:        tool.TypeString,
				Description: "Dot-separated path to the value",
				Required:    true,
			},
		},
	}
}

func (j *JSONQuery) Timeout() time.Duration { return 5 * time.Second }

type jsonQueryRequest struct {
	Data any    `json:"data"`
	Path string `json:"path"`
}

func (j *JSONQuery) Execute(_ context.Context, params map[string]any) tool.Result {
	var req jsonQueryRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid json_query params: %v", err)
	}

	doc := req.Data
	if s, ok := doc.(string); ok {
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return tool.Errorf("JSON parse error: %v", err)
		}
	}

	value, ok := queryPath(doc, req.Path)
	if !ok {
		return tool.Errorf("path not found: %s", req.Path)
	}

	return tool.SuccessWithMeta(value, map[string]any{"path": req.Path})
}

func queryPath(doc any, path string) (any, bool) {
	current := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// DataTransform converts tabular data between JSON and CSV representations.
type DataTransform struct{}

func NewDataTransform() *DataTransform { return &DataTransform{} }

func (d *DataTransform) Schema() tool.Schema {
	return tool.Schema{
		Name:        "data_transform",
		Description: "Convert data between JSON and CSV formats",
		Params: map[string]tool.Param{
			"data": {
				Description: "Input data: a string for csv, a string or parsed structure for json",
				Required:    true,
			},
			"from_format": {
				Type:        tool.TypeString,
				Description: "Format of the input data",
				Enum:        []string{"json", "csv"},
				Required:    true,
			},
			"to_format": {
				Type:        tool.TypeString,
				Description: "Format to convert to",
				Enum:        []string{"json", "csv"},
				Required:    true,
			},
		},
	}
}

func (d *DataTransform) Timeout() time.Duration { return 5 * time.Second }

type dataTransformRequest struct {
	Data       any    `json:"data"`
	FromFormat string `json:"from_format"`
	ToFormat   string `json:"to_format"`
}

func (d *DataTransform) Execute(_ context.Context, params map[string]any) tool.Result {
	var req dataTransformRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid data_transform params: %v", err)
	}

	var doc any
	switch req.FromFormat {
	case "json":
		doc = req.Data
		if s, ok := doc.(string); ok {
			if err := json.Unmarshal([]byte(s), &doc); err != nil {
				return tool.Errorf("JSON parse error: %v", err)
			}
		}
	case "csv":
		s, ok := req.Data.(string)
		if !ok {
			return tool.Errorf("csv input must be a string")
		}
		rows, err := parseCSV(s)
		if err != nil {
			return tool.Errorf("CSV parse error: %v", err)
		}
		doc = rows
	default:
		return tool.Errorf("unsupported from_format: %s", req.FromFormat)
	}

	var out string
	switch req.ToFormat {
	case "json":
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return tool.Errorf("cannot render json: %v", err)
		}
		out = string(b)
	case "csv":
		rendered, err := renderCSV(doc)
		if err != nil {
			return tool.Errorf("cannot render csv: %v", err)
		}
		out = rendered
	default:
		return tool.Errorf("unsupported to_format: %s", req.ToFormat)
	}

	return tool.SuccessWithMeta(out, map[string]any{
		"from_format": req.FromFormat,
		"to_format":   req.ToFormat,
	})
}

// parseCSV reads the first record as a header and returns the remaining
// records as header-keyed rows.
func parseCSV(s string) ([]map[string]any, error) {
	r := csv.NewReader(strings.NewReader(s))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []map[string]any{}, nil
	}
	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// renderCSV writes object rows as CSV, columns taken from the first row's
// keys in sorted order.
func renderCSV(doc any) (string, error) {
	var rows []map[string]any
	switch v := doc.(type) {
	case []map[string]any:
		rows = v
	case []any:
		for _, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return "", fmt.Errorf("csv rows must be objects, got %T", item)
			}
			rows = append(rows, row)
		}
	case map[string]any:
		rows = []map[string]any{v}
	default:
		return "", fmt.Errorf("cannot render %T as csv", doc)
	}
	if len(rows) == 0 {
		return "", nil
	}

	header := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		header = append(header, col)
	}
	sort.Strings(header)

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range rows {
		rec := make([]string, len(header))
		for i, col := range header {
			if v, ok := row[col]; ok {
				rec[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
