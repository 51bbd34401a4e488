package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teemow/sheetsmcp/internal/sheets"
)

// Result is the outcome of one item in a batch. Status is either "success"
// or "error"; exactly one of Result and Error is set.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewSuccessResult creates a success result for the given item.
func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: "success", Result: message}
}

// NewErrorResult creates an error result for the given item.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: "error", Error: err.Error()}
}

// BatchResult aggregates per-item results with success/failure tallies.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray accepts a tool argument that may be a single string or
// an array of strings, and returns it as a slice. A string that looks like a
// JSON array is decoded, since some MCP clients serialize array arguments
// that way. Empty inputs and empty elements are rejected.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(v, "[") {
			var decoded []string
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				if len(decoded) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				return decoded, nil
			}
		}
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		items := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			items = append(items, str)
		}
		return items, nil
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

// ProcessBatch runs fn for each item in order and collects one result per
// item. A failing item does not stop the rest of the batch.
func ProcessBatch(ids []string, fn func(id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if res, err := fn(id); err != nil {
			results = append(results, NewErrorResult(id, err))
		} else {
			results = append(results, NewSuccessResult(id, res))
		}
	}
	return results
}

// FromDispatchResults converts dispatcher outcomes into batch results.
// Each entry is identified by its position and operation kind so callers
// can correlate failures with the operations they submitted.
func FromDispatchResults(outcomes []sheets.DispatchResult) []Result {
	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		id := fmt.Sprintf("%d:%s", o.Index, o.Kind)
		if !o.Applied {
			results = append(results, Result{ID: id, Status: "error", Error: o.Error})
			continue
		}
		detail := o.Detail
		if detail == "" {
			detail = "applied"
		}
		results = append(results, NewSuccessResult(id, detail))
	}
	return results
}

// FormatResults renders results as indented JSON with tallies.
func FormatResults(results []Result) string {
	br := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == "success" {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}
