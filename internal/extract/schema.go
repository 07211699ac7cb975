package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RecordJSONSchema returns the JSON schema every extracted record must match.
func RecordJSONSchema() map[string]any {
	text := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"transaction_date": map[string]any{"type": "string", "minLength": 1},
			"type":             map[string]any{"type": "string", "minLength": 1},
			"client_name":      text,
			"description":      text,
			"amount":           map[string]any{"type": []string{"number", "string"}},
			"payment_method":   text,
		},
		"required": []string{"transaction_date", "type", "amount"},
	}
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		b, err := json.Marshal(RecordJSONSchema())
		if err != nil {
			recordSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			recordSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("record.json")
	})
	return recordSchema, recordSchemaErr
}

var codeFence = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*(.*?)\\s*```\\s*$")

// DecodeResponse parses a response body from the extraction service.
//
// The body must be a JSON array of records. An object with an "error" key
// is a service failure; any other single object is treated as a one-record
// array. Records that do not match RecordJSONSchema are dropped and counted
// in Result.Rejected; a body in which no record matches is an error.
func DecodeResponse(body []byte) (*Result, error) {
	body = bytes.TrimSpace(body)
	if m := codeFence.FindSubmatch(body); m != nil {
		body = m[1]
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		if msg, ok := v["error"]; ok {
			return nil, &ServiceError{Message: fmt.Sprint(msg)}
		}
		items = []any{v}
	default:
		return nil, fmt.Errorf("response is neither an array nor an object")
	}

	schema, err := compiledRecordSchema()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var firstErr error
	for _, item := range items {
		if err := schema.Validate(item); err != nil {
			result.Rejected++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("re-encode record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			result.Rejected++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(items) > 0 && len(result.Records) == 0 {
		return nil, fmt.Errorf("json does not match schema: %w", firstErr)
	}
	return result, nil
}
