package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"factcheck-bot/api/internal/util"
)

// ErrExtraction means the model replied but nothing JSON-shaped could be
// recovered from the reply. Callers pick the user-facing fallback.
var ErrExtraction = errors.New("no verdict JSON in model reply")

// Extract parses a raw model reply into a VerdictRecord. Strict parse
// first; if the JSON is wrapped in prose or code fences, retry on the
// substring between the first '{' and the last '}'. Parsed records are
// deliberately not validated against the schema: missing fields stay at
// their zero values and defaults are applied at formatting time.
func Extract(raw string) (*VerdictRecord, error) {
	raw = util.StripCodeFences(raw)

	var rec VerdictRecord
	if err := json.Unmarshal([]byte(raw), &rec); err == nil {
		return &rec, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, ErrExtraction
	}
	rec = VerdictRecord{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &rec); err != nil {
		return nil, ErrExtraction
	}
	return &rec, nil
}
