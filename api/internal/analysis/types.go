// Package analysis holds the core claim-analysis pipeline: extracting a
// structured verdict from a raw model reply, normalizing its sources,
// translating the human-readable fields and orchestrating the whole run.
package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Verdict values. VerdictError is synthesized locally when the pipeline
// fails; the model itself never returns it.
const (
	VerdictReal      = "Real"
	VerdictFake      = "Fake"
	VerdictUncertain = "Uncertain"
	VerdictError     = "Error"
)

// Source is one citation backing a verdict.
type Source struct {
	Title string
	Ref   string
}

// SourceList keeps citations in the order the model produced them.
// JSON shape is an object {title: ref, ...}; a plain Go map would lose
// the order, so marshalling is done by hand.
type SourceList []Source

func (s SourceList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, src := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(src.Title)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(src.Ref)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *SourceList) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		// models sometimes emit "sources": [] or a bare string; treat as empty
		*s = nil
		return nil
	}
	out := make(SourceList, 0, 4)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		title, _ := kt.(string)
		var ref any
		if err := dec.Decode(&ref); err != nil {
			return err
		}
		out = append(out, Source{Title: title, Ref: stringify(ref)})
	}
	*s = out
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		// numeric placeholder like "sources": {"Ref": 12}
		return fmt.Sprintf("%v", t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Get returns the ref for a title, for tests and formatting.
func (s SourceList) Get(title string) (string, bool) {
	for _, src := range s {
		if src.Title == title {
			return src.Ref, true
		}
	}
	return "", false
}

// VerdictRecord is the structured outcome of one analysis. It lives only
// for the duration of a request or a background delivery and is never
// shared between goroutines.
type VerdictRecord struct {
	Verdict          string     `json:"verdict"`
	Confidence       float64    `json:"confidence"`
	Reason           string     `json:"reason"`
	Sources          SourceList `json:"sources"`
	DetectedLanguage string     `json:"detected_language,omitempty"`
}

// ErrorRecord builds the uniform failure-shaped record the pipeline
// falls back to whenever the oracle or the extraction gives up.
func ErrorRecord(reason string) *VerdictRecord {
	return &VerdictRecord{
		Verdict:    VerdictError,
		Confidence: 0,
		Reason:     reason,
		Sources:    SourceList{},
	}
}

// ErrNoInput is returned when a request carries neither text nor image.
var ErrNoInput = errors.New("either text or image must be provided")

// Request is the normalized input to the orchestrator. ImageSource may be
// an http(s) URL or a local file path; ImageData takes precedence when set.
type Request struct {
	Text           string
	ImageSource    string
	ImageData      []byte
	TargetLanguage string
}

// Validate enforces the at-least-one-of invariant before any oracle call.
func (r Request) Validate() error {
	if r.Text == "" && r.ImageSource == "" && len(r.ImageData) == 0 {
		return ErrNoInput
	}
	return nil
}
