package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"factcheck-bot/api/internal/analysis"
)

func TestFormatRecord(t *testing.T) {
	rec := &analysis.VerdictRecord{
		Verdict:    analysis.VerdictFake,
		Confidence: 0.85,
		Reason:     "The article contains misleading information.",
		Sources: analysis.SourceList{
			{Title: "Snopes", Ref: "https://snopes.com/fact-check"},
			{Title: "Unverified archive", Ref: ""},
		},
	}
	out := FormatRecord(rec)
	assert.Contains(t, out, "Verdict: Fake")
	assert.Contains(t, out, "Confidence: 85%")
	assert.Contains(t, out, "Reason: The article contains misleading information.")
	assert.Contains(t, out, "- [Snopes](https://snopes.com/fact-check)")
	assert.Contains(t, out, "- Unverified archive")
	assert.NotContains(t, out, "[Unverified archive]")
}

func TestFormatRecordEmptyVerdict(t *testing.T) {
	out := FormatRecord(&analysis.VerdictRecord{})
	assert.Contains(t, out, "Verdict: Unknown")
	assert.NotContains(t, out, "Sources:")
}
