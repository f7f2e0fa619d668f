package telegram

import (
	"fmt"
	"strings"

	"factcheck-bot/api/internal/analysis"
)

// FormatRecord renders a verdict as Telegram Markdown. Resolved sources
// become links; placeholder sources stay as bare annotations.
func FormatRecord(rec *analysis.VerdictRecord) string {
	verdict := rec.Verdict
	if verdict == "" {
		verdict = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Verdict: %s\n\n", verdict)
	fmt.Fprintf(&b, "Confidence: %d%%\n\n", int(rec.Confidence*100))
	fmt.Fprintf(&b, "Reason: %s\n", rec.Reason)

	if len(rec.Sources) > 0 {
		b.WriteString("\nSources:\n")
		for _, src := range rec.Sources {
			if src.Ref == "" {
				fmt.Fprintf(&b, "- %s\n", src.Title)
			} else {
				fmt.Fprintf(&b, "- [%s](%s)\n", src.Title, src.Ref)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
