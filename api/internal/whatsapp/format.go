package whatsapp

import (
	"fmt"
	"strings"

	"factcheck-bot/api/internal/analysis"
)

// FailureText is the best-effort push when delivery of a real result
// already failed.
const FailureText = "❌ Sorry, I couldn't analyze that content. Please try again with a different article or image."

// FormatRecord renders a verdict for WhatsApp: bold markers, verdict
// emoji, percentage confidence and a bulleted source list. Unresolved
// placeholder sources show as bare titles.
func FormatRecord(rec *analysis.VerdictRecord) string {
	verdict := rec.Verdict
	if verdict == "" {
		verdict = "Unknown"
	}
	reason := rec.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	var emoji string
	switch verdict {
	case analysis.VerdictReal:
		emoji = "✅"
	case analysis.VerdictFake:
		emoji = "❌"
	default:
		emoji = "❓"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *VERDICT: %s*\n\n", emoji, strings.ToUpper(verdict))
	fmt.Fprintf(&b, "*Confidence:* %d%%\n\n", int(rec.Confidence*100))
	fmt.Fprintf(&b, "*Reason:* %s\n\n", reason)

	if len(rec.Sources) > 0 {
		b.WriteString("*Sources:*\n")
		for _, src := range rec.Sources {
			if src.Ref == "" {
				fmt.Fprintf(&b, "• %s\n", src.Title)
			} else {
				fmt.Fprintf(&b, "• %s: %s\n", src.Title, src.Ref)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
