package analysis

import "strings"

// Model-provided citations are unreliable: numeric placeholders, bare
// names, truncated links. ResolveSources rewrites the record's source list
// so that every citation is either a plain annotation or something
// clickable. Idempotent: resolved refs are fixed points.
func ResolveSources(rec *VerdictRecord, originalQuery string) {
	for i, src := range rec.Sources {
		ref := strings.TrimSpace(src.Ref)
		switch {
		case ref == "" || len(ref) < 5 || isDigits(ref):
			// placeholder, keep title only
			rec.Sources[i].Ref = ""
		case !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://"):
			rec.Sources[i].Ref = searchURL(src.Title, originalQuery)
		default:
			rec.Sources[i].Ref = ref
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func searchURL(title, query string) string {
	q := plusJoin(title)
	if extra := plusJoin(query); extra != "" {
		q += "+" + extra
	}
	return "https://www.google.com/search?q=" + q
}

func plusJoin(s string) string {
	return strings.Join(strings.Fields(s), "+")
}
