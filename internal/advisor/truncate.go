package advisor

// DefaultHandoffLimit bounds any stage output embedded in a downstream
// prompt. The cut is a plain prefix, not sentence-aware.
const DefaultHandoffLimit = 2000

// TruncateForHandoff returns at most limit characters of s. The input is
// never mutated; a bounded copy is produced. Cutting is rune-based so a
// multi-byte character is never split.
func TruncateForHandoff(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
