package ai

import "strings"

// CleanJSON strips markdown code fences some models wrap around JSON
// output. Anything else is returned trimmed and untouched; callers must
// still treat the result as untrusted text.
func CleanJSON(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
