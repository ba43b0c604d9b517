package engine

import (
	"regexp"
	"strings"
)

var (
	scriptTagPattern  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeTagPattern  = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsProtocolPattern = regexp.MustCompile(`(?i)javascript:`)
	eventAttrPattern  = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// Sanitize trims s and strips script and iframe elements, javascript: URLs and
// inline event handler attributes.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = iframeTagPattern.ReplaceAllString(s, "")
	s = jsProtocolPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func sanitizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Sanitize(s)
	}
	return out
}

func sanitizeOptional(s string) *string {
	if s == "" {
		return nil
	}
	clean := Sanitize(s)
	return &clean
}
