package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// layer0Sanitize produces a clean, encoding-safe string for the
// segmentation layer. It preserves every semantically load-bearing
// character (% [ ] ( ) + /) and only normalizes encoding and casing.
func layer0Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	normalized := norm.NFC.String(raw)
	return strings.ToLower(strings.TrimSpace(normalized))
}
