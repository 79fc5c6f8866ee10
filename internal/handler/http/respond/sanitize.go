package respond

import (
	"regexp"
)

var (
	// Credential patterns, most specific first so a masked string is never
	// re-matched by a broader pattern.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	hfTokenPattern      = regexp.MustCompile(`hf_[a-zA-Z0-9]{10,}`)

	// Passwords embedded in connection URLs.
	urlPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = hfTokenPattern.ReplaceAllString(msg, "hf_****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
