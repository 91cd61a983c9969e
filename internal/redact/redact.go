// Package redact strips sensitive fragments from error text before it is
// logged or echoed in an API response: database connection strings, API
// keys, file paths, raw SQL, and host names. Grading errors in particular
// can carry provider URLs and key material in their wrapped causes.
package redact

import "regexp"

// Redaction placeholders.
const (
	credentialPlaceholder = "[REDACTED_CREDENTIAL]"
	keyPlaceholder        = "[REDACTED_KEY]"
	pathPlaceholder       = "[REDACTED_PATH]"
	sqlPlaceholder        = "[REDACTED_SQL]"
	hostPlaceholder       = "[REDACTED_HOST]"
)

var rules = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), credentialPlaceholder},

	// API keys and tokens in key=value or key: value form.
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), keyPlaceholder},

	// Absolute file paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), pathPlaceholder},

	// SQL fragments surfacing from the database driver.
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*()]+(?:FROM|INTO|SET)(?:[\s\w,*()='"]+)?`), sqlPlaceholder},

	// Host:port endpoints.
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), hostPlaceholder},
}

// String returns s with every sensitive fragment replaced by its
// placeholder.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
