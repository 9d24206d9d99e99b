// Package redact provides utilities for redacting sensitive information from strings
// before they are logged. Storage drivers tend to echo connection strings,
// hostnames and credentials in their error text; the API layer passes every
// logged error through Error so that none of that reaches log sinks verbatim.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules are applied in order; earlier rules remove text later rules would
// otherwise partially match (e.g. the userinfo of a connection URI).
var rules = []rule{
	{
		// scheme://user:pass@ in Mongo, Postgres, Redis and MySQL URIs
		pattern:     regexp.MustCompile(`(?i)\b(?:mongodb(?:\+srv)?|postgres(?:ql)?|rediss?|mysql)://[^\s@/]+@`),
		replacement: RedactedCredentialPlaceholder,
	},
	{
		// Azure Storage connection string keys and SAS signatures
		pattern:     regexp.MustCompile(`(?i)\b(AccountKey|SharedAccessSignature|sig)=[^;&\s]+`),
		replacement: "${1}=" + RedactedKeyPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[=:]\s*[^\s&;'"]+`),
		replacement: RedactedCredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		replacement: RedactedJWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: RedactedEmailPlaceholder,
	},
	{
		// host:port where host is a dotted name or an IPv4 address
		pattern:     regexp.MustCompile(`\b(?:(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}|\d{1,3}(?:\.\d{1,3}){3}):\d{1,5}\b`),
		replacement: RedactedHostPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:/[\w.-]+){2,}`),
		replacement: RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
