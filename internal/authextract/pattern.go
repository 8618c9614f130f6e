package authextract

import "regexp"

// mustCompileTokenPattern matches the storage-key acceptance pattern
// §4.4 documents verbatim.
func mustCompileTokenPattern() *regexp.Regexp {
	return regexp.MustCompile(`(?i)token|auth|session|jwt|access|refresh|csrf|xsrf|key|cred|user|login|bearer`)
}
