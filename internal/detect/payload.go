package detect

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Transaction data arrives either as raw text or base64 of
// "function@arg1@arg2...". A payload is treated as base64 when it
// matches the base64 alphabet and padding, decodes cleanly AND the
// decoded bytes read as text. The last condition keeps plain-text
// payloads whose length happens to be a multiple of 4 (like
// "withdraw") from being garbled into binary.
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// DecodePayload returns the plain-text call payload of a transaction.
func DecodePayload(data []byte) string {
	s := string(data)
	if s == "" {
		return ""
	}
	if len(s)%4 == 0 && base64Pattern.MatchString(s) {
		if decoded, err := base64.StdEncoding.DecodeString(s); err == nil && printableText(decoded) {
			return string(decoded)
		}
	}
	return s
}

// printableText reports whether b is valid UTF-8 made of printable
// runes and ordinary whitespace.
func printableText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// FunctionName extracts the called function from a decoded payload:
// the substring before the first '@' delimiter.
func FunctionName(payload string) string {
	if idx := strings.IndexByte(payload, '@'); idx >= 0 {
		return payload[:idx]
	}
	return payload
}

// Segments splits a decoded payload on the '@' delimiter.
func Segments(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, "@")
}

// normalizeName lowercases a function name and strips underscores so
// "set_owner", "setOwner" and "SETOWNER" compare equal.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// containsAny reports whether s contains at least one of the tokens.
func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// countDistinct returns how many of the tokens occur in s.
func countDistinct(s string, tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			n++
		}
	}
	return n
}

// firstIndexAny returns the smallest index at which any token occurs,
// or -1 when none is present.
func firstIndexAny(s string, tokens []string) int {
	best := -1
	for _, tok := range tokens {
		if idx := strings.Index(s, tok); idx >= 0 && (best == -1 || idx < best) {
			best = idx
		}
	}
	return best
}

// lastIndexAny returns the largest index at which any token occurs,
// or -1 when none is present.
func lastIndexAny(s string, tokens []string) int {
	best := -1
	for _, tok := range tokens {
		if idx := strings.LastIndex(s, tok); idx > best {
			best = idx
		}
	}
	return best
}
