// Package keycase converts single attribute keys between the gateway's
// PascalCase wire names and the snake_case names used inside the library.
package keycase

import (
	"regexp"
	"strings"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
	leadingWord     = regexp.MustCompile(`^[a-z\d]*`)
	segment         = regexp.MustCompile(`(?i)(?:_|(/))([a-z\d]*)`)
)

// Underscore turns a wire key into its internal form:
//
//	"CardHolderMessage" -> "card_holder_message"
//	"XMLHttpRequest"    -> "xml_http_request"
//	"Content-Type"      -> "content_type"
func Underscore(key string) string {
	key = acronymBoundary.ReplaceAllString(key, "${1}_${2}")
	key = wordBoundary.ReplaceAllString(key, "${1}_${2}")
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ToLower(key)
}

// Camelize turns an internal key into its wire form:
//
//	"card_holder_message" -> "CardHolderMessage"
//	"admin/user"          -> "Admin::User"
func Camelize(key string) string {
	key = leadingWord.ReplaceAllStringFunc(key, capitalize)
	key = segment.ReplaceAllStringFunc(key, func(match string) string {
		parts := segment.FindStringSubmatch(match)
		return parts[1] + capitalize(parts[2])
	})
	return strings.ReplaceAll(key, "/", "::")
}

// capitalize upper-cases the first byte and lower-cases the rest. Keys are
// ASCII identifiers, so byte indexing is safe here.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
