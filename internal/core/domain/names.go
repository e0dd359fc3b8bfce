package domain

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// GenerateSlug creates a URL-friendly slug from a name
// Converts "Letter A" -> "letter-a"
func GenerateSlug(name string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// DisplayName derives a human readable name from a file name
// Converts "letter_a.jpg" -> "Letter A"
func DisplayName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.Fields(nonAlnum.ReplaceAllString(base, " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
