// Package util provides small string helpers shared by the seed loader,
// search index and CLI.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wordSeparatorRe   = regexp.MustCompile(`[\s_/&+]+`)
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	multipleDashRe    = regexp.MustCompile(`-+`)
)

// FoldAccents strips combining marks, e.g. "Música Popular" -> "Musica Popular".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// GenreSlug converts a genre name into a stable ASCII slug.
//
//	"Post-Punk"       -> "post-punk"
//	"Drum & Bass"     -> "drum-bass"
//	"Música Popular"  -> "musica-popular"
//	"  multi   word " -> "multi-word"
func GenreSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(FoldAccents(name)))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
