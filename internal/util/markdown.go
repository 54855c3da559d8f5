package util

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var htmlTagRe = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagRe.MatchString(strings.ToLower(s))
}

// MarkdownDescription returns a genre description as Markdown. Descriptions
// pasted from web pages arrive as HTML and are converted; anything else is
// returned trimmed. A failed conversion keeps the input.
func MarkdownDescription(s string) string {
	s = strings.TrimSpace(s)
	if !ContainsHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}
