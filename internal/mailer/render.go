package mailer

import (
	"html"
	"regexp"
	"strings"
)

// Email bodies are plain text with a tiny markup subset:
// [text](url), bare http(s) URLs, **bold** and line breaks. Nothing else is interpreted.

var (
	linkPattern = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^\s)]+)\)|(https?://[^\s<]*[^\s<.,;:!?)])`)
	boldPattern = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
)

// RenderHTML escapes body and then applies the markup subset.
func RenderHTML(body string) string {
	escaped := html.EscapeString(normalizeNewlines(body))

	linked := linkPattern.ReplaceAllStringFunc(escaped, func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		if sub[2] != "" {
			return `<a href="` + sub[2] + `">` + sub[1] + `</a>`
		}
		return `<a href="` + sub[3] + `">` + sub[3] + `</a>`
	})

	bolded := boldPattern.ReplaceAllString(linked, "<strong>$1</strong>")
	withBreaks := strings.ReplaceAll(bolded, "\n", "<br>")

	return `<div style="font-family: Arial, sans-serif; line-height: 1.5;">` + withBreaks + `</div>`
}

// RenderPlain turns the markup subset into readable plain text.
func RenderPlain(body string) string {
	out := linkPattern.ReplaceAllStringFunc(normalizeNewlines(body), func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[1] + " (" + sub[2] + ")"
		}
		return m
	})
	return boldPattern.ReplaceAllString(out, "$1")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
