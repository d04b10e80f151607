package detail

import (
	"html/template"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	htmlPolicy  = bluemonday.UGCPolicy()
	stripPolicy = bluemonday.StripTagsPolicy()
	converter   = md.NewConverter("", true, nil)
	englishTags = display.English.Tags()
)

// SafeHTML cleans description or table of contents markup from the API
// for embedding in a page.
func SafeHTML(s string) template.HTML {
	return template.HTML(htmlPolicy.Sanitize(s))
}

// PlainText strips all markup.
func PlainText(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// Markdown converts sanitized markup to markdown for terminal rendering.
// Conversion failures fall back to plain text.
func Markdown(s string) string {
	clean := htmlPolicy.Sanitize(s)
	out, err := converter.ConvertString(clean)
	if err != nil {
		return PlainText(s)
	}
	return strings.TrimSpace(out)
}

// LanguageName renders a language code such as "id" or "en-GB" by its
// English name. Unknown codes are returned unchanged.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := englishTags.Name(tag); name != "" {
		return name
	}
	return code
}

// OrDash renders empty fields as "-".
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
