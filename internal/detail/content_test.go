package detail_test

import (
	"strings"
	"testing"

	"github.com/revelare/revelare-web/internal/detail"
	"github.com/stretchr/testify/assert"
)

func TestSafeHTML_StripsScripts(t *testing.T) {
	out := string(detail.SafeHTML(`<p>Intro</p><script>alert(1)</script>`))
	assert.Contains(t, out, "<p>Intro</p>")
	assert.NotContains(t, out, "script")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Chapter 1", detail.PlainText("<b>Chapter 1</b>"))
}

func TestMarkdown(t *testing.T) {
	out := detail.Markdown("<p>An <strong>essay</strong></p>")
	assert.True(t, strings.Contains(out, "**essay**"), out)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", detail.LanguageName("en"))
	assert.Equal(t, "Indonesian", detail.LanguageName("id"))
	assert.Equal(t, "", detail.LanguageName(""))
	assert.Equal(t, "not a tag!", detail.LanguageName("not a tag!"))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", detail.OrDash(" "))
	assert.Equal(t, "Penguin", detail.OrDash("Penguin"))
}
