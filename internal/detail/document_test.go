package detail_test

import (
	"errors"
	"testing"

	"github.com/revelare/revelare-web/internal/detail"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDocument(t *testing.T) {
	res := &detail.Result{
		Book: &models.BookDetail{
			ID:          4,
			Title:       "The Wealth of Nations",
			Editors:     "E. Cannan",
			Language:    "en",
			Description: "<p>An <b>inquiry</b></p><script>x()</script>",
			Subject:     "Economics, Trade",
		},
		Query:   "economics",
		Similar: []models.Book{{ID: 9, Title: "Capital", AverageSimilarity: 0.456}},
	}
	doc := res.Document()
	assert.Contains(t, doc, "# The Wealth of Nations")
	assert.Contains(t, doc, "**Author:** E. Cannan")
	assert.Contains(t, doc, "**Language:** English")
	assert.Contains(t, doc, "**inquiry**")
	assert.NotContains(t, doc, "<script")
	assert.NotContains(t, doc, "x()")
	assert.Contains(t, doc, "*Economics · Trade*")
	assert.Contains(t, doc, "- Capital (#9, 46%)")
}

func TestDocument_Fallbacks(t *testing.T) {
	res := &detail.Result{Book: &models.BookDetail{Title: "Untitled"}}
	doc := res.Document()
	assert.Contains(t, doc, "No description available.")
	assert.Contains(t, doc, "**Author:** Unknown")
	assert.Contains(t, doc, "**Published:** -")
	assert.NotContains(t, doc, "Similar books")

	res.Query = "x"
	res.SimilarErr = errors.New("boom")
	assert.Contains(t, res.Document(), "Similar books are unavailable right now.")
}
