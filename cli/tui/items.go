package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/revelare/revelare-web/pkg/models"
)

type bookItem struct {
	book models.Book
}

func (i bookItem) Title() string {
	return i.book.Title
}

func (i bookItem) Description() string {
	return fmt.Sprintf("%d%% similar · #%d", i.book.SimilarityPercent(), i.book.ID)
}

func (i bookItem) FilterValue() string {
	return i.book.Title
}

var _ list.Item = bookItem{}
