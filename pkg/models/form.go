package models

import (
	"fmt"
	"io"
	"strings"
)

// ValidationError blocks a submission before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type FileUpload struct {
	Filename string
	Content  io.Reader
}

// BookForm is the multipart payload of dashboard book create and edit.
type BookForm struct {
	Title           string `form:"title"`
	Authors         string `form:"authors"`
	Editors         string `form:"editors"`
	Publisher       string `form:"publisher"`
	Published       string `form:"published"`
	ISBN            string `form:"isbn"`
	Description     string `form:"description"`
	TableOfContents string `form:"table_of_contents"`
	PDF             *FileUpload
	Cover           *FileUpload
}

func (f BookForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// Fields returns the text parts in upload order.
func (f BookForm) Fields() [][2]string {
	return [][2]string{
		{"title", f.Title},
		{"authors", f.Authors},
		{"editors", f.Editors},
		{"publisher", f.Publisher},
		{"published", f.Published},
		{"isbn", f.ISBN},
		{"description", f.Description},
		{"table_of_contents", f.TableOfContents},
	}
}

// BookFormFrom prefills an edit form.
func BookFormFrom(d BookDetail) BookForm {
	published := ""
	if d.Published != 0 {
		published = fmt.Sprint(d.Published)
	}
	return BookForm{
		Title:           d.Title,
		Authors:         d.Authors,
		Editors:         d.Editors,
		Publisher:       d.Publisher,
		Published:       published,
		ISBN:            d.ISBN,
		Description:     d.Description,
		TableOfContents: d.TableOfContents,
	}
}
