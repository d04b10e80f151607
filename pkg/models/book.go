package models

import (
	"math"
	"strings"
)

// Book is one ranked item of a search result page.
type Book struct {
	ID                int      `json:"id"`
	Title             string   `json:"title"`
	Cover             string   `json:"cover"`
	AverageSimilarity float64  `json:"average_similarity"`
	SimilarityCount   int      `json:"similarity_count"`
	StdDev            *float64 `json:"std_dev,omitempty"`
}

// SimilarityPercent renders the similarity score as a whole percentage.
func (b Book) SimilarityPercent() int {
	p := int(math.Round(b.AverageSimilarity * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

type BookDetail struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	Editors         string `json:"editors"`
	Description     string `json:"description"`
	CoverLink       string `json:"cover_link"`
	PDFLink         string `json:"pdf_link"`
	Publisher       string `json:"publisher"`
	Published       int    `json:"published"`
	Language        string `json:"language"`
	ISBN            string `json:"isbn"`
	Subject         string `json:"subject"`
	TableOfContents string `json:"table_of_contents"`
}

// AuthorDisplay falls back from authors to editors to "Unknown".
func (d BookDetail) AuthorDisplay() string {
	if s := strings.TrimSpace(d.Authors); s != "" {
		return s
	}
	if s := strings.TrimSpace(d.Editors); s != "" {
		return s
	}
	return "Unknown"
}

// Subjects splits the comma separated subject list.
func (d BookDetail) Subjects() []string {
	var out []string
	for _, s := range strings.Split(d.Subject, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SearchResponse is one page of GET /api/books/search.
type SearchResponse struct {
	Status       string `json:"status"`
	Query        string `json:"query,omitempty"`
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
	Data         []Book `json:"data"`
}

type BookDetailResponse struct {
	Status string     `json:"status"`
	Data   BookDetail `json:"data"`
}

// DashboardBooksResponse is one page of GET /api/dashboard/books.
type DashboardBooksResponse struct {
	Status      string       `json:"status"`
	CurrentPage int          `json:"current_page"`
	TotalPages  int          `json:"total_pages"`
	TotalBooks  int          `json:"total_books"`
	Data        []BookDetail `json:"data"`
}
