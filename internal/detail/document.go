package detail

import (
	"fmt"
	"strings"
)

// Document renders the result as a markdown page for terminal display.
func (r *Result) Document() string {
	b := r.Book
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	fmt.Fprintf(&sb, "**Author:** %s  \n", b.AuthorDisplay())
	fmt.Fprintf(&sb, "**Publisher:** %s  \n", OrDash(b.Publisher))
	published := "-"
	if b.Published != 0 {
		published = fmt.Sprint(b.Published)
	}
	fmt.Fprintf(&sb, "**Published:** %s  \n", published)
	fmt.Fprintf(&sb, "**Language:** %s  \n", OrDash(LanguageName(b.Language)))
	fmt.Fprintf(&sb, "**ISBN:** %s\n\n", OrDash(b.ISBN))
	if subjects := b.Subjects(); len(subjects) > 0 {
		fmt.Fprintf(&sb, "*%s*\n\n", strings.Join(subjects, " · "))
	}

	sb.WriteString("## Description\n\n")
	if desc := Markdown(b.Description); desc != "" {
		sb.WriteString(desc + "\n\n")
	} else {
		sb.WriteString("No description available.\n\n")
	}
	if toc := Markdown(b.TableOfContents); toc != "" {
		sb.WriteString("## Table of Contents\n\n" + toc + "\n\n")
	}
	if b.PDFLink != "" {
		fmt.Fprintf(&sb, "PDF: %s\n\n", b.PDFLink)
	}

	if r.Query == "" {
		return sb.String()
	}
	sb.WriteString("## Similar books\n\n")
	switch {
	case r.SimilarErr != nil:
		sb.WriteString("Similar books are unavailable right now.\n")
	case len(r.Similar) == 0:
		sb.WriteString("No similar books found.\n")
	default:
		for _, s := range r.Similar {
			fmt.Fprintf(&sb, "- %s (#%d, %d%%)\n", s.Title, s.ID, s.SimilarityPercent())
		}
	}
	return sb.String()
}
