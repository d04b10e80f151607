package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/revelare/revelare-web/pkg/models"
)

// Params is the search state carried in a URL.
type Params struct {
	Query    string
	Scenario models.Scenario
	Page     int
}

// ParseParams reads q, scenario and page. Bad pages become 1 and unknown
// scenarios become the server default.
func ParseParams(v url.Values) Params {
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return Params{
		Query:    strings.TrimSpace(v.Get("q")),
		Scenario: models.ParseScenario(v.Get("scenario")),
		Page:     page,
	}
}

func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Scenario != models.ScenarioDefault {
		v.Set("scenario", string(p.Scenario))
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// SearchURL is the shareable results link.
func SearchURL(query string, scenario models.Scenario, page int) string {
	qs := Params{Query: strings.TrimSpace(query), Scenario: scenario, Page: page}.Values().Encode()
	if qs == "" {
		return "/book"
	}
	return "/book?" + qs
}

// DetailURL links to a book and carries the originating search forward.
func DetailURL(id int, query string, scenario models.Scenario) string {
	base := fmt.Sprintf("/book/%d", id)
	qs := Params{Query: strings.TrimSpace(query), Scenario: scenario}.Values().Encode()
	if qs == "" {
		return base
	}
	return base + "?" + qs
}
