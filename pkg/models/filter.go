package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterUsers keeps users whose name contains query, compared case
// insensitively under Unicode case folding.
func FilterUsers(users []User, query string) []User {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(fold.String(u.Name), q) {
			out = append(out, u)
		}
	}
	return out
}

// FindUser returns the user with id, if listed.
func FindUser(users []User, id int) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
