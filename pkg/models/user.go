package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RegisteredDate formats CreatedAt as "02 Jan 2006". Unparseable values are
// returned as is.
func (u User) RegisteredDate() string {
	if u.CreatedAt == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, u.CreatedAt); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return u.CreatedAt
}

type SignUpRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse is returned by sign up, sign in and the Google exchange.
type AuthResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	User   *User  `json:"user"`
}

// Session converts a successful auth exchange into the session principal.
func (r AuthResponse) Session() SessionUser {
	s := SessionUser{AccessToken: r.Token}
	if r.User != nil {
		s.ID = strconv.Itoa(r.User.ID)
		s.Name = r.User.Name
		s.Email = r.User.Email
		s.Role = r.User.Role
	}
	return s
}

type UsersResponse struct {
	Status string `json:"status"`
	Data   []User `json:"data"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

func (r UpdateUserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	return nil
}
