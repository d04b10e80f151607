package models

// SessionUser is the signed-in principal carried by the session token.
type SessionUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"-"`
}

func (s *SessionUser) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *SessionUser) IsAuthenticated() bool {
	return s != nil && s.ID != "" && s.AccessToken != ""
}

type Bookmark struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	BookID    int    `json:"book_id"`
	BookTitle string `json:"book_title"`
	BookCover string `json:"book_cover"`
	CreatedAt string `json:"created_at"`
}

type BookmarkListResponse struct {
	Status string     `json:"status"`
	Data   []Bookmark `json:"data"`
}

type AddBookmarkRequest struct {
	UserID int `json:"user_id"`
	BookID int `json:"book_id"`
}

// StatusResponse is the body of mutations that only report a status.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RemoveBookmark returns the list without the bookmark id. Other entries
// keep their order.
func RemoveBookmark(list []Bookmark, id int) []Bookmark {
	out := make([]Bookmark, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
