package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/mutation"
	"github.com/revelare/revelare-web/internal/pagination"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/models"
)

// UsersPerPage is the client-side page size of the user list.
const UsersPerPage = 10

func userListBase(search string) string {
	if search == "" {
		return "/dashboard/users"
	}
	return "/dashboard/users?" + url.Values{"search": {search}}.Encode()
}

// DashboardUsers filters the full user list by name and pages it locally.
func (h *Handler) DashboardUsers(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	term := strings.TrimSpace(c.Query("search"))
	data := gin.H{"Title": "Users", "Search": term}

	users, err := h.api.ListUsers(c.Request.Context(), u.AccessToken)
	if err != nil {
		out := readOutcome(err, "Failed to fetch users")
		if out.Unauthorized() {
			h.expire(c)
			return
		}
		h.log.Warn("dashboard_users_failed", "error", err.Error())
		data["Flash"] = view.Now(view.FlashError, out.Toast)
	}

	filtered := models.FilterUsers(users, term)
	controls := pagination.New(queryPage(c), pagination.Pages(len(filtered), UsersPerPage))
	data["Users"] = pagination.Slice(filtered, controls.Current, UsersPerPage)
	data["Pager"] = Pager{Base: userListBase(term), Controls: controls}
	view.Render(c, http.StatusOK, "dashboard_users", data)
}

// EditUser prefills the form from the user list; the API has no single
// user lookup.
func (h *Handler) EditUser(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard/users")
		return
	}
	users, err := h.api.ListUsers(c.Request.Context(), u.AccessToken)
	if errors.Is(err, upstream.ErrUnauthorized) {
		h.expire(c)
		return
	}
	if err != nil {
		h.log.Warn("user_edit_load_failed", "id", id, "error", err.Error())
		view.Error(c, http.StatusBadGateway, "Failed to fetch users")
		return
	}
	target, found := models.FindUser(users, id)
	if !found {
		view.Error(c, http.StatusNotFound, "User not found")
		return
	}
	view.Render(c, http.StatusOK, "user_form", gin.H{
		"Title":  "Edit user",
		"Action": "/dashboard/users/" + strconv.Itoa(id),
		"Form":   models.UpdateUserRequest{Name: target.Name, Email: target.Email},
	})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard/users")
		return
	}
	req := models.UpdateUserRequest{
		Name:     strings.TrimSpace(c.PostForm("name")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
	out := h.submit(c, "user_update:"+strconv.Itoa(id), "User updated successfully", "Failed to update user", func(ctx context.Context) error {
		if err := req.Validate(); err != nil {
			return err
		}
		return h.api.UpdateUser(ctx, u.AccessToken, id, req)
	})
	switch out.Kind {
	case mutation.KindUnauthorized:
		h.expire(c)
		return
	case mutation.KindSuccess:
		flashOutcome(c, out)
		c.Redirect(http.StatusSeeOther, "/dashboard/users")
		return
	}
	status := http.StatusBadGateway
	switch out.Kind {
	case mutation.KindValidation:
		status = http.StatusUnprocessableEntity
	case mutation.KindBusy:
		status = http.StatusConflict
	}
	req.Password = ""
	view.Render(c, status, "user_form", gin.H{
		"Title":  "Edit user",
		"Action": "/dashboard/users/" + strconv.Itoa(id),
		"Form":   req,
		"Flash":  view.Now(view.FlashError, out.Toast),
	})
}

func (h *Handler) ConfirmDeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard/users")
		return
	}
	view.Render(c, http.StatusOK, "confirm", gin.H{
		"Title":   "Delete user",
		"Message": "This user and their bookmarks will be deleted. Continue?",
		"Action":  "/dashboard/users/" + strconv.Itoa(id) + "/delete",
		"Cancel":  "/dashboard/users",
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	u, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok || !confirmed(c) {
		c.Redirect(http.StatusSeeOther, "/dashboard/users")
		return
	}
	out := h.submit(c, "user_delete", "User deleted successfully", "Failed to delete user", func(ctx context.Context) error {
		return h.api.DeleteUser(ctx, u.AccessToken, id)
	})
	if out.Unauthorized() {
		h.expire(c)
		return
	}
	flashOutcome(c, out)
	c.Redirect(http.StatusSeeOther, "/dashboard/users")
}
