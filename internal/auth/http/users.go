package http

import (
	"net/http"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
	"github.com/shopking/auth/pkg/idx"
)

// UsersHandler serves the admin user management endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleList handles GET /api/users
//
//	@Summary		List users
//	@Description	Lists every account, newest first. Requires the admin role.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserListResponse	"All users"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"forbidden"
//	@Failure		500	{object}	authsdk.ErrorResponse		"server_error"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.UserListResponse{Users: make([]authsdk.UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/users/{id}
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"User ID"
//	@Success		200	{object}	authsdk.UserResponse	"The user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"forbidden"
//	@Failure		404	{object}	authsdk.ErrorResponse	"not_found"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !idx.Valid(id) {
		writeError(w, r, service.ErrNotFound)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete handles DELETE /api/users/{id}
//
//	@Summary		Delete user
//	@Description	Deletes an account. Admins cannot delete themselves.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		400	{object}	authsdk.ErrorResponse	"invalid_input"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"forbidden"
//	@Failure		404	{object}	authsdk.ErrorResponse	"not_found"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := principalClaims(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	id := r.PathValue("id")
	if !idx.Valid(id) {
		writeError(w, r, service.ErrNotFound)
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), claims.SubjectID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
