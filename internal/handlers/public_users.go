package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fmontilla/users-system/internal/services"
	"github.com/fmontilla/users-system/pkg/response"
)

// PublicUserHandler mirrors the read-only user endpoints without
// authentication. It reuses the cached listings, so anonymous traffic
// never amplifies database load.
type PublicUserHandler struct {
	users *services.UserService
}

func NewPublicUserHandler(users *services.UserService) *PublicUserHandler {
	return &PublicUserHandler{users: users}
}

// GET /api/public/users
func (h *PublicUserHandler) List(c *gin.Context) {
	users, err := h.users.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Total: len(users)})
}

// GET /api/public/users/:id
func (h *PublicUserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.users.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
