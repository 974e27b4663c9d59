package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fmontilla/users-system/internal/models"
	"github.com/fmontilla/users-system/internal/services"
	"github.com/fmontilla/users-system/pkg/response"
)

// UserHandler exposes the authenticated CRUD surface over user records.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	IsActive *bool  `json:"is_active"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	IsActive *bool   `json:"is_active"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Total: len(users)})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
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

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Create(requestContext(c), services.CreateUserInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     models.Role(body.Role),
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	input := services.UpdateUserInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		IsActive: body.IsActive,
	}
	if body.Role != nil {
		role := models.Role(*body.Role)
		input.Role = &role
	}

	user, err := h.users.Update(requestContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.users.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
