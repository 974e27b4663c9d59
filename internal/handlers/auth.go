package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/fmontilla/users-system/internal/auth"
	"github.com/fmontilla/users-system/internal/middleware"
	"github.com/fmontilla/users-system/pkg/errors"
	"github.com/fmontilla/users-system/pkg/response"
)

// AuthHandler manages registration, login and identity lookup.
type AuthHandler struct {
	auth *iauth.AuthService
}

func NewAuthHandler(auth *iauth.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Register(requestContext(c), iauth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Login(requestContext(c), iauth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.auth.CurrentUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
