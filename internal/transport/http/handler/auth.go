package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/app"
	"assignment-helper/internal/model"
	"assignment-helper/internal/transport/http/middleware"
	"assignment-helper/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,max=1024"`
	FullName  string `json:"full_name" binding:"required,max=255"`
	StudentID string `json:"student_id" binding:"required,max=64"`
}

// LoginRequest is form-encoded, matching OAuth2 password-style clients.
type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type StudentResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	student, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		StudentID: req.StudentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, "Email already registered")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "register failed")
		}
		return
	}

	response.OK(c, toStudentResponse(student))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredential):
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "Incorrect email or password")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		middleware.Unauthorized(c, "could not validate credentials")
		return
	}

	student, err := h.authService.GetStudentByID(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, app.ErrUnauthorized) {
			middleware.Unauthorized(c, "could not validate credentials")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch current student failed")
		return
	}

	response.OK(c, toStudentResponse(student))
}

func toStudentResponse(s *model.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Email:     s.Email,
		FullName:  s.FullName,
		StudentID: s.StudentID,
		CreatedAt: s.CreatedAt,
	}
}
