package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"teacher_portal/internal/model"
	"teacher_portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserHandler handles user directory requests
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// bindingErrors turns a gin binding failure into structured field errors
func bindingErrors(err error) []gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, gin.H{
				"field": fe.Field(),
				"rule":  fe.Tag(),
				"value": fe.Param(),
			})
		}
		return out
	}
	return []gin.H{{"detail": err.Error()}}
}

// CreateUser creates a new user account
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, bindingErrors(err))
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"detail": "User with this email or mobile already exists"})
			return
		}
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, model.NewUserResponse(user))
}

// ListUsers returns a paginated, optionally searched user listing
func (h *UserHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	pagination := model.NewPaginationParams(c.Query("limit"), c.Query("offset"))

	users, total, err := h.service.ListUsers(c.Request.Context(), search, pagination)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to retrieve users"})
		return
	}

	items := make([]model.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, model.NewUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, model.PaginatedUsers{
		Items: items,
		Pagination: model.PaginationInfo{
			Total:  total,
			Limit:  pagination.Limit,
			Offset: pagination.Offset,
		},
	})
}

// UpdateUser applies a partial update to an existing user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, []gin.H{{"field": "id", "rule": "integer"}})
		return
	}

	var patch model.UpdateUserRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, bindingErrors(err))
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"detail": "User with this email or mobile already exists"})
		default:
			log.Printf("Error updating user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// RegisterUserRoutes registers user directory routes behind the given gate
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, superAdminGate gin.HandlerFunc) {
	userGroup := rg.Group("/users")
	userGroup.Use(superAdminGate)
	{
		userGroup.POST("", h.CreateUser)
		userGroup.GET("", h.ListUsers)
		userGroup.PATCH("/:id", h.UpdateUser)
	}
}
