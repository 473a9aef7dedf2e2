package model

import "time"

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
)

// User represents a user account in the system
type User struct {
	ID           int       `json:"id"`
	MobileNo     string    `json:"mobile_no"`
	FullName     *string   `json:"full_name,omitempty"` // Pointer for optional field
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`        // Do not expose password hash in JSON responses
	Username     string    `json:"username"` // Always kept equal to MobileNo
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest is used for creating a new user
type CreateUserRequest struct {
	MobileNo string  `json:"mobile_no" binding:"required,min=10,max=15"`
	FullName *string `json:"full_name"`
	Email    string  `json:"email" binding:"required,email,max=100"`
	Role     string  `json:"role" binding:"required,oneof=super_admin admin teacher"`
	Password string  `json:"password" binding:"required"`
}

// UpdateUserRequest is used for partial updates; nil fields are left untouched
type UpdateUserRequest struct {
	MobileNo *string `json:"mobile_no,omitempty" binding:"omitempty,min=10,max=15"`
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email,max=100"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=super_admin admin teacher"`
}

// IsEmpty reports whether the patch carries no fields at all
func (r UpdateUserRequest) IsEmpty() bool {
	return r.MobileNo == nil && r.FullName == nil && r.Email == nil && r.Role == nil
}

// UserResponse is the client-facing view of a user (never carries the hash)
type UserResponse struct {
	ID        int       `json:"id"`
	MobileNo  string    `json:"mobile_no"`
	FullName  *string   `json:"full_name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse builds the response view of a persisted user
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		MobileNo:  u.MobileNo,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
