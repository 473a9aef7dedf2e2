package middleware

import "teacher_portal/internal/model"

// Permission decides whether a user may pass an authorization gate. A gate
// takes a set of permissions and requires ALL of them to hold.
type Permission func(user *model.User) bool

// IsSuperAdmin passes only super_admin users
func IsSuperAdmin(user *model.User) bool {
	return user.Role == model.RoleSuperAdmin
}

// IsAdmin passes only admin users
func IsAdmin(user *model.User) bool {
	return user.Role == model.RoleAdmin
}

// IsTeacher passes only teacher users
func IsTeacher(user *model.User) bool {
	return user.Role == model.RoleTeacher
}
