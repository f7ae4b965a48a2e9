package auth

import (
	"time"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/core/common/validation"
	adminmodel "github.com/msaada/donation-platform/internal/core/datamodel/admin"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

type CreateAdminRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *CreateAdminRequest) Validate() *errors.AppError {
	if r.Role == "" {
		r.Role = adminmodel.RoleAdmin
	}
	validator := validation.NewValidator()
	validator.Field("email", r.Email).Required().MaxLength(255)
	validator.Field("name", r.Name).Required().MaxLength(100)
	validator.Field("password", r.Password).Required().MinLength(8)
	validator.Field("role", r.Role).OneOf([]string{
		adminmodel.RoleAdmin,
		adminmodel.RoleSuperAdmin,
	}, errors.ErrCodeValidationFailed)
	return validator.Validate()
}

// AdminView is the API shape for admin accounts; the password hash never
// leaves the repository layer.
type AdminView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func ToAdminView(a *adminmodel.Admin) AdminView {
	return AdminView{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}
