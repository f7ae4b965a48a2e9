package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	adminmodel "github.com/msaada/donation-platform/internal/core/datamodel/admin"
)

type contextKey string

// ContextAdminKey stores the authenticated admin in the request context.
const ContextAdminKey contextKey = "admin"

// AdminUser is the authenticated principal carried through request context.
type AdminUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (a *AdminUser) IsSuperAdmin() bool {
	return a.Role == adminmodel.RoleSuperAdmin
}

func AdminFromContext(ctx context.Context) (*AdminUser, bool) {
	admin, ok := ctx.Value(ContextAdminKey).(*AdminUser)
	return admin, ok
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetAdminByID(adminID int64) (*AdminUser, error)
	CreateAdmin(req *CreateAdminRequest, createdBy int64) (*AdminView, error)
	ListAdmins() ([]AdminView, error)
	DeactivateAdmin(adminID, actorID int64) error
}

type RepositoryAPI interface {
	GetByEmail(email string) (*adminmodel.Admin, error)
	GetByID(id int64) (*adminmodel.Admin, error)
	Create(a *adminmodel.Admin) error
	GetAll() ([]*adminmodel.Admin, error)
	SetActive(id int64, active bool) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(adminID, email, role string) (token string, err error)
	GenerateRefreshToken(adminID, email, role string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
