package auth

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	errors "github.com/msaada/donation-platform/internal"
	adminmodel "github.com/msaada/donation-platform/internal/core/datamodel/admin"
)

// Service is the main auth service with dependencies
type Service struct {
	adminRepo      RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(adminRepo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		adminRepo:      adminRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	admin, err := s.adminRepo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login attempt for unknown email", "email", dto.Email)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	if !admin.IsActive {
		s.logger.Warn("login attempt for inactive admin", "admin_id", admin.ID)
		return AuthTokens{}, errors.ErrAdminInactive
	}

	if err := VerifyPassword(admin.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("password mismatch", "admin_id", admin.ID)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	return s.issueTokens(admin)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	adminID, err := strconv.ParseInt(claims.AdminID, 10, 64)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}
	if !admin.IsActive {
		return AuthTokens{}, errors.ErrAdminInactive
	}

	return s.issueTokens(admin)
}

func (s *Service) issueTokens(admin *adminmodel.Admin) (AuthTokens, error) {
	adminID := strconv.FormatInt(admin.ID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(adminID, admin.Email, admin.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(adminID, admin.Email, admin.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetAdminByID(adminID int64) (*AdminUser, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAdminNotFound
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, errors.ErrAdminInactive
	}

	return &AdminUser{
		ID:    admin.ID,
		Email: admin.Email,
		Name:  admin.Name,
		Role:  admin.Role,
	}, nil
}

func (s *Service) CreateAdmin(req *CreateAdminRequest, createdBy int64) (*AdminView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	admin := &adminmodel.Admin{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
		CreatedBy:    &createdBy,
	}

	if err := s.adminRepo.Create(admin); err != nil {
		s.logger.Error("failed to create admin", "error", err, "email", req.Email)
		return nil, errors.NewConflictError("admin with this email already exists", errors.ErrCodeDuplicateEmail)
	}

	s.logger.Info("admin created", "admin_id", admin.ID, "role", admin.Role, "created_by", createdBy)
	view := ToAdminView(admin)
	return &view, nil
}

func (s *Service) ListAdmins() ([]AdminView, error) {
	admins, err := s.adminRepo.GetAll()
	if err != nil {
		s.logger.Error("failed to list admins", "error", err)
		return nil, err
	}

	views := make([]AdminView, 0, len(admins))
	for _, a := range admins {
		views = append(views, ToAdminView(a))
	}
	return views, nil
}

func (s *Service) DeactivateAdmin(adminID, actorID int64) error {
	if adminID == actorID {
		return errors.NewValidationError("cannot deactivate your own account", errors.ErrCodeValidationFailed)
	}

	if _, err := s.adminRepo.GetByID(adminID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrAdminNotFound
		}
		return err
	}

	if err := s.adminRepo.SetActive(adminID, false); err != nil {
		s.logger.Error("failed to deactivate admin", "error", err, "admin_id", adminID)
		return err
	}

	s.logger.Info("admin deactivated", "admin_id", adminID, "actor_id", actorID)
	return nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(adminID, email, role string) (string, error) {
	return j.signToken(adminID, email, role, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(adminID, email, role string) (string, error) {
	return j.signToken(adminID, email, role, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signToken(adminID, email, role string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		AdminID: adminID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   adminID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// Refresh tokens outlive the access TTL; pick the secret by
		// remaining lifetime.
		if claims, ok := token.Claims.(*Claims); ok {
			if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.ErrInvalidToken
}
