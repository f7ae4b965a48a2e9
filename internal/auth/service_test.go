package auth_test

import (
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/auth"
	adminmodel "github.com/msaada/donation-platform/internal/core/datamodel/admin"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockAdminRepository struct {
	admins    map[int64]*adminmodel.Admin
	nextID    int64
	createErr error
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{
		admins: make(map[int64]*adminmodel.Admin),
		nextID: 1,
	}
}

func (m *mockAdminRepository) GetByEmail(email string) (*adminmodel.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepository) GetByID(id int64) (*adminmodel.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdminRepository) Create(a *adminmodel.Admin) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, err := m.GetByEmail(a.Email); err == nil {
		return gorm.ErrDuplicatedKey
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	cp := *a
	m.admins[a.ID] = &cp
	return nil
}

func (m *mockAdminRepository) GetAll() ([]*adminmodel.Admin, error) {
	all := make([]*adminmodel.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		cp := *a
		all = append(all, &cp)
	}
	return all, nil
}

func (m *mockAdminRepository) SetActive(id int64, active bool) error {
	a, ok := m.admins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.IsActive = active
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		repo     *mockAdminRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
	)

	seedAdmin := func(email, password, role string, active bool) *adminmodel.Admin {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		a := &adminmodel.Admin{
			Email:        email,
			Name:         "Test Admin",
			PasswordHash: string(hash),
			Role:         role,
			IsActive:     active,
		}
		Expect(repo.Create(a)).To(Succeed())
		return a
	}

	BeforeEach(func() {
		repo = newMockAdminRepository()
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost, slog.Default())
	})

	Describe("Authenticate", func() {
		It("should return tokens for valid credentials", func() {
			seedAdmin("admin@mail.com", "password", adminmodel.RoleAdmin, true)

			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@mail.com",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Email).To(Equal("admin@mail.com"))
			Expect(claims.Role).To(Equal(adminmodel.RoleAdmin))
		})

		It("should reject a wrong password", func() {
			seedAdmin("admin@mail.com", "password", adminmodel.RoleAdmin, true)

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@mail.com",
				Password: "not-the-password",
			})
			Expect(err).To(MatchError(errors.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@mail.com",
				Password: "password",
			})
			Expect(err).To(MatchError(errors.ErrInvalidCredentials))
		})

		It("should reject an inactive admin", func() {
			seedAdmin("gone@mail.com", "password", adminmodel.RoleAdmin, false)

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "gone@mail.com",
				Password: "password",
			})
			Expect(err).To(MatchError(errors.ErrAdminInactive))
		})

		It("should reject a malformed login payload", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "admin@mail.com"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a fresh pair from a valid refresh token", func() {
			seedAdmin("admin@mail.com", "password", adminmodel.RoleAdmin, true)

			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@mail.com",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
			Expect(refreshed.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject refresh for an admin deactivated since login", func() {
			a := seedAdmin("admin@mail.com", "password", adminmodel.RoleAdmin, true)

			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "admin@mail.com",
				Password: "password",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.SetActive(a.ID, false)).To(Succeed())

			_, err = service.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(MatchError(errors.ErrAdminInactive))
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens("not.a.jwt")
			Expect(err).To(MatchError(errors.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should reject an expired token", func() {
			shortGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
			token, err := shortGen.GenerateAccessToken("1", "admin@mail.com", adminmodel.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			Expect(err).To(MatchError(errors.ErrTokenExpired))
		})

		It("should reject a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("other-secret", "other-refresh", 15*time.Minute, 7*24*time.Hour)
			token, err := otherGen.GenerateAccessToken("1", "admin@mail.com", adminmodel.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())

			_, err = tokenGen.ValidateToken(token)
			Expect(err).To(MatchError(errors.ErrInvalidToken))
		})
	})

	Describe("GetAdminByID", func() {
		It("should return the admin without the password hash", func() {
			a := seedAdmin("admin@mail.com", "password", adminmodel.RoleSuperAdmin, true)

			user, err := service.GetAdminByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("admin@mail.com"))
			Expect(user.IsSuperAdmin()).To(BeTrue())
		})

		It("should map a missing admin to not found", func() {
			_, err := service.GetAdminByID(404)
			Expect(err).To(MatchError(errors.ErrAdminNotFound))
		})

		It("should reject an inactive admin", func() {
			a := seedAdmin("gone@mail.com", "password", adminmodel.RoleAdmin, false)

			_, err := service.GetAdminByID(a.ID)
			Expect(err).To(MatchError(errors.ErrAdminInactive))
		})
	})

	Describe("CreateAdmin", func() {
		It("should create an active admin with a hashed password", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)

			view, err := service.CreateAdmin(&auth.CreateAdminRequest{
				Email:    "new@mail.com",
				Name:     "New Admin",
				Password: "password123",
			}, actor.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Role).To(Equal(adminmodel.RoleAdmin))
			Expect(view.IsActive).To(BeTrue())

			stored, err := repo.GetByEmail("new@mail.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.PasswordHash).NotTo(Equal("password123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123"))).To(Succeed())
			Expect(*stored.CreatedBy).To(Equal(actor.ID))
		})

		It("should reject a duplicate email as a conflict", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)
			seedAdmin("taken@mail.com", "password", adminmodel.RoleAdmin, true)

			_, err := service.CreateAdmin(&auth.CreateAdminRequest{
				Email:    "taken@mail.com",
				Name:     "Dup",
				Password: "password123",
			}, actor.ID)
			Expect(err).To(HaveOccurred())
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeDuplicateEmail))
		})

		It("should reject a short password", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)

			_, err := service.CreateAdmin(&auth.CreateAdminRequest{
				Email:    "weak@mail.com",
				Name:     "Weak",
				Password: "short",
			}, actor.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeactivateAdmin", func() {
		It("should deactivate another admin", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)
			target := seedAdmin("target@mail.com", "password", adminmodel.RoleAdmin, true)

			Expect(service.DeactivateAdmin(target.ID, actor.ID)).To(Succeed())

			stored, err := repo.GetByID(target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})

		It("should refuse self deactivation", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)

			err := service.DeactivateAdmin(actor.ID, actor.ID)
			Expect(err).To(HaveOccurred())
		})

		It("should return not found for a missing admin", func() {
			actor := seedAdmin("super@mail.com", "password", adminmodel.RoleSuperAdmin, true)

			err := service.DeactivateAdmin(404, actor.ID)
			Expect(err).To(MatchError(errors.ErrAdminNotFound))
		})
	})
})
