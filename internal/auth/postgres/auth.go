package postgres

import (
	"gorm.io/gorm"

	"github.com/msaada/donation-platform/internal/auth"
	adminmodel "github.com/msaada/donation-platform/internal/core/datamodel/admin"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(email string) (*adminmodel.Admin, error) {
	var a adminmodel.Admin
	err := r.db.Where("email = ?", email).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) GetByID(id int64) (*adminmodel.Admin, error) {
	var a adminmodel.Admin
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) Create(a *adminmodel.Admin) error {
	return r.db.Create(a).Error
}

func (r *AdminRepository) GetAll() ([]*adminmodel.Admin, error) {
	var admins []*adminmodel.Admin
	err := r.db.Order("created_at ASC").Find(&admins).Error
	return admins, err
}

func (r *AdminRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&adminmodel.Admin{}).Where("id = ?", id).Update("is_active", active).Error
}
