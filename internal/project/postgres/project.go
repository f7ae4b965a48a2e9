package postgres

import (
	"gorm.io/gorm"

	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
	"github.com/msaada/donation-platform/internal/project"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.RepositoryAPI {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetAll() ([]*projectmodel.Project, error) {
	var projects []*projectmodel.Project
	err := r.db.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetByID(id int64) (*projectmodel.Project, error) {
	var p projectmodel.Project
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Create(p *projectmodel.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) Update(p *projectmodel.Project) error {
	return r.db.Save(p).Error
}

func (r *ProjectRepository) Delete(id int64) error {
	return r.db.Delete(&projectmodel.Project{}, id).Error
}
