package project

import (
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
)

type RepositoryAPI interface {
	GetAll() ([]*projectmodel.Project, error)
	GetByID(id int64) (*projectmodel.Project, error)
	Create(p *projectmodel.Project) error
	Update(p *projectmodel.Project) error
	Delete(id int64) error
}

type ServiceAPI interface {
	ListProjects() ([]ProjectResponse, error)
	GetProject(id int64) (*ProjectResponse, error)
	GetByID(id int64) (*projectmodel.Project, error)
	CreateProject(req *CreateProjectRequest) (*ProjectResponse, error)
	UpdateProject(id int64, req *UpdateProjectRequest) (*ProjectResponse, error)
	DeleteProject(id int64) error
}
