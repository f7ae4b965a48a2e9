package project

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"

	apperrors "github.com/msaada/donation-platform/internal"
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListProjects() ([]ProjectResponse, error) {
	projects, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get projects from repository", "error", err)
		return nil, err
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, ToResponse(p))
	}

	s.logger.Info("retrieved projects", "count", len(responses))
	return responses, nil
}

func (s *Service) GetProject(id int64) (*ProjectResponse, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(p)
	return &resp, nil
}

// GetByID returns the raw data model; the donation service uses it for the
// active-status check before accepting a donation.
func (s *Service) GetByID(id int64) (*projectmodel.Project, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		s.logger.Error("failed to get project from repository", "error", err, "project_id", id)
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateProject(req *CreateProjectRequest) (*ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("project validation failed", "error", err)
		return nil, err
	}

	p := &projectmodel.Project{
		Title:       req.Title,
		Description: req.Description,
		Goal:        req.Goal,
		Image:       req.Image,
		Status:      projectmodel.StatusActive,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "error", err, "title", req.Title)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "title", p.Title, "goal", p.Goal)
	resp := ToResponse(p)
	return &resp, nil
}

func (s *Service) UpdateProject(id int64, req *UpdateProjectRequest) (*ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("project update validation failed", "error", err, "project_id", id)
		return nil, err
	}

	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Goal != nil {
		p.Goal = *req.Goal
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, err
	}

	s.logger.Info("project updated", "project_id", p.ID)
	resp := ToResponse(p)
	return &resp, nil
}

func (s *Service) DeleteProject(id int64) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete project", "error", err, "project_id", id)
		return err
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}
