package project

import (
	"time"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/core/common/validation"
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
)

type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Goal        int64  `json:"goal"`
	Image       string `json:"image,omitempty"`
}

func (r *CreateProjectRequest) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("title", r.Title).Required().MaxLength(200)
	validator.Field("description", r.Description).Required()
	validator.Field("goal", r.Goal).Required().MinInt(1, errors.ErrCodeInvalidGoal)
	return validator.Validate()
}

// UpdateProjectRequest carries partial updates; nil fields are untouched.
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Goal        *int64  `json:"goal,omitempty"`
	Image       *string `json:"image,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *UpdateProjectRequest) Validate() *errors.AppError {
	validator := validation.NewValidator()
	if r.Title != nil {
		validator.Field("title", *r.Title).Required().MaxLength(200)
	}
	if r.Goal != nil {
		validator.Field("goal", *r.Goal).Required().MinInt(1, errors.ErrCodeInvalidGoal)
	}
	if r.Status != nil {
		validator.Field("status", *r.Status).OneOf([]string{
			projectmodel.StatusActive,
			projectmodel.StatusCompleted,
			projectmodel.StatusPaused,
		}, errors.ErrCodeInvalidStatus)
	}
	return validator.Validate()
}

type ProjectResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Goal        int64     `json:"goal"`
	Raised      int64     `json:"raised"`
	Progress    float64   `json:"progress"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(p *projectmodel.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Goal:        p.Goal,
		Raised:      p.Raised,
		Progress:    p.Progress(),
		Image:       p.Image,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
