package project

import (
	"time"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPaused    = "paused"
)

type Project struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Goal        int64     `gorm:"column:goal;not null" json:"goal"`
	Raised      int64     `gorm:"column:raised;default:0" json:"raised"`
	Image       string    `gorm:"column:image" json:"image"`
	Status      string    `gorm:"column:status;default:active" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Progress returns percent funded, capped at 100.
func (p *Project) Progress() float64 {
	if p.Goal <= 0 {
		return 0
	}
	progress := float64(p.Raised) / float64(p.Goal) * 100
	if progress > 100 {
		return 100
	}
	return progress
}

func (p *Project) IsActive() bool {
	return p.Status == StatusActive
}
