package stats

import (
	"log/slog"
)

const (
	recentDonationsLimit = 10
	topProjectsLimit     = 5
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

func (s *Service) Dashboard() (*DashboardStats, error) {
	projectStats, err := s.repo.ProjectStats()
	if err != nil {
		s.logger.Error("failed to load project stats", "error", err)
		return nil, err
	}

	donationStats, err := s.repo.DonationStats()
	if err != nil {
		s.logger.Error("failed to load donation stats", "error", err)
		return nil, err
	}

	recent, err := s.repo.RecentCompleted(recentDonationsLimit)
	if err != nil {
		s.logger.Error("failed to load recent donations", "error", err)
		return nil, err
	}

	top, err := s.repo.TopProjects(topProjectsLimit)
	if err != nil {
		s.logger.Error("failed to load top projects", "error", err)
		return nil, err
	}

	return &DashboardStats{
		Projects:        *projectStats,
		Donations:       *donationStats,
		RecentDonations: recent,
		TopProjects:     top,
	}, nil
}
