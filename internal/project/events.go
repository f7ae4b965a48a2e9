package project

import (
	"context"

	"github.com/msaada/donation-platform/internal/core/events"
)

// RegisterEventHandlers subscribes the project service to donation lifecycle
// events for funding progress visibility.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeDonationCompleted, s.handleDonationCompleted)
}

// handleDonationCompleted logs funding progress after a reconciled donation.
// It never changes project status: a project at or over its goal keeps
// accepting donations, so raised may exceed goal and progress caps at 100.
func (s *Service) handleDonationCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.DonationCompletedEvent)
	if !ok {
		s.logger.Warn("unexpected payload for donation completed event", "event_id", event.EventID())
		return nil
	}

	p, err := s.repo.GetByID(completed.ProjectID)
	if err != nil {
		s.logger.Error("failed to load project for funding progress", "error", err, "project_id", completed.ProjectID)
		return err
	}

	if p.Raised >= p.Goal {
		s.logger.Info("project funding goal reached",
			"project_id", p.ID,
			"goal", p.Goal,
			"raised", p.Raised,
			"donation_id", completed.DonationID)
		return nil
	}

	s.logger.Info("project funding progress",
		"project_id", p.ID,
		"raised", p.Raised,
		"goal", p.Goal,
		"donation_id", completed.DonationID)
	return nil
}
