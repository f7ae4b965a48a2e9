package postgres

import (
	"gorm.io/gorm"

	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
	"github.com/msaada/donation-platform/internal/stats"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) stats.RepositoryAPI {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ProjectStats() (*stats.ProjectStats, error) {
	var s stats.ProjectStats
	query := `SELECT
		COUNT(*) AS total_projects,
		COUNT(*) FILTER (WHERE status = 'active') AS active_projects,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed_projects,
		COALESCE(SUM(goal), 0) AS total_goal,
		COALESCE(SUM(raised), 0) AS total_raised
	FROM projects`

	row := r.db.Raw(query).Row()
	if err := row.Scan(&s.TotalProjects, &s.ActiveProjects, &s.CompletedProjects, &s.TotalGoal, &s.TotalRaised); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepository) DonationStats() (*stats.DonationStats, error) {
	var s stats.DonationStats
	query := `SELECT
		COUNT(*) AS total_donations,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0) AS completed_amount
	FROM donations`

	row := r.db.Raw(query).Row()
	if err := row.Scan(&s.TotalDonations, &s.Pending, &s.Completed, &s.Failed, &s.Cancelled, &s.CompletedAmount); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepository) RecentCompleted(limit int) ([]stats.RecentDonation, error) {
	query := `SELECT d.transaction_id, d.project_id, p.title, d.amount, d.processed_at
		FROM donations d
		JOIN projects p ON p.id = d.project_id
		WHERE d.status = ?
		ORDER BY d.processed_at DESC
		LIMIT ?`

	rows, err := r.db.Raw(query, donationmodel.StatusCompleted, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := make([]stats.RecentDonation, 0, limit)
	for rows.Next() {
		var d stats.RecentDonation
		if err := rows.Scan(&d.TransactionID, &d.ProjectID, &d.ProjectTitle, &d.Amount, &d.ProcessedAt); err != nil {
			return nil, err
		}
		recent = append(recent, d)
	}
	return recent, rows.Err()
}

func (r *StatsRepository) TopProjects(limit int) ([]stats.TopProject, error) {
	query := `SELECT p.id, p.title, COUNT(d.id) AS donation_count, COALESCE(SUM(d.amount), 0) AS completed_total
		FROM projects p
		JOIN donations d ON d.project_id = p.id AND d.status = ?
		GROUP BY p.id, p.title
		ORDER BY completed_total DESC
		LIMIT ?`

	rows, err := r.db.Raw(query, donationmodel.StatusCompleted, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]stats.TopProject, 0, limit)
	for rows.Next() {
		var t stats.TopProject
		if err := rows.Scan(&t.ProjectID, &t.Title, &t.DonationCount, &t.CompletedTotal); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}
