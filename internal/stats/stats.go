package stats

import "time"

type ProjectStats struct {
	TotalProjects     int64 `json:"total_projects"`
	ActiveProjects    int64 `json:"active_projects"`
	CompletedProjects int64 `json:"completed_projects"`
	TotalGoal         int64 `json:"total_goal"`
	TotalRaised       int64 `json:"total_raised"`
}

type DonationStats struct {
	TotalDonations  int64 `json:"total_donations"`
	Pending         int64 `json:"pending"`
	Completed       int64 `json:"completed"`
	Failed          int64 `json:"failed"`
	Cancelled       int64 `json:"cancelled"`
	CompletedAmount int64 `json:"completed_amount"`
}

type RecentDonation struct {
	TransactionID string    `json:"transaction_id"`
	ProjectID     int64     `json:"project_id"`
	ProjectTitle  string    `json:"project_title"`
	Amount        int64     `json:"amount"`
	ProcessedAt   time.Time `json:"processed_at"`
}

type TopProject struct {
	ProjectID      int64  `json:"project_id"`
	Title          string `json:"title"`
	DonationCount  int64  `json:"donation_count"`
	CompletedTotal int64  `json:"completed_total"`
}

type DashboardStats struct {
	Projects        ProjectStats     `json:"projects"`
	Donations       DonationStats    `json:"donations"`
	RecentDonations []RecentDonation `json:"recent_donations"`
	TopProjects     []TopProject     `json:"top_projects"`
}

type RepositoryAPI interface {
	ProjectStats() (*ProjectStats, error)
	DonationStats() (*DonationStats, error)
	RecentCompleted(limit int) ([]RecentDonation, error)
	TopProjects(limit int) ([]TopProject, error)
}

type ServiceAPI interface {
	Dashboard() (*DashboardStats, error)
}
