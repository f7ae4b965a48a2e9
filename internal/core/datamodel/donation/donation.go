package donation

import (
	"time"
)

// Donation status lifecycle: pending is the only initial state; completed,
// failed and cancelled are terminal and never transition again.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type Donation struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	ProjectID          int64      `gorm:"column:project_id;not null;index:idx_donations_project_status" json:"project_id"`
	Amount             int64      `gorm:"column:amount;not null" json:"amount"`
	PhoneNumber        string     `gorm:"column:phone_number;not null" json:"phone_number"`
	TransactionID      string     `gorm:"column:transaction_id;not null;uniqueIndex" json:"transaction_id"`
	Status             string     `gorm:"column:status;default:pending;index:idx_donations_project_status" json:"status"`
	MerchantRequestID  *string    `gorm:"column:merchant_request_id" json:"merchant_request_id,omitempty"`
	CheckoutRequestID  *string    `gorm:"column:checkout_request_id;index" json:"checkout_request_id,omitempty"`
	ResultCode         *int       `gorm:"column:result_code" json:"result_code,omitempty"`
	ResultDesc         *string    `gorm:"column:result_desc" json:"result_desc,omitempty"`
	MpesaReceiptNumber *string    `gorm:"column:mpesa_receipt_number" json:"mpesa_receipt_number,omitempty"`
	ProcessedAt        *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// IsTerminal reports whether the donation has reached a final state.
func (d *Donation) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed || d.Status == StatusCancelled
}
