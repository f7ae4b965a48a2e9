package donation

import (
	"time"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/core/common/validation"
	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
)

// CreateDonationRequest is the initiate-push input. PhoneNumber may arrive
// in any local format; the service normalizes it before validation.
type CreateDonationRequest struct {
	ProjectID   int64  `json:"project_id"`
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number"`
}

func (r *CreateDonationRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("project_id", r.ProjectID).Required()
	validator.Field("amount", r.Amount).
		Required().
		MinInt(validation.MinDonationAmount, errors.ErrCodeAmountTooLow).
		MaxInt(validation.MaxDonationAmount, errors.ErrCodeAmountTooHigh)
	validator.Field("phone_number", r.PhoneNumber).
		Required().
		PhoneNumber()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type CreateDonationResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TransactionID     string `json:"transaction_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
}

// CallbackAck is the fixed acknowledgement the provider always receives,
// regardless of how reconciliation went. Anything else triggers provider
// retries against an event that may already be applied.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func SuccessAck() CallbackAck {
	return CallbackAck{ResultCode: 0, ResultDesc: "Success"}
}

type ListDonationsQuery struct {
	ProjectID int64
	Status    string
	Page      int
	Limit     int
}

func (q *ListDonationsQuery) Normalize() {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Page <= 0 {
		q.Page = 1
	}
}

type DonationView struct {
	ID                 int64     `json:"id"`
	ProjectID          int64     `json:"project_id"`
	Amount             int64     `json:"amount"`
	PhoneNumber        string    `json:"phone_number"`
	TransactionID      string    `json:"transaction_id"`
	Status             string    `json:"status"`
	MpesaReceiptNumber string    `json:"mpesa_receipt_number,omitempty"`
	ResultDesc         string    `json:"result_desc,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type DonationListResponse struct {
	Donations  []DonationView `json:"donations"`
	Pagination Pagination     `json:"pagination"`
}

type DonationStatusResponse struct {
	TransactionID      string    `json:"transaction_id"`
	Status             string    `json:"status"`
	Amount             int64     `json:"amount"`
	ProjectID          int64     `json:"project_id"`
	MpesaReceiptNumber string    `json:"mpesa_receipt_number,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ToView masks the donor phone number for reporting output.
func ToView(d *donationmodel.Donation) DonationView {
	view := DonationView{
		ID:            d.ID,
		ProjectID:     d.ProjectID,
		Amount:        d.Amount,
		PhoneNumber:   maskPhoneNumber(d.PhoneNumber),
		TransactionID: d.TransactionID,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.MpesaReceiptNumber != nil {
		view.MpesaReceiptNumber = *d.MpesaReceiptNumber
	}
	if d.ResultDesc != nil {
		view.ResultDesc = *d.ResultDesc
	}
	return view
}

// maskPhoneNumber keeps the country prefix and the last three digits.
func maskPhoneNumber(phone string) string {
	if len(phone) != 12 {
		return phone
	}
	return phone[:3] + "***" + phone[9:]
}
