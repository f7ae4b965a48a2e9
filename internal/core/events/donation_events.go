package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDonationCompleted = "donation.completed"
	EventTypeDonationFailed    = "donation.failed"
	EventTypeDonationCancelled = "donation.cancelled"
)

type DonationCompletedEvent struct {
	BaseEvent
	DonationID    int64  `json:"donation_id"`
	ProjectID     int64  `json:"project_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	ReceiptNumber string `json:"receipt_number"`
}

func NewDonationCompletedEvent(donationID, projectID int64, transactionID string, amount int64, receiptNumber string) *DonationCompletedEvent {
	return &DonationCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":    donationID,
				"project_id":     projectID,
				"transaction_id": transactionID,
				"amount":         amount,
				"receipt_number": receiptNumber,
			},
		},
		DonationID:    donationID,
		ProjectID:     projectID,
		TransactionID: transactionID,
		Amount:        amount,
		ReceiptNumber: receiptNumber,
	}
}

type DonationFailedEvent struct {
	BaseEvent
	DonationID    int64  `json:"donation_id"`
	ProjectID     int64  `json:"project_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	ResultCode    int    `json:"result_code"`
	ResultDesc    string `json:"result_desc"`
}

func NewDonationFailedEvent(donationID, projectID int64, transactionID string, amount int64, resultCode int, resultDesc string) *DonationFailedEvent {
	return &DonationFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":    donationID,
				"project_id":     projectID,
				"transaction_id": transactionID,
				"amount":         amount,
				"result_code":    resultCode,
				"result_desc":    resultDesc,
			},
		},
		DonationID:    donationID,
		ProjectID:     projectID,
		TransactionID: transactionID,
		Amount:        amount,
		ResultCode:    resultCode,
		ResultDesc:    resultDesc,
	}
}

type DonationCancelledEvent struct {
	BaseEvent
	DonationID    int64  `json:"donation_id"`
	ProjectID     int64  `json:"project_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

func NewDonationCancelledEvent(donationID, projectID int64, transactionID string, amount int64) *DonationCancelledEvent {
	return &DonationCancelledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationCancelled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":    donationID,
				"project_id":     projectID,
				"transaction_id": transactionID,
				"amount":         amount,
			},
		},
		DonationID:    donationID,
		ProjectID:     projectID,
		TransactionID: transactionID,
		Amount:        amount,
	}
}
