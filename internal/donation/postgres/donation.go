package postgres

import (
	"time"

	"gorm.io/gorm"

	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
	donationpkg "github.com/msaada/donation-platform/internal/donation"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) donationpkg.RepositoryAPI {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(d *donationmodel.Donation) error {
	return r.db.Create(d).Error
}

func (r *DonationRepository) GetByID(id int64) (*donationmodel.Donation, error) {
	var d donationmodel.Donation
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetByTransactionID(transactionID string) (*donationmodel.Donation, error) {
	var d donationmodel.Donation
	err := r.db.Where("transaction_id = ?", transactionID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetByCheckoutRequestID(checkoutRequestID string) (*donationmodel.Donation, error) {
	var d donationmodel.Donation
	err := r.db.Where("checkout_request_id = ?", checkoutRequestID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) List(filter donationpkg.ListFilter) ([]*donationmodel.Donation, int64, error) {
	query := r.db.Model(&donationmodel.Donation{})

	if filter.ProjectID != 0 {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []*donationmodel.Donation
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&donations).Error
	return donations, total, err
}

func (r *DonationRepository) SetPushResult(id int64, merchantRequestID, checkoutRequestID string) error {
	return r.db.Model(&donationmodel.Donation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"merchant_request_id": merchantRequestID,
			"checkout_request_id": checkoutRequestID,
			"updated_at":          time.Now(),
		}).Error
}

func (r *DonationRepository) MarkFailed(id int64, reason string) error {
	now := time.Now()
	return r.db.Model(&donationmodel.Donation{}).
		Where("id = ? AND status = ?", id, donationmodel.StatusPending).
		Updates(map[string]interface{}{
			"status":       donationmodel.StatusFailed,
			"result_desc":  reason,
			"processed_at": now,
			"updated_at":   now,
		}).Error
}

// ApplyCallback moves a pending donation to its terminal state and, on
// completion, increments the owning project's raised total. Both writes run
// in one transaction; the status guard in the WHERE clause makes the
// check-then-set safe against a concurrent callback for the same checkout
// id: the loser matches zero rows and applies nothing.
func (r *DonationRepository) ApplyCallback(checkoutRequestID, status string, resultCode int, resultDesc, receiptNumber string) (*donationmodel.Donation, bool, error) {
	var d donationmodel.Donation
	applied := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("checkout_request_id = ?", checkoutRequestID).First(&d).Error; err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       status,
			"result_code":  resultCode,
			"result_desc":  resultDesc,
			"processed_at": now,
			"updated_at":   now,
		}
		if receiptNumber != "" {
			updates["mpesa_receipt_number"] = receiptNumber
		}

		res := tx.Model(&donationmodel.Donation{}).
			Where("checkout_request_id = ? AND status = ?", checkoutRequestID, donationmodel.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// already terminal
			return nil
		}
		applied = true

		if status == donationmodel.StatusCompleted {
			if err := tx.Model(&projectmodel.Project{}).
				Where("id = ?", d.ProjectID).
				Updates(map[string]interface{}{
					"raised":     gorm.Expr("raised + ?", d.Amount),
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}

		return tx.Where("checkout_request_id = ?", checkoutRequestID).First(&d).Error
	})
	if err != nil {
		return nil, false, err
	}

	return &d, applied, nil
}

func (r *DonationRepository) FailStalePending(cutoff time.Time, reason string) (int64, error) {
	now := time.Now()
	res := r.db.Model(&donationmodel.Donation{}).
		Where("status = ? AND created_at < ?", donationmodel.StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":       donationmodel.StatusFailed,
			"result_desc":  reason,
			"processed_at": now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}
