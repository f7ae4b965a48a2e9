package donation

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	errors "github.com/msaada/donation-platform/internal"
	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
	"github.com/msaada/donation-platform/internal/core/events"
	"github.com/msaada/donation-platform/internal/mpesa"
)

// ProjectReader is the slice of the project service the ledger needs to
// verify a donation target.
type ProjectReader interface {
	GetByID(id int64) (*projectmodel.Project, error)
}

const createRetries = 3

type Service struct {
	repository RepositoryAPI
	projects   ProjectReader
	gateway    Gateway
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewService(repository RepositoryAPI, projects ProjectReader, gateway Gateway, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		projects:   projects,
		gateway:    gateway,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// CreateDonation validates the request, persists a pending ledger entry and
// submits the push. The pending record is durably written before the push so
// a submission failure can still be recorded against a stable reference.
func (s *Service) CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResponse, error) {
	req.PhoneNumber = mpesa.FormatPhoneNumber(req.PhoneNumber)

	if err := req.Validate(); err != nil {
		s.logger.Error("donation request validation failed", "error", err, "project_id", req.ProjectID)
		return nil, err
	}

	project, err := s.projects.GetByID(req.ProjectID)
	if err != nil {
		s.logger.Error("project lookup failed", "error", err, "project_id", req.ProjectID)
		return nil, errors.ErrProjectNotFound
	}
	if !project.IsActive() {
		s.logger.Warn("donation rejected for inactive project", "project_id", project.ID, "status", project.Status)
		return nil, errors.ErrProjectNotActive
	}

	record, err := s.createPendingRecord(req)
	if err != nil {
		return nil, err
	}

	pushResp, err := s.gateway.InitiateSTKPush(ctx, &mpesa.STKPushRequest{
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: record.TransactionID,
		TransactionDesc:  fmt.Sprintf("Donation to %s", project.Title),
	})
	if err != nil {
		// never leave the record pending after a synchronous submission
		// failure; only a genuinely pending provider decision may do that
		reason := fmt.Sprintf("Failed to initiate M-Pesa payment: %v", err)
		if markErr := s.repository.MarkFailed(record.ID, reason); markErr != nil {
			s.logger.Error("failed to mark donation failed after push error",
				"error", markErr,
				"donation_id", record.ID,
				"transaction_id", record.TransactionID)
		}
		s.logger.Error("stk push failed",
			"error", err,
			"donation_id", record.ID,
			"transaction_id", record.TransactionID)
		return nil, err
	}

	if err := s.repository.SetPushResult(record.ID, pushResp.MerchantRequestID, pushResp.CheckoutRequestID); err != nil {
		s.logger.Error("failed to store push identifiers",
			"error", err,
			"donation_id", record.ID,
			"checkout_request_id", pushResp.CheckoutRequestID)
		return nil, errors.NewInternalError("failed to record payment reference", err)
	}

	s.logger.Info("donation initiated",
		"donation_id", record.ID,
		"project_id", project.ID,
		"amount", req.Amount,
		"transaction_id", record.TransactionID,
		"checkout_request_id", pushResp.CheckoutRequestID)

	return &CreateDonationResponse{
		Success:           true,
		Message:           "Payment request sent successfully",
		TransactionID:     record.TransactionID,
		CheckoutRequestID: pushResp.CheckoutRequestID,
	}, nil
}

// createPendingRecord inserts the ledger entry, regenerating the transaction
// id when the unique constraint rejects a collision.
func (s *Service) createPendingRecord(req *CreateDonationRequest) (*donationmodel.Donation, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		record := &donationmodel.Donation{
			ProjectID:     req.ProjectID,
			Amount:        req.Amount,
			PhoneNumber:   req.PhoneNumber,
			TransactionID: NewTransactionID(),
			Status:        donationmodel.StatusPending,
		}

		err := s.repository.Create(record)
		if err == nil {
			return record, nil
		}

		lastErr = err
		s.logger.Warn("donation insert failed, regenerating transaction id",
			"error", err,
			"attempt", attempt+1,
			"transaction_id", record.TransactionID)
	}

	s.logger.Error("failed to create donation record", "error", lastErr, "project_id", req.ProjectID)
	return nil, errors.NewInternalError("failed to create donation record", lastErr)
}

// ProcessCallback reconciles a provider result with the ledger. Errors are
// returned for logging only; the HTTP layer always acknowledges success to
// the provider.
func (s *Service) ProcessCallback(ctx context.Context, callback *mpesa.StkCallback) error {
	record, err := s.repository.GetByCheckoutRequestID(callback.CheckoutRequestID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			// nothing productive to retry against; the ack stops the
			// provider from resending forever
			s.logger.Warn("callback for unknown checkout request",
				"checkout_request_id", callback.CheckoutRequestID,
				"result_code", callback.ResultCode)
			return nil
		}
		s.logger.Error("failed to load donation for callback",
			"error", err,
			"checkout_request_id", callback.CheckoutRequestID)
		return err
	}

	if record.IsTerminal() {
		s.logger.Info("duplicate callback for terminal donation",
			"donation_id", record.ID,
			"status", record.Status,
			"checkout_request_id", callback.CheckoutRequestID)
		return nil
	}

	status := statusForResultCode(callback.ResultCode)
	receipt := ""
	if status == donationmodel.StatusCompleted {
		receipt = callback.ReceiptNumber()
	}

	updated, applied, err := s.repository.ApplyCallback(
		callback.CheckoutRequestID, status, callback.ResultCode, callback.ResultDesc, receipt)
	if err != nil {
		s.logger.Error("failed to apply callback",
			"error", err,
			"donation_id", record.ID,
			"checkout_request_id", callback.CheckoutRequestID)
		return err
	}

	if !applied {
		// lost the race against a concurrent callback for the same
		// checkout id; the winner already applied the result
		s.logger.Info("callback already applied",
			"donation_id", record.ID,
			"checkout_request_id", callback.CheckoutRequestID)
		return nil
	}

	s.logger.Info("donation reconciled",
		"donation_id", updated.ID,
		"project_id", updated.ProjectID,
		"status", updated.Status,
		"result_code", callback.ResultCode,
		"amount", updated.Amount)

	s.publishLifecycleEvent(ctx, updated, callback)

	return nil
}

func (s *Service) publishLifecycleEvent(ctx context.Context, d *donationmodel.Donation, callback *mpesa.StkCallback) {
	if s.eventBus == nil {
		return
	}

	switch d.Status {
	case donationmodel.StatusCompleted:
		receipt := ""
		if d.MpesaReceiptNumber != nil {
			receipt = *d.MpesaReceiptNumber
		}
		s.eventBus.Publish(ctx, events.NewDonationCompletedEvent(d.ID, d.ProjectID, d.TransactionID, d.Amount, receipt))
	case donationmodel.StatusCancelled:
		s.eventBus.Publish(ctx, events.NewDonationCancelledEvent(d.ID, d.ProjectID, d.TransactionID, d.Amount))
	case donationmodel.StatusFailed:
		s.eventBus.Publish(ctx, events.NewDonationFailedEvent(d.ID, d.ProjectID, d.TransactionID, d.Amount, callback.ResultCode, callback.ResultDesc))
	}
}

func statusForResultCode(code int) string {
	switch code {
	case 0:
		return donationmodel.StatusCompleted
	case mpesa.ResultCodeCancelled:
		return donationmodel.StatusCancelled
	default:
		return donationmodel.StatusFailed
	}
}

func (s *Service) ListDonations(ctx context.Context, query ListDonationsQuery) (*DonationListResponse, error) {
	query.Normalize()

	records, total, err := s.repository.List(ListFilter{
		ProjectID: query.ProjectID,
		Status:    query.Status,
		Limit:     query.Limit,
		Offset:    (query.Page - 1) * query.Limit,
	})
	if err != nil {
		s.logger.Error("failed to list donations", "error", err)
		return nil, errors.NewInternalError("failed to list donations", err)
	}

	views := make([]DonationView, 0, len(records))
	for _, record := range records {
		views = append(views, ToView(record))
	}

	pages := total / int64(query.Limit)
	if total%int64(query.Limit) != 0 {
		pages++
	}

	return &DonationListResponse{
		Donations: views,
		Pagination: Pagination{
			Page:  query.Page,
			Limit: query.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// GetDonationStatus is the polling surface donors use after initiating a
// push: the synchronous response only confirmed submission, the real
// outcome lands here once the callback arrives.
func (s *Service) GetDonationStatus(ctx context.Context, transactionID string) (*DonationStatusResponse, error) {
	record, err := s.repository.GetByTransactionID(transactionID)
	if err != nil {
		return nil, errors.ErrDonationNotFound
	}

	resp := &DonationStatusResponse{
		TransactionID: record.TransactionID,
		Status:        record.Status,
		Amount:        record.Amount,
		ProjectID:     record.ProjectID,
		UpdatedAt:     record.UpdatedAt,
	}
	if record.MpesaReceiptNumber != nil {
		resp.MpesaReceiptNumber = *record.MpesaReceiptNumber
	}
	return resp, nil
}
