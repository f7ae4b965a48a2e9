package donation

import (
	"context"
	"time"

	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
	"github.com/msaada/donation-platform/internal/mpesa"
)

// Gateway is the slice of the payment provider client the ledger needs.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, req *mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

// ListFilter narrows donation listings for reporting.
type ListFilter struct {
	ProjectID int64
	Status    string
	Limit     int
	Offset    int
}

// RepositoryAPI is the ledger's persistence boundary.
type RepositoryAPI interface {
	Create(d *donationmodel.Donation) error
	GetByID(id int64) (*donationmodel.Donation, error)
	GetByTransactionID(transactionID string) (*donationmodel.Donation, error)
	GetByCheckoutRequestID(checkoutRequestID string) (*donationmodel.Donation, error)
	List(filter ListFilter) ([]*donationmodel.Donation, int64, error)

	// SetPushResult records the provider identifiers after an accepted push.
	SetPushResult(id int64, merchantRequestID, checkoutRequestID string) error

	// MarkFailed transitions a still-pending donation to failed with a
	// reason. A donation already terminal is left untouched.
	MarkFailed(id int64, reason string) error

	// ApplyCallback atomically applies a provider result to the donation
	// identified by checkout id: the status moves pending to the given
	// terminal state, and on completion the owning project's raised total
	// is incremented by the donation amount in the same transaction.
	// Returns applied=false when the donation was already terminal.
	ApplyCallback(checkoutRequestID, status string, resultCode int, resultDesc, receiptNumber string) (d *donationmodel.Donation, applied bool, err error)

	// FailStalePending marks donations still pending since before the
	// cutoff as failed, returning how many rows changed.
	FailStalePending(cutoff time.Time, reason string) (int64, error)
}

// ServiceAPI is consumed by the HTTP handlers.
type ServiceAPI interface {
	CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResponse, error)
	ProcessCallback(ctx context.Context, callback *mpesa.StkCallback) error
	ListDonations(ctx context.Context, query ListDonationsQuery) (*DonationListResponse, error)
	GetDonationStatus(ctx context.Context, transactionID string) (*DonationStatusResponse, error)
}
