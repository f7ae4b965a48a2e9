package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	donationmodel "github.com/msaada/donation-platform/internal/core/datamodel/donation"
	projectmodel "github.com/msaada/donation-platform/internal/core/datamodel/project"
	donationpkg "github.com/msaada/donation-platform/internal/donation"
)

func TestDonationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DonationRepository Suite")
}

type SQLiteDonation struct {
	ID                 int64      `gorm:"primaryKey"`
	ProjectID          int64      `gorm:"column:project_id;not null"`
	Amount             int64      `gorm:"column:amount;not null"`
	PhoneNumber        string     `gorm:"column:phone_number;not null"`
	TransactionID      string     `gorm:"column:transaction_id;not null;uniqueIndex"`
	Status             string     `gorm:"column:status;default:'pending'"`
	MerchantRequestID  *string    `gorm:"column:merchant_request_id"`
	CheckoutRequestID  *string    `gorm:"column:checkout_request_id"`
	ResultCode         *int       `gorm:"column:result_code"`
	ResultDesc         *string    `gorm:"column:result_desc"`
	MpesaReceiptNumber *string    `gorm:"column:mpesa_receipt_number"`
	ProcessedAt        *time.Time `gorm:"column:processed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (SQLiteDonation) TableName() string {
	return "donations"
}

type SQLiteProject struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	Goal        int64     `gorm:"column:goal;not null"`
	Raised      int64     `gorm:"column:raised;default:0"`
	Image       string    `gorm:"column:image"`
	Status      string    `gorm:"column:status;default:'active'"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteProject) TableName() string {
	return "projects"
}

var _ = Describe("DonationRepository", func() {
	var (
		db      *gorm.DB
		repo    donationpkg.RepositoryAPI
		project *projectmodel.Project
	)

	strPtr := func(s string) *string { return &s }

	newPending := func(txnID, checkoutID string, amount int64) *donationmodel.Donation {
		d := &donationmodel.Donation{
			ProjectID:         project.ID,
			Amount:            amount,
			PhoneNumber:       "254712345678",
			TransactionID:     txnID,
			Status:            donationmodel.StatusPending,
			CheckoutRequestID: strPtr(checkoutID),
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}
		Expect(repo.Create(d)).To(Succeed())
		return d
	}

	projectRaised := func() int64 {
		var p projectmodel.Project
		Expect(db.First(&p, project.ID).Error).NotTo(HaveOccurred())
		return p.Raised
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDonation{}, &SQLiteProject{})
		Expect(err).NotTo(HaveOccurred())

		project = &projectmodel.Project{
			Title:       "Clean Water for Kibera",
			Description: "Boreholes and storage tanks",
			Goal:        500000,
			Status:      projectmodel.StatusActive,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		Expect(db.Create(project).Error).NotTo(HaveOccurred())

		repo = NewDonationRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create", func() {
		It("should persist a pending donation", func() {
			d := newPending("TXN_1700000000001_AB12CD34", "ws_CO_0001", 1500)
			Expect(d.ID).To(BeNumerically(">", 0))

			fetched, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Status).To(Equal(donationmodel.StatusPending))
			Expect(fetched.Amount).To(Equal(int64(1500)))
		})

		It("should reject a duplicate transaction id", func() {
			newPending("TXN_1700000000002_AB12CD34", "ws_CO_0002", 100)

			dup := &donationmodel.Donation{
				ProjectID:     project.ID,
				Amount:        200,
				PhoneNumber:   "254712345678",
				TransactionID: "TXN_1700000000002_AB12CD34",
				Status:        donationmodel.StatusPending,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}
			Expect(repo.Create(dup)).To(HaveOccurred())
		})
	})

	Describe("GetByTransactionID", func() {
		It("should find the donation by its transaction id", func() {
			d := newPending("TXN_1700000000003_AB12CD34", "ws_CO_0003", 750)

			fetched, err := repo.GetByTransactionID(d.TransactionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.ID).To(Equal(d.ID))
		})

		It("should return record not found for an unknown id", func() {
			_, err := repo.GetByTransactionID("TXN_0000000000000_FFFFFFFF")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})

	Describe("SetPushResult", func() {
		It("should store the gateway request ids", func() {
			d := newPending("TXN_1700000000004_AB12CD34", "ws_CO_0004", 300)

			err := repo.SetPushResult(d.ID, "29115-34620561-1", "ws_CO_updated_0004")
			Expect(err).NotTo(HaveOccurred())

			fetched, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*fetched.MerchantRequestID).To(Equal("29115-34620561-1"))
			Expect(*fetched.CheckoutRequestID).To(Equal("ws_CO_updated_0004"))
		})
	})

	Describe("ApplyCallback", func() {
		It("should complete the donation and increment raised exactly once", func() {
			d := newPending("TXN_1700000000005_AB12CD34", "ws_CO_0005", 2500)

			updated, applied, err := repo.ApplyCallback("ws_CO_0005", donationmodel.StatusCompleted, 0, "The service request is processed successfully.", "NLJ7RT61SV")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())
			Expect(updated.ID).To(Equal(d.ID))
			Expect(updated.Status).To(Equal(donationmodel.StatusCompleted))
			Expect(*updated.MpesaReceiptNumber).To(Equal("NLJ7RT61SV"))
			Expect(updated.ProcessedAt).NotTo(BeNil())
			Expect(projectRaised()).To(Equal(int64(2500)))

			// duplicate delivery of the same callback
			again, applied, err := repo.ApplyCallback("ws_CO_0005", donationmodel.StatusCompleted, 0, "The service request is processed successfully.", "NLJ7RT61SV")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())
			Expect(again.Status).To(Equal(donationmodel.StatusCompleted))
			Expect(projectRaised()).To(Equal(int64(2500)))
		})

		It("should not touch raised when the donation is cancelled", func() {
			newPending("TXN_1700000000006_AB12CD34", "ws_CO_0006", 1000)

			updated, applied, err := repo.ApplyCallback("ws_CO_0006", donationmodel.StatusCancelled, 1032, "Request cancelled by user", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())
			Expect(updated.Status).To(Equal(donationmodel.StatusCancelled))
			Expect(updated.MpesaReceiptNumber).To(BeNil())
			Expect(projectRaised()).To(BeZero())
		})

		It("should not overwrite a terminal state with a later failure", func() {
			newPending("TXN_1700000000007_AB12CD34", "ws_CO_0007", 400)

			_, applied, err := repo.ApplyCallback("ws_CO_0007", donationmodel.StatusCompleted, 0, "ok", "ABC123")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			updated, applied, err := repo.ApplyCallback("ws_CO_0007", donationmodel.StatusFailed, 1037, "DS timeout", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())
			Expect(updated.Status).To(Equal(donationmodel.StatusCompleted))
			Expect(projectRaised()).To(Equal(int64(400)))
		})

		It("should return record not found for an unknown checkout id", func() {
			_, _, err := repo.ApplyCallback("ws_CO_missing", donationmodel.StatusCompleted, 0, "ok", "")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})

	Describe("MarkFailed", func() {
		It("should fail a pending donation with the given reason", func() {
			d := newPending("TXN_1700000000008_AB12CD34", "ws_CO_0008", 600)

			Expect(repo.MarkFailed(d.ID, "Failed to initiate M-Pesa payment")).To(Succeed())

			fetched, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Status).To(Equal(donationmodel.StatusFailed))
			Expect(*fetched.ResultDesc).To(Equal("Failed to initiate M-Pesa payment"))
			Expect(fetched.ProcessedAt).NotTo(BeNil())
		})

		It("should leave terminal donations untouched", func() {
			d := newPending("TXN_1700000000009_AB12CD34", "ws_CO_0009", 900)

			_, applied, err := repo.ApplyCallback("ws_CO_0009", donationmodel.StatusCompleted, 0, "ok", "XYZ987")
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			Expect(repo.MarkFailed(d.ID, "late failure")).To(Succeed())

			fetched, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Status).To(Equal(donationmodel.StatusCompleted))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			newPending("TXN_1700000000010_AB12CD34", "ws_CO_0010", 100)
			newPending("TXN_1700000000011_AB12CD34", "ws_CO_0011", 200)
			_, _, err := repo.ApplyCallback("ws_CO_0011", donationmodel.StatusCompleted, 0, "ok", "RCPT1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should filter by status", func() {
			donations, total, err := repo.List(donationpkg.ListFilter{
				Status: donationmodel.StatusCompleted,
				Limit:  10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(donations).To(HaveLen(1))
			Expect(donations[0].Amount).To(Equal(int64(200)))
		})

		It("should filter by project and count all matches", func() {
			donations, total, err := repo.List(donationpkg.ListFilter{
				ProjectID: project.ID,
				Limit:     1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(donations).To(HaveLen(1))
		})
	})

	Describe("FailStalePending", func() {
		It("should fail only pending donations older than the cutoff", func() {
			stale := newPending("TXN_1700000000012_AB12CD34", "ws_CO_0012", 50)
			Expect(db.Model(&SQLiteDonation{}).
				Where("id = ?", stale.ID).
				Update("created_at", time.Now().Add(-2*time.Hour)).Error).NotTo(HaveOccurred())

			fresh := newPending("TXN_1700000000013_AB12CD34", "ws_CO_0013", 60)

			count, err := repo.FailStalePending(time.Now().Add(-time.Hour), "Payment request expired")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			staleFetched, err := repo.GetByID(stale.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(staleFetched.Status).To(Equal(donationmodel.StatusFailed))
			Expect(*staleFetched.ResultDesc).To(Equal("Payment request expired"))

			freshFetched, err := repo.GetByID(fresh.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(freshFetched.Status).To(Equal(donationmodel.StatusPending))
		})
	})
})
