package donation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	donationPkg "github.com/msaada/donation-platform/internal/donation"
)

type stubSweepRepository struct {
	donationPkg.RepositoryAPI

	mu      sync.Mutex
	cutoffs []time.Time
	reasons []string
	count   int64
	err     error
}

func (s *stubSweepRepository) FailStalePending(cutoff time.Time, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	s.reasons = append(s.reasons, reason)
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}

func (s *stubSweepRepository) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cutoffs)
}

var _ = Describe("Sweeper", func() {
	var (
		repo   *stubSweepRepository
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	)

	BeforeEach(func() {
		repo = &stubSweepRepository{count: 2}
	})

	Describe("Sweep", func() {
		It("fails pending donations older than the configured window", func() {
			sweeper := donationPkg.NewSweeper(repo, time.Minute, 30*time.Minute, logger)

			sweeper.Sweep()

			Expect(repo.calls()).To(Equal(1))
			Expect(repo.cutoffs[0]).To(BeTemporally("~", time.Now().Add(-30*time.Minute), time.Second))
			Expect(repo.reasons[0]).To(ContainSubstring("not received"))
		})

		It("swallows repository errors and keeps the loop alive", func() {
			repo.err = errors.New("connection refused")
			sweeper := donationPkg.NewSweeper(repo, time.Minute, 30*time.Minute, logger)

			Expect(sweeper.Sweep).NotTo(Panic())
			Expect(repo.calls()).To(Equal(1))
		})
	})

	Describe("Start", func() {
		It("sweeps on the configured cadence until cancelled", func() {
			sweeper := donationPkg.NewSweeper(repo, 10*time.Millisecond, 30*time.Minute, logger)

			ctx, cancel := context.WithCancel(context.Background())
			sweeper.Start(ctx)

			Eventually(repo.calls).Should(BeNumerically(">=", 2))

			cancel()
			Eventually(func() int {
				n := repo.calls()
				time.Sleep(30 * time.Millisecond)
				return repo.calls() - n
			}).Should(BeZero())
		})
	})
})
