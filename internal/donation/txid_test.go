package donation_test

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	donationPkg "github.com/msaada/donation-platform/internal/donation"
)

var _ = Describe("NewTransactionID", func() {
	It("matches the TXN_<millis>_<suffix> shape in upper case", func() {
		id := donationPkg.NewTransactionID()
		Expect(id).To(MatchRegexp(`^TXN_\d{13}_[0-9A-F]+$`))
	})

	It("does not repeat across consecutive generations", func() {
		seen := make(map[string]struct{})
		pattern := regexp.MustCompile(`^TXN_\d{13}_[0-9A-F]+$`)
		for i := 0; i < 1000; i++ {
			id := donationPkg.NewTransactionID()
			Expect(pattern.MatchString(id)).To(BeTrue())
			_, dup := seen[id]
			Expect(dup).To(BeFalse(), "duplicate transaction id %s", id)
			seen[id] = struct{}{}
		}
	})
})
