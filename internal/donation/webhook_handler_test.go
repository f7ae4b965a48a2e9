package donation_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	donationPkg "github.com/msaada/donation-platform/internal/donation"
	"github.com/msaada/donation-platform/internal/mpesa"
)

type stubCallbackService struct {
	donationPkg.ServiceAPI
	processed    []*mpesa.StkCallback
	processError error
}

func (s *stubCallbackService) ProcessCallback(ctx context.Context, callback *mpesa.StkCallback) error {
	s.processed = append(s.processed, callback)
	return s.processError
}

var _ = Describe("WebhookHandler", func() {
	var (
		handler *donationPkg.WebhookHandler
		service *stubCallbackService
	)

	BeforeEach(func() {
		service = &stubCallbackService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = donationPkg.NewWebhookHandler(service, logger)
	})

	callbackBody := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"}]
				}
			}
		}
	}`

	expectSuccessAck := func(rec *httptest.ResponseRecorder) {
		Expect(rec.Code).To(Equal(http.StatusOK))
		var ack donationPkg.CallbackAck
		Expect(json.Unmarshal(rec.Body.Bytes(), &ack)).To(Succeed())
		Expect(ack.ResultCode).To(Equal(0))
		Expect(ack.ResultDesc).To(Equal("Success"))
	}

	It("forwards the callback and acknowledges success", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/mpesa/callback", strings.NewReader(callbackBody))
		rec := httptest.NewRecorder()

		handler.HandleCallback(rec, req)

		expectSuccessAck(rec)
		Expect(service.processed).To(HaveLen(1))
		Expect(service.processed[0].CheckoutRequestID).To(Equal("ws_CO_191220191020363925"))
	})

	It("acknowledges success even for a malformed payload", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/mpesa/callback", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		handler.HandleCallback(rec, req)

		expectSuccessAck(rec)
		Expect(service.processed).To(BeEmpty())
	})

	It("acknowledges success when reconciliation fails", func() {
		service.processError = errors.New("database unavailable")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mpesa/callback", strings.NewReader(callbackBody))
		rec := httptest.NewRecorder()

		handler.HandleCallback(rec, req)

		expectSuccessAck(rec)
		Expect(service.processed).To(HaveLen(1))
	})
})
