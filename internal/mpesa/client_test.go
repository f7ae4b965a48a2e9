package mpesa_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/mpesa"
)

func TestMpesa(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mpesa Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server       *httptest.Server
		client       *mpesa.Client
		logger       *slog.Logger
		tokenCalls   int32
		pushCalls    int32
		pushResponse map[string]interface{}
		pushStatus   int
	)

	BeforeEach(func() {
		atomic.StoreInt32(&tokenCalls, 0)
		atomic.StoreInt32(&pushCalls, 0)
		pushStatus = http.StatusOK
		pushResponse = map[string]interface{}{
			"MerchantRequestID":   "29115-34620561-1",
			"CheckoutRequestID":   "ws_CO_191220191020363925",
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		mux := http.NewServeMux()
		mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt32(&tokenCalls, 1)
			Expect(r.Header.Get("Authorization")).To(HavePrefix("Basic "))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":"3599"}`, n)
		})
		mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&pushCalls, 1)
			Expect(r.Header.Get("Authorization")).To(HavePrefix("Bearer "))

			var payload map[string]interface{}
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())
			Expect(payload).To(HaveKey("BusinessShortCode"))
			Expect(payload).To(HaveKey("Password"))
			Expect(payload).To(HaveKey("Timestamp"))
			Expect(payload["TransactionType"]).To(Equal("CustomerPayBillOnline"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(pushStatus)
			json.NewEncoder(w).Encode(pushResponse)
		})
		server = httptest.NewServer(mux)

		client = mpesa.NewClient(mpesa.Config{
			BaseURL:        server.URL,
			ConsumerKey:    "key",
			ConsumerSecret: "secret",
			Passkey:        "passkey",
			ShortCode:      "174379",
			CallbackURL:    "https://example.com/api/v1/mpesa/callback",
		}, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("GetAccessToken", func() {
		It("fetches a token from the provider", func() {
			token, err := client.GetAccessToken(context.Background())

			Expect(err).ToNot(HaveOccurred())
			Expect(token).To(Equal("token-1"))
			Expect(atomic.LoadInt32(&tokenCalls)).To(Equal(int32(1)))
		})

		It("reuses the cached token while it is valid", func() {
			first, err := client.GetAccessToken(context.Background())
			Expect(err).ToNot(HaveOccurred())

			second, err := client.GetAccessToken(context.Background())
			Expect(err).ToNot(HaveOccurred())

			Expect(second).To(Equal(first))
			Expect(atomic.LoadInt32(&tokenCalls)).To(Equal(int32(1)))
		})
	})

	Describe("InitiateSTKPush", func() {
		It("submits the push and returns the provider identifiers", func() {
			resp, err := client.InitiateSTKPush(context.Background(), &mpesa.STKPushRequest{
				PhoneNumber:      "254712345678",
				Amount:           100,
				AccountReference: "TXN_1_ABCD",
				TransactionDesc:  "Donation to Clean Water",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.MerchantRequestID).To(Equal("29115-34620561-1"))
			Expect(resp.CheckoutRequestID).To(Equal("ws_CO_191220191020363925"))
			Expect(atomic.LoadInt32(&pushCalls)).To(Equal(int32(1)))
		})

		It("returns a gateway error when the provider rejects the push", func() {
			pushResponse["ResponseCode"] = "1"
			pushResponse["ResponseDescription"] = "Invalid Access Token"

			resp, err := client.InitiateSTKPush(context.Background(), &mpesa.STKPushRequest{
				PhoneNumber: "254712345678",
				Amount:      100,
			})

			Expect(resp).To(BeNil())
			Expect(err).To(HaveOccurred())

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeGatewayRejected))
		})

		It("returns a gateway error on a non-200 status", func() {
			pushStatus = http.StatusServiceUnavailable

			resp, err := client.InitiateSTKPush(context.Background(), &mpesa.STKPushRequest{
				PhoneNumber: "254712345678",
				Amount:      100,
			})

			Expect(resp).To(BeNil())
			Expect(err).To(HaveOccurred())

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeGatewayUnavailable))
		})
	})
})
