package mpesa_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/msaada/donation-platform/internal/mpesa"
)

var _ = Describe("FormatPhoneNumber", func() {
	It("rewrites a leading zero to the country prefix", func() {
		Expect(mpesa.FormatPhoneNumber("0712345678")).To(Equal("254712345678"))
	})

	It("passes through numbers already carrying the prefix", func() {
		Expect(mpesa.FormatPhoneNumber("254712345678")).To(Equal("254712345678"))
	})

	It("prefixes bare mobile numbers starting with 7", func() {
		Expect(mpesa.FormatPhoneNumber("712345678")).To(Equal("254712345678"))
	})

	It("prefixes bare mobile numbers starting with 1", func() {
		Expect(mpesa.FormatPhoneNumber("110345678")).To(Equal("254110345678"))
	})

	It("strips spaces, dashes and a plus sign", func() {
		Expect(mpesa.FormatPhoneNumber("+254 712-345-678")).To(Equal("254712345678"))
	})
})

var _ = Describe("ValidatePhoneNumber", func() {
	It("accepts a canonical subscriber number", func() {
		Expect(mpesa.ValidatePhoneNumber("0712345678")).To(BeTrue())
	})

	It("rejects numbers that are too short", func() {
		Expect(mpesa.ValidatePhoneNumber("07123")).To(BeFalse())
	})

	It("rejects numbers that are too long", func() {
		Expect(mpesa.ValidatePhoneNumber("25471234567890")).To(BeFalse())
	})

	It("rejects non-Kenyan prefixes", func() {
		Expect(mpesa.ValidatePhoneNumber("255712345678")).To(BeFalse())
	})
})

var _ = Describe("StkCallback", func() {
	It("extracts the receipt number from callback metadata", func() {
		raw := `{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-1",
					"CheckoutRequestID": "ws_CO_191220191020363925",
					"ResultCode": 0,
					"ResultDesc": "The service request is processed successfully.",
					"CallbackMetadata": {
						"Item": [
							{"Name": "Amount", "Value": 100.00},
							{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
							{"Name": "TransactionDate", "Value": 20191219102115},
							{"Name": "PhoneNumber", "Value": 254712345678}
						]
					}
				}
			}
		}`

		var envelope mpesa.CallbackEnvelope
		Expect(json.Unmarshal([]byte(raw), &envelope)).To(Succeed())

		callback := envelope.Body.StkCallback
		Expect(callback.ResultCode).To(Equal(0))
		Expect(callback.ReceiptNumber()).To(Equal("NLJ7RT61SV"))
	})

	It("returns empty receipt when metadata is absent", func() {
		raw := `{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-1",
					"CheckoutRequestID": "ws_CO_191220191020363925",
					"ResultCode": 1032,
					"ResultDesc": "Request cancelled by user"
				}
			}
		}`

		var envelope mpesa.CallbackEnvelope
		Expect(json.Unmarshal([]byte(raw), &envelope)).To(Succeed())

		callback := envelope.Body.StkCallback
		Expect(callback.ResultCode).To(Equal(mpesa.ResultCodeCancelled))
		Expect(callback.ReceiptNumber()).To(Equal(""))
	})
})
