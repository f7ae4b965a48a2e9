package donation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/msaada/donation-platform/internal/mpesa"
	"github.com/msaada/donation-platform/internal/transport"
)

// WebhookHandler receives the provider's asynchronous payment result.
//
// The provider retries any non-success response indefinitely, so this
// handler acknowledges success unconditionally: a malformed payload, an
// unknown checkout id or an internal reconciliation failure is logged and
// still acked. Retrying against an already-applied result risks double
// crediting a project.
type WebhookHandler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewWebhookHandler(service ServiceAPI, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
		Logger:      logger,
	}
}

// HandleCallback handles POST /api/v1/mpesa/callback
func (h *WebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var envelope mpesa.CallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.Logger.Error("callback: failed to parse payload", "error", err)
		h.WriteJSON(w, http.StatusOK, SuccessAck())
		return
	}

	callback := envelope.Body.StkCallback

	h.Logger.Info("callback received",
		"merchant_request_id", callback.MerchantRequestID,
		"checkout_request_id", callback.CheckoutRequestID,
		"result_code", callback.ResultCode,
		"result_desc", callback.ResultDesc)

	if err := h.Service.ProcessCallback(r.Context(), &callback); err != nil {
		h.Logger.Error("callback: reconciliation failed",
			"error", err,
			"checkout_request_id", callback.CheckoutRequestID)
	}

	h.WriteJSON(w, http.StatusOK, SuccessAck())
}
