package donation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/msaada/donation-platform/internal"
	"github.com/msaada/donation-platform/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
		Logger:      logger,
	}
}

// InitiateDonation handles POST /api/v1/donations
func (h *Handler) InitiateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("InitiateDonation: failed to parse request body", "error", err)
		h.HandleServiceError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.CreateDonation(r.Context(), &req)
	if err != nil {
		h.Logger.Error("InitiateDonation: service error", "error", err, "project_id", req.ProjectID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetDonationStatus handles GET /api/v1/donations/{transactionID}/status
func (h *Handler) GetDonationStatus(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	if transactionID == "" {
		h.HandleServiceError(w, errors.NewValidationError("transaction id is required", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.GetDonationStatus(r.Context(), transactionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// ListDonations handles GET /api/v1/donations (admin reporting)
func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	query := ListDonationsQuery{}

	if projectID := r.URL.Query().Get("projectId"); projectID != "" {
		id, err := strconv.ParseInt(projectID, 10, 64)
		if err != nil {
			h.HandleServiceError(w, errors.NewValidationError("invalid projectId", errors.ErrCodeValidationFailed))
			return
		}
		query.ProjectID = id
	}

	query.Status = r.URL.Query().Get("status")

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			query.Page = p
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			query.Limit = l
		}
	}

	resp, err := h.Service.ListDonations(r.Context(), query)
	if err != nil {
		h.Logger.Error("ListDonations: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
