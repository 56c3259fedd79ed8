package handler

import (
	"log/slog"
	"net/http"

	"github.com/tahmid/trackroom/internal/auth"
	"github.com/tahmid/trackroom/internal/service"
)

// TipHandler serves tipping: checkout session creation and the provider's
// completion callback are public (tippers may be anonymous), the received
// list is private to the creator.
type TipHandler struct {
	tips   *service.TipService
	logger *slog.Logger
}

func NewTipHandler(tips *service.TipService, logger *slog.Logger) *TipHandler {
	return &TipHandler{tips: tips, logger: logger}
}

type checkoutRequest struct {
	CreatorID string `json:"creator_id" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Currency  string `json:"currency" validate:"required"`
}

// HandleCreateCheckout opens a payment session for tipping a creator.
//
// POST /api/v1/tips/checkout
func (h *TipHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.tips.CreateCheckout(r.Context(), req.CreatorID, req.Amount, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"payment_reference": session.Reference,
		"redirect_url":      session.RedirectURL,
	})
}

type recordTipRequest struct {
	CreatorID        string `json:"creator_id" validate:"required"`
	Amount           int64  `json:"amount" validate:"required,gt=0"`
	Currency         string `json:"currency" validate:"required"`
	Message          string `json:"message" validate:"max=500"`
	TipperUsername   string `json:"tipper_username" validate:"max=60"`
	PaymentReference string `json:"payment_reference" validate:"required"`
}

// HandleRecord persists a completed tip. A replayed payment reference gets
// 409 and the stored tip stays singular.
//
// POST /api/v1/tips
func (h *TipHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordTipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tip, err := h.tips.Record(r.Context(), service.RecordTipInput{
		CreatorID:        req.CreatorID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Message:          req.Message,
		TipperUsername:   req.TipperUsername,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tip)
}

// HandleListReceived returns the tips the caller has received.
//
// GET /api/v1/tips/received
func (h *TipHandler) HandleListReceived(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	tips, err := h.tips.ListForCreator(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tips)
}
