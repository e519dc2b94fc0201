package http

import (
	"net/http"

	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/payment"
)

type PaymentHandler struct {
	registry *Registry
}

func NewPaymentHandler(registry *Registry) *PaymentHandler {
	return &PaymentHandler{registry: registry}
}

type PaymentStateDTO struct {
	OrderID     int64            `json:"order_id"`
	Status      string           `json:"status"`
	PayCode     string           `json:"pay_code,omitempty"`
	QRPayload   string           `json:"qr_payload,omitempty"`
	BankAccount *api.BankAccount `json:"bank_account,omitempty"`
}

func paymentState(s *payment.Session) PaymentStateDTO {
	return PaymentStateDTO{
		OrderID:     s.OrderID(),
		Status:      s.Status().String(),
		PayCode:     s.PayCode(),
		QRPayload:   s.QRPayload(),
		BankAccount: s.BankAccount(),
	}
}

// POST /api/v1/checkout/payment
//
// Finalizes the draft and enters the payment step. Safe to call again
// within the same session: the draft is not re-finalized and no second
// payment is created.
func (h *PaymentHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	a := h.registry.GetOrCreate(getSessionID(r.Context()))

	session, err := a.ProceedToPayment(r.Context())
	if err != nil {
		handleFlowError(w, err)
		return
	}
	if err := session.Start(r.Context()); err != nil {
		handleFlowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentState(session))
}

// GET /api/v1/checkout/payment
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}
	respondJSON(w, http.StatusOK, paymentState(session))
}

// POST /api/v1/checkout/payment/refresh — one out-of-band status
// check; the poll interval keeps its own schedule.
func (h *PaymentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}
	if _, err := session.Refresh(r.Context()); err != nil {
		handleFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paymentState(session))
}

// POST /api/v1/checkout/payment/cancel — back to checkout: stop the
// poll loop, keep the session for a possible return.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}
	session.Stop()
	respondJSON(w, http.StatusOK, paymentState(session))
}

func (h *PaymentHandler) session(w http.ResponseWriter, r *http.Request) *payment.Session {
	a := h.registry.Get(getSessionID(r.Context()))
	if a == nil || a.Session() == nil {
		respondError(w, http.StatusNotFound, "no_payment_session", "no payment session for this checkout")
		return nil
	}
	return a.Session()
}
