package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/binhvu284/nobleco-sub000/domain"
	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/checkout"
	"github.com/binhvu284/nobleco-sub000/internal/location"
)

type CheckoutHandler struct {
	registry *Registry
	userID   int64 // console operator, supplied by the auth collaborator
}

func NewCheckoutHandler(registry *Registry, userID int64) *CheckoutHandler {
	return &CheckoutHandler{registry: registry, userID: userID}
}

type BeginRequestDTO struct {
	OrderID *int64 `json:"order_id,omitempty"`
}

type CheckoutStateDTO struct {
	OrderID         *int64            `json:"order_id"`
	OrderNumber     string            `json:"order_number,omitempty"`
	Items           []domain.CartItem `json:"items"`
	Totals          domain.Totals     `json:"totals"`
	DiscountCode    string            `json:"discount_code,omitempty"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Client          *domain.Client    `json:"client,omitempty"`
}

func checkoutState(a *checkout.Activation) CheckoutStateDTO {
	return CheckoutStateDTO{
		OrderID:         a.Engine.OrderID(),
		OrderNumber:     a.Engine.OrderNumber(),
		Items:           a.Snapshot.Items(),
		Totals:          a.Snapshot.Totals(),
		DiscountCode:    a.Snapshot.DiscountCode(),
		ShippingAddress: a.ShippingAddress(),
		Notes:           a.Notes(),
		Client:          a.Selector.Selected(),
	}
}

// POST /api/v1/checkout/begin
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	if err := a.Begin(r.Context(), req.OrderID); err != nil {
		handleFlowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutState(a))
}

type AddItemRequestDTO struct {
	Product  domain.ProductRef `json:"product"`
	Quantity int64             `json:"quantity"`
}

// POST /api/v1/checkout/cart/items
func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be positive")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.Snapshot.AddProduct(r.Context(), req.Product, req.Quantity)
	respondJSON(w, http.StatusCreated, checkoutState(a))
}

type SetQuantityRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

// PUT /api/v1/checkout/cart/items/{productID}
func (h *CheckoutHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}
	var req SetQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.Snapshot.AddOrSetQuantity(r.Context(), productID, req.Quantity)
	respondJSON(w, http.StatusOK, checkoutState(a))
}

// POST /api/v1/checkout/cart/items/{productID}/increment
func (h *CheckoutHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.bump(w, r, true)
}

// POST /api/v1/checkout/cart/items/{productID}/decrement
func (h *CheckoutHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.bump(w, r, false)
}

func (h *CheckoutHandler) bump(w http.ResponseWriter, r *http.Request, up bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	if up {
		a.Snapshot.Increment(r.Context(), productID)
	} else {
		a.Snapshot.Decrement(r.Context(), productID)
	}
	respondJSON(w, http.StatusOK, checkoutState(a))
}

type DiscountRequestDTO struct {
	Code string `json:"code"`
}

// POST /api/v1/checkout/discount
func (h *CheckoutHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req DiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "discount code is required")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.ApplyDiscount(r.Context(), req.Code)
	respondJSON(w, http.StatusOK, checkoutState(a))
}

// DELETE /api/v1/checkout/discount
func (h *CheckoutHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.RemoveDiscount(r.Context())
	respondJSON(w, http.StatusOK, checkoutState(a))
}

type NotesRequestDTO struct {
	Notes string `json:"notes"`
}

// PUT /api/v1/checkout/notes
func (h *CheckoutHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.SetNotes(req.Notes)
	respondJSON(w, http.StatusOK, checkoutState(a))
}

type LocationRequestDTO struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
}

// PUT /api/v1/checkout/location
func (h *CheckoutHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	a.SelectCountry(r.Context(), req.Country)
	if req.Region != "" {
		a.SelectRegion(r.Context(), req.Region)
	}
	respondJSON(w, http.StatusOK, checkoutState(a))
}

type LocationsDTO struct {
	Countries []string            `json:"countries"`
	Regions   map[string][]string `json:"regions"`
}

// GET /api/v1/checkout/locations
func (h *CheckoutHandler) Locations(w http.ResponseWriter, _ *http.Request) {
	regions := make(map[string][]string)
	for _, c := range location.Countries() {
		regions[c] = location.RegionsFor(c)
	}
	respondJSON(w, http.StatusOK, LocationsDTO{
		Countries: location.Countries(),
		Regions:   regions,
	})
}

// GET /api/v1/checkout/clients?q=
func (h *CheckoutHandler) SearchClients(w http.ResponseWriter, r *http.Request) {
	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	if err := a.Selector.Load(r.Context(), h.userID); err != nil {
		handleFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a.Selector.Search(r.URL.Query().Get("q")))
}

type SelectClientRequestDTO struct {
	ClientID int64 `json:"client_id"`
}

// POST /api/v1/checkout/clients/select
func (h *CheckoutHandler) SelectClient(w http.ResponseWriter, r *http.Request) {
	var req SelectClientRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	if err := a.Selector.Select(r.Context(), req.ClientID); err != nil {
		handleFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutState(a))
}

// POST /api/v1/checkout/clients
func (h *CheckoutHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req api.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := h.registry.GetOrCreate(getSessionID(r.Context()))
	created, err := a.Selector.CreateAndSelect(r.Context(), &req)
	if err != nil {
		handleFlowError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
