package v1

import (
	"net/http"

	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"
)

type OrderHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	orderUC    *usecase.OrderUsecase
}

func NewOrderHandler(checkoutUC *usecase.CheckoutUsecase, orderUC *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkoutUC: checkoutUC, orderUC: orderUC}
}

// POST /api/v1/checkout/quote
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	var req struct {
		Country string `json:"country"`
		Method  string `json:"method"`
	}
	if !decode(w, r, &req) {
		return
	}
	quote, err := h.checkoutUC.Quote(r.Context(), id, req.Country, req.Method)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}

// POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	var in usecase.CheckoutInput
	if !decode(w, r, &in) {
		return
	}
	order, err := h.checkoutUC.PlaceOrder(r.Context(), id, in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}
