package v1

import (
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: uc}
}

// GET /api/v1/cart?country=TN&method=standard
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	method, ok := domain.ParseShippingMethod(r.URL.Query().Get("method"))
	if !ok {
		utils.WriteValidationError(w, domain.NewValidationError("method", "must be one of: standard express overnight"))
		return
	}
	view, err := h.cartUC.Get(r.Context(), id, r.URL.Query().Get("country"), method)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	var in usecase.AddCartItemInput
	if !decode(w, r, &in) {
		return
	}
	view, err := h.cartUC.AddItem(r.Context(), id, in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.cartUC.UpdateItem(r.Context(), id, r.PathValue("id"), req.Quantity)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := cartID(w, r)
	view, err := h.cartUC.RemoveItem(r.Context(), id, r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartUC.Clear(r.Context(), cartID(w, r)); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
