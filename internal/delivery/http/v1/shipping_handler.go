package v1

import (
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

type ShippingHandler struct {
	settingsUC *usecase.SettingsUsecase
	shippingUC *usecase.ShippingUsecase
}

func NewShippingHandler(settingsUC *usecase.SettingsUsecase, shippingUC *usecase.ShippingUsecase) *ShippingHandler {
	return &ShippingHandler{settingsUC: settingsUC, shippingUC: shippingUC}
}

// GET /api/v1/settings/shipping
func (h *ShippingHandler) GetShippingSettings(w http.ResponseWriter, r *http.Request) {
	s := h.settingsUC.GetSettings(r.Context())
	w.Header().Set("Cache-Control", "public, max-age=60")
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"freeShippingThreshold": s.GlobalFreeShippingThreshold,
		"freeShippingEnabled":   s.FreeShippingEnabled,
		"defaultShippingCost":   s.DefaultShippingCost,
	})
}

// GET /api/v1/shipping/rates?country=TN
func (h *ShippingHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	country := domain.NormalizeCountry(r.URL.Query().Get("country"))
	if len(country) != 2 {
		utils.WriteError(w, http.StatusBadRequest, "country must be a 2-letter code")
		return
	}
	rates, err := h.shippingUC.ListRates(r.Context(), country)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rates)
}

// GET /api/v1/shipping/quote?country=TN&subtotal=450&method=standard
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verr := &domain.ValidationError{}

	country := domain.NormalizeCountry(q.Get("country"))
	if len(country) != 2 {
		verr.Add("country", "must be exactly 2 characters")
	}
	subtotal, err := decimal.NewFromString(q.Get("subtotal"))
	if err != nil || subtotal.IsNegative() {
		verr.Add("subtotal", "must be a non-negative amount")
	}
	method, ok := domain.ParseShippingMethod(q.Get("method"))
	if !ok {
		verr.Add("method", "must be one of: standard express overnight")
	}
	if verr.HasErrors() {
		utils.WriteValidationError(w, verr)
		return
	}

	result := h.shippingUC.CalculateShipping(r.Context(), country, subtotal, method)
	utils.WriteJSON(w, http.StatusOK, result)
}
