package v1

import (
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// AdminSettingsHandler serves site settings, shipping rates and tax rates.
type AdminSettingsHandler struct {
	settingsUC *usecase.SettingsUsecase
	shippingUC *usecase.ShippingUsecase
	taxUC      *usecase.TaxUsecase
}

func NewAdminSettingsHandler(settingsUC *usecase.SettingsUsecase, shippingUC *usecase.ShippingUsecase, taxUC *usecase.TaxUsecase) *AdminSettingsHandler {
	return &AdminSettingsHandler{settingsUC: settingsUC, shippingUC: shippingUC, taxUC: taxUC}
}

func (h *AdminSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.settingsUC.GetSettings(r.Context()))
}

func (h *AdminSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.SiteSettings
	if !decode(w, r, &in) {
		return
	}
	s, err := h.settingsUC.UpdateSettings(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

// --- Shipping rates ---

func (h *AdminSettingsHandler) ListShippingRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.shippingUC.ListAllRates(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rates)
}

func (h *AdminSettingsHandler) CreateShippingRate(w http.ResponseWriter, r *http.Request) {
	var in usecase.ShippingRateInput
	if !decode(w, r, &in) {
		return
	}
	rate, err := h.shippingUC.CreateRate(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, rate)
}

func (h *AdminSettingsHandler) UpdateShippingRate(w http.ResponseWriter, r *http.Request) {
	var in usecase.ShippingRateInput
	if !decode(w, r, &in) {
		return
	}
	rate, err := h.shippingUC.UpdateRate(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rate)
}

func (h *AdminSettingsHandler) DeleteShippingRate(w http.ResponseWriter, r *http.Request) {
	if err := h.shippingUC.DeleteRate(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tax rates ---

func (h *AdminSettingsHandler) ListTaxRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.taxUC.ListRates(r.Context())
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rates)
}

func (h *AdminSettingsHandler) SetTaxRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if !decode(w, r, &req) {
		return
	}
	rate, err := h.taxUC.SetRate(r.Context(), r.PathValue("country"), req.Rate)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rate)
}

func (h *AdminSettingsHandler) DeleteTaxRate(w http.ResponseWriter, r *http.Request) {
	if err := h.taxUC.DeleteRate(r.Context(), r.PathValue("country")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
