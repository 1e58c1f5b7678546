package v1

import (
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"
)

type AdminCatalogHandler struct {
	catalogUC   *usecase.CatalogUsecase
	promotionUC *usecase.PromotionUsecase
}

func NewAdminCatalogHandler(catalogUC *usecase.CatalogUsecase, promotionUC *usecase.PromotionUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: catalogUC, promotionUC: promotionUC}
}

// --- Products ---

func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p, limit, offset := page(r)
	filter := domain.ProductFilter{
		CategorySlug: r.URL.Query().Get("category"),
		Query:        r.URL.Query().Get("q"),
		IsFeatured:   boolQuery(r, "featured"),
		Limit:        limit,
		Offset:       offset,
	}
	if active := boolQuery(r, "active"); active != nil && *active {
		filter.ActiveOnly = true
	}

	products, total, err := h.catalogUC.AdminListProducts(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       products,
		"pagination": domain.NewPagination(p, limit, total),
	})
}

func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.AdminGetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if !decode(w, r, &in) {
		return
	}
	product, err := h.catalogUC.CreateProduct(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if !decode(w, r, &in) {
		return
	}
	product, err := h.catalogUC.UpdateProduct(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		utils.WriteValidationError(w, domain.NewValidationError("isActive", "is required"))
		return
	}
	if err := h.catalogUC.UpdateProductStatus(r.Context(), r.PathValue("id"), *req.IsActive); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

func (h *AdminCatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUC.ListCategories(r.Context(), false)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cats)
}

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if !decode(w, r, &category) {
		return
	}
	category.ID = ""
	if err := h.catalogUC.CreateCategory(r.Context(), &category); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, category)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if !decode(w, r, &category) {
		return
	}
	category.ID = r.PathValue("id")
	if err := h.catalogUC.UpdateCategory(r.Context(), &category); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Promotions ---

func (h *AdminCatalogHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	p, limit, offset := page(r)
	filter := domain.PromotionFilter{
		ProductID: r.URL.Query().Get("productId"),
		Limit:     limit,
		Offset:    offset,
	}
	if active := boolQuery(r, "active"); active != nil && *active {
		filter.ActiveOnly = true
	}

	promos, total, err := h.promotionUC.List(r.Context(), filter)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       promos,
		"pagination": domain.NewPagination(p, limit, total),
	})
}

func (h *AdminCatalogHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var in usecase.PromotionInput
	if !decode(w, r, &in) {
		return
	}
	promo, err := h.promotionUC.Create(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, promo)
}

func (h *AdminCatalogHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	var in usecase.PromotionInput
	if !decode(w, r, &in) {
		return
	}
	promo, err := h.promotionUC.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, promo)
}

func (h *AdminCatalogHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.promotionUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
