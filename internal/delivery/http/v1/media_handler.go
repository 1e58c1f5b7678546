package v1

import (
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"
)

type MediaHandler struct {
	mediaUC *usecase.MediaUsecase
}

func NewMediaHandler(uc *usecase.MediaUsecase) *MediaHandler {
	return &MediaHandler{mediaUC: uc}
}

// GET /api/v1/banners
func (h *MediaHandler) Banners(w http.ResponseWriter, r *http.Request) {
	h.listActive(w, r, domain.MediaKindBanner)
}

// GET /api/v1/reels
func (h *MediaHandler) Reels(w http.ResponseWriter, r *http.Request) {
	h.listActive(w, r, domain.MediaKindReel)
}

func (h *MediaHandler) listActive(w http.ResponseWriter, r *http.Request, kind string) {
	blocks, err := h.mediaUC.ListActive(r.Context(), kind)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, blocks)
}

// --- Admin ---

func (h *MediaHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.mediaUC.List(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, blocks)
}

func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.MediaInput
	if !decode(w, r, &in) {
		return
	}
	block, err := h.mediaUC.Create(r.Context(), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, block)
}

func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.MediaInput
	if !decode(w, r, &in) {
		return
	}
	block, err := h.mediaUC.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, block)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mediaUC.Delete(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
