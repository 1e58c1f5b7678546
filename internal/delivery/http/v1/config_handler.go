package v1

import (
	"net/http"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/utils"
)

type ConfigHandler struct {
	cache cache.CacheService
}

func NewConfigHandler(cache cache.CacheService) *ConfigHandler {
	return &ConfigHandler{cache: cache}
}

// GET /api/v1/admin/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums, _ := cache.Fetch(h.cache, "system:config:enums", time.Hour, func() (map[string]interface{}, error) {
		return map[string]interface{}{
			"orderStatuses":   domain.OrderStatuses,
			"shippingMethods": domain.ShippingMethods,
			"mediaKinds":      domain.MediaKinds,
		}, nil
	})
	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, enums)
}
