package v1

import (
	"net/http"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/utils"
)

const (
	dateLayout       = "2006-01-02"
	defaultStatsDays = 30
)

type AdminStatsHandler struct {
	statsUC *usecase.StatsUsecase
}

func NewAdminStatsHandler(statsUC *usecase.StatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{statsUC: statsUC}
}

// dateRange reads ?start=&end= as YYYY-MM-DD. Missing values default to the
// last 30 days ending today.
func dateRange(r *http.Request) (time.Time, time.Time, *domain.ValidationError) {
	q := r.URL.Query()
	verr := &domain.ValidationError{}

	end := time.Now().UTC()
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			verr.Add("end", "must be a date (YYYY-MM-DD)")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultStatsDays - 1))
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			verr.Add("start", "must be a date (YYYY-MM-DD)")
		}
		start = t
	}
	if verr.HasErrors() {
		return time.Time{}, time.Time{}, verr
	}
	return start, end, nil
}

// GET /api/v1/admin/stats/kpis
func (h *AdminStatsHandler) GetRevenueKPIs(w http.ResponseWriter, r *http.Request) {
	start, end, verr := dateRange(r)
	if verr != nil {
		utils.WriteValidationError(w, verr)
		return
	}
	kpis, err := h.statsUC.GetRevenueKPIs(r.Context(), start, end)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, kpis)
}

// GET /api/v1/admin/stats/daily-sales
func (h *AdminStatsHandler) GetDailySales(w http.ResponseWriter, r *http.Request) {
	start, end, verr := dateRange(r)
	if verr != nil {
		utils.WriteValidationError(w, verr)
		return
	}
	days, err := h.statsUC.GetDailySales(r.Context(), start, end)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, days)
}

// GET /api/v1/admin/stats/top-products?limit=10
func (h *AdminStatsHandler) GetTopSellingProducts(w http.ResponseWriter, r *http.Request) {
	start, end, verr := dateRange(r)
	if verr != nil {
		utils.WriteValidationError(w, verr)
		return
	}
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)
	products, err := h.statsUC.GetTopSellingProducts(r.Context(), start, end, limit)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}
