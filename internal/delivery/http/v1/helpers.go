package v1

import (
	"net/http"
	"strconv"

	"atelier-backend/internal/delivery/http/middleware"
	"atelier-backend/pkg/utils"

	"github.com/google/uuid"
)

const (
	cartCookie     = "cart_id"
	cartCookieAge  = 30 * 24 * 60 * 60
	maxPageLimit   = 100
	maxRequestBody = 1 << 20
)

// cartID returns the guest cart id of the request, issuing a new one when the
// header and cookie are missing or malformed. The id is echoed back in both.
func cartID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(middleware.CartIDHeader)
	if id == "" {
		if c, err := r.Cookie(cartCookie); err == nil {
			id = c.Value
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	w.Header().Set(middleware.CartIDHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cartCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// decode reads a bounded JSON body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := utils.DecodeJSON(r, dst); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return false
	}
	return true
}

// page reads page/limit query values and returns page, limit and offset.
func page(r *http.Request) (int, int, int) {
	q := r.URL.Query()
	p, limit := utils.ClampPage(utils.ParseInt(q.Get("page"), 1), utils.ParseInt(q.Get("limit"), 20), maxPageLimit)
	return p, limit, (p - 1) * limit
}

func boolQuery(r *http.Request, key string) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
