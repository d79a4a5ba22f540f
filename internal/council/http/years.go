package http

import (
	"encoding/json"
	"net/http"

	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

// YearsHandler exposes the cohort registry. Listing is public so the
// registration form can offer valid years; adding is admin only.
type YearsHandler struct {
	CohortService *service.CohortService
}

type yearView struct {
	Year   int  `json:"year"`
	Closed bool `json:"closed"`
}

func (h *YearsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	years, err := h.CohortService.ListYears(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]yearView, 0, len(years))
	for _, y := range years {
		views = append(views, yearView{Year: y.Year, Closed: y.Closed})
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

type addYearRequest struct {
	Year   int  `json:"year"`
	Closed bool `json:"closed,omitempty"`
}

func (h *YearsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if err := h.CohortService.AddYear(r.Context(), req.Year, req.Closed); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, yearView{Year: req.Year, Closed: req.Closed})
}
