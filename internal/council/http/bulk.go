package http

import (
	"encoding/json"
	"net/http"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

// BulkHandler provisions a batch of accounts in one call. The response is
// always 200 when the batch itself is well formed; per-item outcomes are
// embedded so callers can report partial success.
type BulkHandler struct {
	BulkService *service.BulkService
}

type bulkItemRequest struct {
	FullName    string `json:"full_name"`
	AccountKind string `json:"account_kind"`
	StudentID   string `json:"student_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	Year        int    `json:"year"`
	Role        string `json:"role,omitempty"`
}

type bulkRequest struct {
	Items []bulkItemRequest `json:"items"`
}

type bulkItemResult struct {
	Success    bool   `json:"success"`
	IdentityID string `json:"identity_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Error      string `json:"error,omitempty"`
}

type bulkResponse struct {
	Results []bulkItemResult `json:"results"`
}

func (h *BulkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	items := make([]service.BulkItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.BulkItem{
			FullName:    item.FullName,
			AccountKind: domain.AccountKind(item.AccountKind),
			StudentID:   item.StudentID,
			Email:       item.Email,
			Password:    item.Password,
			Year:        item.Year,
			Role:        domain.Role(item.Role),
		})
	}

	results, err := h.BulkService.ProvisionBatch(r.Context(), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]bulkItemResult, 0, len(results))
	for _, res := range results {
		out = append(out, bulkItemResult{
			Success:    res.Success,
			IdentityID: res.IdentityID,
			Email:      res.Email,
			Error:      res.Err,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, bulkResponse{Results: out})
}
