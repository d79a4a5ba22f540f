package http

import (
	"net/http"
	"time"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

// RequestsHandler serves the admin review queue: listing pending requests,
// approving, and rejecting them.
type RequestsHandler struct {
	IntakeService   *service.IntakeService
	ApprovalService *service.ApprovalService
}

type requestView struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	AccountKind string `json:"account_kind"`
	StudentID   string `json:"student_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Year        int    `json:"year,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type approveResponse struct {
	IdentityID string `json:"identity_id"`
}

// HandleList returns pending requests, oldest first. Passwords never leave
// the store.
func (h *RequestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.IntakeService.ListRequests(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]requestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, viewOfRequest(req))
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *RequestsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	identityID, err := h.ApprovalService.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, approveResponse{IdentityID: identityID})
}

func (h *RequestsHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	if err := h.ApprovalService.Reject(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func viewOfRequest(req domain.RegistrationRequest) requestView {
	return requestView{
		ID:          req.ID,
		FullName:    req.FullName,
		AccountKind: string(req.AccountKind),
		StudentID:   req.StudentID,
		Email:       req.Email,
		Year:        req.Year,
		CreatedAt:   req.CreatedAt.Format(time.RFC3339),
	}
}
