package http

import (
	"encoding/json"
	"net/http"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/pkg/httpx"
)

// RegisterHandler accepts public registration request submissions.
type RegisterHandler struct {
	IntakeService *service.IntakeService
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	AccountKind string `json:"account_kind"`
	StudentID   string `json:"student_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	Year        int    `json:"year,omitempty"`
}

type registerResponse struct {
	RequestID string `json:"request_id"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	id, err := h.IntakeService.Submit(r.Context(), service.SubmitParams{
		FullName:    req.FullName,
		AccountKind: domain.AccountKind(req.AccountKind),
		StudentID:   req.StudentID,
		Email:       req.Email,
		Password:    req.Password,
		Year:        req.Year,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registerResponse{RequestID: id})
}
