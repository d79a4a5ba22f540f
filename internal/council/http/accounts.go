package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/httpx"
)

// AccountsHandler administers provisioned accounts.
type AccountsHandler struct {
	AccountService *service.AccountService
}

type accountView struct {
	IdentityID  string `json:"identity_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	AccountKind string `json:"account_kind"`
	StudentID   string `json:"student_id,omitempty"`
	Year        int    `json:"year,omitempty"`
	Role        string `json:"role"`
	Approved    bool   `json:"approved"`
	Disabled    bool   `json:"disabled"`
	CreatedAt   string `json:"created_at"`
}

func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.AccountService.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{
			IdentityID:  a.Profile.IdentityID,
			Email:       a.Email,
			FullName:    a.Profile.FullName,
			AccountKind: string(a.Profile.AccountKind),
			StudentID:   a.Profile.StudentID,
			Year:        a.Profile.Year,
			Role:        string(a.Profile.Role),
			Approved:    a.Profile.Approved,
			Disabled:    a.Profile.Disabled,
			CreatedAt:   a.Profile.CreatedAt.Format(time.RFC3339),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

type accountUpdateRequest struct {
	Role     *string `json:"role,omitempty"`
	Approved *bool   `json:"approved,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
}

func (h *AccountsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req accountUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	update := store.ProfileUpdate{
		Approved: req.Approved,
		Disabled: req.Disabled,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	if err := h.AccountService.UpdateAccount(r.Context(), r.PathValue("identityID"), update); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.AccountService.DeleteAccount(r.Context(), r.PathValue("identityID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Password string `json:"password,omitempty"`
}

type resetPasswordResponse struct {
	Password string `json:"password"`
}

func (h *AccountsHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeInvalidBody(w)
			return
		}
	}

	password, err := h.AccountService.ResetPassword(r.Context(), r.PathValue("identityID"), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resetPasswordResponse{Password: password})
}
