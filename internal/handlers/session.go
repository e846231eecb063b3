package handlers

import (
	"net/http"
	"time"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/handlers/render"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

type SessionHandler struct {
	session sessionService
	logger  logger.Logger
}

// Never carries the token itself, only its redacted tail
type StateResponse struct {
	Status      string     `json:"status"`
	AccessToken string     `json:"access_token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func newStateResponse(state models.SessionState) StateResponse {
	resp := StateResponse{Status: state.Status}
	if !state.IsAuthenticated() {
		return resp
	}

	resp.AccessToken = logger.Redact(state.AccessToken)
	if claim, err := token.Decode(state.AccessToken); err == nil {
		exp := claim.ExpiresTime().UTC()
		resp.ExpiresAt = &exp
	}
	return resp
}

func (h *SessionHandler) state(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, newStateResponse(h.session.State()))
}

func (h *SessionHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if !h.session.EnsureFresh(r.Context()) {
		render.JSONWithStatus(w, newStateResponse(h.session.State()), http.StatusUnauthorized)
		return
	}

	render.JSON(w, newStateResponse(h.session.State()))
}

func (h *SessionHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		AccessToken  string `json:"access_token" validate:"required,compacttoken"`
		RefreshToken string `json:"refresh_token" validate:"required,compacttoken"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		h.logger.Debug("Login request rejected", "error", err)
		return
	}

	err = h.session.Login(r.Context(), models.CredentialPair{AccessToken: data.AccessToken, RefreshToken: data.RefreshToken})
	if err != nil {
		h.logger.Error("Failed to store login credentials", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, newStateResponse(h.session.State()))
}

func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("Failed to logout", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.NoContent(w)
}
