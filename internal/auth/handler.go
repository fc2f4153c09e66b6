package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kuntv/service/internal/response"
)

// Handler holds HTTP handlers for authentication endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login godoc
//
//	@Summary		Exchange a shared secret for a JWT
//	@Description	Maps the user or admin secret to a role and returns a bearer token for it.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Shared secret"
//	@Success		200		{object}	response.Envelope{data=loginResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret == "" {
		response.BadRequest(w, "secret is required")
		return
	}

	token, role, err := h.svc.Login(req.Secret)
	if err != nil {
		if errors.Is(err, ErrInvalidSecret) {
			response.Forbidden(w, "invalid secret")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, loginResponse{Token: token, Role: role})
}
