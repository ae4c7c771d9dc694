package api

import (
	"net/http"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

type UserHandler struct {
	service domain.UserService
	logger  logger.Logger
}

func NewUserHandler(service domain.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var intent domain.CreateUserIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.service.FindUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/user", h.CreateUser)
	mux.HandleFunc("GET /v1/user", h.ListUsers)
	mux.HandleFunc("GET /v1/user/{id}", h.GetUser)
}
