package api

import (
	"net/http"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

type BlockHandler struct {
	service domain.BookingService
	logger  logger.Logger
}

func NewBlockHandler(service domain.BookingService, logger logger.Logger) *BlockHandler {
	return &BlockHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var intent domain.CreateBlockIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snapshot, err := h.service.CreateBlock(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *BlockHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var intent domain.UpdateBlockIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	intent.BookingID = id

	snapshot, err := h.service.UpdateBlock(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *BlockHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	userID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteBlock(r.Context(), domain.DeleteBlockIntent{BookingID: id, UserID: userID}); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BlockHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/booking/block", h.CreateBlock)
	mux.HandleFunc("PUT /v1/booking/block/{id}", h.UpdateBlock)
	mux.HandleFunc("DELETE /v1/booking/block/{id}", h.DeleteBlock)
}
