package api

import (
	"net/http"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

type BookingHandler struct {
	service domain.BookingService
	logger  logger.Logger
}

func NewBookingHandler(service domain.BookingService, logger logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snapshot, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var intent domain.CreateBookingIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snapshot, err := h.service.CreateBooking(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var intent domain.UpdateBookingIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	intent.BookingID = id

	snapshot, err := h.service.UpdateBooking(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *BookingHandler) RebookCanceledBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var intent domain.RebookIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	intent.BookingID = id

	snapshot, err := h.service.RebookCanceledBooking(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := queryID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	userID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snapshot, err := h.service.CancelBooking(r.Context(), domain.CancelIntent{BookingID: bookingID, UserID: userID})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	userID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteBooking(r.Context(), domain.DeleteIntent{BookingID: bookingID, UserID: userID}); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/booking/{id}", h.GetBooking)
	mux.HandleFunc("POST /v1/booking", h.CreateBooking)
	mux.HandleFunc("PUT /v1/booking/{id}", h.UpdateBooking)
	mux.HandleFunc("PUT /v1/booking/rebook/{id}", h.RebookCanceledBooking)
	mux.HandleFunc("PUT /v1/booking/cancel", h.CancelBooking)
	mux.HandleFunc("DELETE /v1/booking/{id}", h.DeleteBooking)
}
