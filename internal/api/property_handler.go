package api

import (
	"net/http"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

type PropertyHandler struct {
	service  domain.PropertyService
	bookings domain.BookingService
	logger   logger.Logger
}

type AvailabilityResponse struct {
	PropertyID int64       `json:"property_id"`
	StartDate  domain.Date `json:"start_date"`
	EndDate    domain.Date `json:"end_date"`
	Available  bool        `json:"available"`
}

func NewPropertyHandler(service domain.PropertyService, bookings domain.BookingService, logger logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		service:  service,
		bookings: bookings,
		logger:   logger,
	}
}

func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var intent domain.CreatePropertyIntent
	if err := decodeBody(r, &intent); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	summary, err := h.service.CreateProperty(r.Context(), intent)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, summary)
}

func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListProperties(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	summary, err := h.service.GetProperty(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *PropertyHandler) ListPropertyBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snapshots, err := h.bookings.ListPropertyBookings(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

// CheckAvailability answers GET /v1/property/{id}/availability?start_date=&end_date=.
func (h *PropertyHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	start, err := domain.ParseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, r, h.logger, badRequest("Parameter start_date: %v", err))
		return
	}
	end, err := domain.ParseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, r, h.logger, badRequest("Parameter end_date: %v", err))
		return
	}

	available, err := h.bookings.CheckAvailability(r.Context(), id, domain.NewDateRange(start, end))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		PropertyID: id,
		StartDate:  start,
		EndDate:    end,
		Available:  available,
	})
}

func (h *PropertyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/property", h.CreateProperty)
	mux.HandleFunc("GET /v1/property", h.ListProperties)
	mux.HandleFunc("GET /v1/property/{id}", h.GetProperty)
	mux.HandleFunc("GET /v1/property/{id}/bookings", h.ListPropertyBookings)
	mux.HandleFunc("GET /v1/property/{id}/availability", h.CheckAvailability)
}
