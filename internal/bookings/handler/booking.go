package handler

import (
	"encoding/json"
	"net/http"

	"renthub/internal/bookings/service"
	apperrors "renthub/pkg/errors"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"
	"renthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var request model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &request)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	bookings, err := h.service.GetByUser(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write response", "handler", "GetMine", "error", err)
	}
}

func (h *BookingHandler) GetByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	bookings, err := h.service.GetByProperty(r.Context(), actor, ps.ByName("propertyId"))
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write response", "handler", "GetByProperty", "error", err)
	}
}

func (h *BookingHandler) GetOwnerRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetOwnerRequests", err)
		return
	}

	bookings, err := h.service.GetOwnerRequests(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, "GetOwnerRequests", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write response", "handler", "GetOwnerRequests", "error", err)
	}
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	var decision model.BookingDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		h.writeError(w, "Decide", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Decide(r.Context(), actor, ps.ByName("id"), &decision)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write response", "handler", "Decide", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) Participants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Participants", err)
		return
	}

	participants, err := h.service.ResolveOwner(r.Context(), ps.ByName("id"), actor.UserID)
	if err != nil {
		h.writeError(w, "Participants", err)
		return
	}

	if err := httputil.WriteSuccess(w, participants); err != nil {
		h.log.Error("failed to write response", "handler", "Participants", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetMine)
	router.GET("/api/v1/bookings/owner/requests", h.GetOwnerRequests)
	router.GET("/api/v1/bookings/property/:propertyId", h.GetByProperty)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.GET("/api/v1/bookings/id/:id/participants", h.Participants)
	router.PATCH("/api/v1/bookings/id/:id/decision", h.Decide)
	router.PATCH("/api/v1/bookings/id/:id/cancel", h.Cancel)
}
