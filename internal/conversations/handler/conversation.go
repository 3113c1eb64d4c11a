package handler

import (
	"encoding/json"
	"net/http"

	"renthub/internal/conversations/service"
	apperrors "renthub/pkg/errors"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type ConversationHandler struct {
	service service.ConversationService
	log     *logger.Logger
}

func NewConversationHandler(service service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log,
	}
}

type messagePayload struct {
	Content string `json:"content"`
}

func (h *ConversationHandler) CreateDirect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "CreateDirect", err)
		return
	}

	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, "CreateDirect", apperrors.InvalidInput("Invalid request body"))
		return
	}

	conversation, err := h.service.CreateDirect(r.Context(), actor.UserID, payload.UserID)
	if err != nil {
		h.writeError(w, "CreateDirect", err)
		return
	}

	if err := httputil.WriteCreated(w, conversation); err != nil {
		h.log.Error("failed to write response", "handler", "CreateDirect", "error", err)
	}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	conversations, err := h.service.ListByUser(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversations); err != nil {
		h.log.Error("failed to write response", "handler", "List", "error", err)
	}
}

func (h *ConversationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	conversation, err := h.service.GetByID(r.Context(), ps.ByName("id"), actor.UserID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversation); err != nil {
		h.log.Error("failed to write response", "handler", "GetByID", "error", err)
	}
}

func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "SendMessage", err)
		return
	}

	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, "SendMessage", apperrors.InvalidInput("Invalid request body"))
		return
	}

	conversation, err := h.service.SendMessage(r.Context(), ps.ByName("id"), actor.UserID, payload.Content)
	if err != nil {
		h.writeError(w, "SendMessage", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversation); err != nil {
		h.log.Error("failed to write response", "handler", "SendMessage", "error", err)
	}
}

func (h *ConversationHandler) GetBookingConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetBookingConversation", err)
		return
	}

	conversation, err := h.service.GetBookingConversation(r.Context(), ps.ByName("bookingId"), actor.UserID)
	if err != nil {
		h.writeError(w, "GetBookingConversation", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversation); err != nil {
		h.log.Error("failed to write response", "handler", "GetBookingConversation", "error", err)
	}
}

func (h *ConversationHandler) SendBookingMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "SendBookingMessage", err)
		return
	}

	var payload messagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, "SendBookingMessage", apperrors.InvalidInput("Invalid request body"))
		return
	}

	conversation, err := h.service.SendBookingMessage(r.Context(), ps.ByName("bookingId"), actor.UserID, payload.Content)
	if err != nil {
		h.writeError(w, "SendBookingMessage", err)
		return
	}

	if err := httputil.WriteSuccess(w, conversation); err != nil {
		h.log.Error("failed to write response", "handler", "SendBookingMessage", "error", err)
	}
}

func (h *ConversationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *ConversationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/conversations", h.CreateDirect)
	router.GET("/api/v1/conversations", h.List)
	router.GET("/api/v1/conversations/id/:id", h.GetByID)
	router.POST("/api/v1/conversations/id/:id/messages", h.SendMessage)
	router.GET("/api/v1/conversations/booking/:bookingId", h.GetBookingConversation)
	router.POST("/api/v1/conversations/booking/:bookingId/messages", h.SendBookingMessage)
}
