package handler

import (
	"net/http"
	"strconv"

	"renthub/internal/notifications/service"
	httputil "renthub/pkg/http"
	"renthub/pkg/logger"
	"renthub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

func (h *NotificationHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, parseErr := strconv.Atoi(s); parseErr == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	notifications, err := h.service.GetByUser(r.Context(), id.UserID, limit)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, notifications); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "MarkRead", err)
		return
	}

	notification, err := h.service.MarkAsRead(r.Context(), ps.ByName("id"), id.UserID)
	if err != nil {
		h.writeError(w, "MarkRead", err)
		return
	}

	if err := httputil.WriteSuccess(w, notification); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkRead", "error", err)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "MarkAllRead", err)
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), id.UserID); err != nil {
		h.writeError(w, "MarkAllRead", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "UnreadCount", err)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		h.writeError(w, "UnreadCount", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int64{"unread": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "UnreadCount", "error", err)
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.GetMine)
	router.GET("/api/v1/notifications/unread-count", h.UnreadCount)
	router.PATCH("/api/v1/notifications/id/:id/read", h.MarkRead)
	router.PATCH("/api/v1/notifications/read-all", h.MarkAllRead)
}
