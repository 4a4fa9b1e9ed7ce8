package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pairbond/pairbond-server/internal/middleware"
	"github.com/pairbond/pairbond-server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.SendPulse)
	r.Get("/", h.ListRecent)
	r.Get("/unread", h.ClaimUnread)
	r.Get("/unread/count", h.UnreadCount)

	return r
}

type sendPulseRequest struct {
	ToUser  string `json:"toUser,omitempty"`
	Message string `json:"message,omitempty"`
}

// POST /v1/pulses
func (h *NotificationHandler) SendPulse(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req sendPulseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	notif, err := h.notificationService.SendPulse(r.Context(), service.SendPulseParams{
		PairCode: session.PairCode,
		FromUser: session.UserName,
		ToUser:   req.ToUser,
		Message:  req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"notification": notif,
		"message":      "Pulse sent to " + notif.ToUser + "!",
	})
}

// GET /v1/pulses/unread
func (h *NotificationHandler) ClaimUnread(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	notifs, err := h.notificationService.ClaimUnread(r.Context(), session.PairCode, session.UserName)
	if err != nil {
		log.Error().Err(err).Msg("failed to claim unread pulses")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

// GET /v1/pulses/unread/count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	count, err := h.notificationService.UnreadCount(r.Context(), session.PairCode, session.UserName)
	if err != nil {
		log.Error().Err(err).Msg("failed to count unread pulses")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// GET /v1/pulses?limit=20
func (h *NotificationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifs, err := h.notificationService.ListRecent(r.Context(), session.PairCode, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list recent pulses")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}
