package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/reviewfighters/reviewfighters-api/internal/authz"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/reviewfighters/reviewfighters-api/internal/notification"
	"github.com/rs/zerolog"
)

const streamKeepAlive = 30 * time.Second

type NotificationHandler struct {
	store  *notification.Store
	logger zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func NewNotificationHandler(store *notification.Store, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		store:  store,
		logger: logger.With().Str("handler", "notification").Logger(),
		done:   make(chan struct{}),
	}
}

// CloseStreams ends every open event stream. Shutdown leaves in-flight
// requests running, so main registers it with RegisterOnShutdown.
func (h *NotificationHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.done) })
}

type notificationFeed struct {
	Notifications []models.SystemNotification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
	SoundEnabled  bool                        `json:"sound_enabled"`
}

type preferencesResponse struct {
	SoundEnabled bool                    `json:"sound_enabled"`
	Permission   models.PermissionStatus `json:"permission"`
	Supported    bool                    `json:"supported"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := authz.UserIDFromRequest(r)
	writeJSON(w, http.StatusOK, h.feed(h.store.Notifications(userID)))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := authz.UserIDFromRequest(r)
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": h.store.UnreadCount(userID)})
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in notification.NotifyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "Notification title is required")
		return
	}
	if in.Type != "" && !models.IsValidNotificationType(in.Type) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown notification type %q", in.Type))
		return
	}

	notif := h.store.Notify(r.Context(), in)
	writeJSON(w, http.StatusCreated, notif)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleID(w, r)
	if !ok {
		return
	}
	h.store.MarkAsRead(id)

	notif, found := h.store.Notification(id)
	if !found {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

// MarkAllRead flags the caller's own notifications. Broadcasts are shared
// by every user and only change through the id routes.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := authz.UserIDFromRequest(r)
	h.store.MarkOwnedAsRead(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleID(w, r)
	if !ok {
		return
	}
	h.store.DeleteNotification(id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearAll removes the caller's own notifications and keeps broadcasts.
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := authz.UserIDFromRequest(r)
	h.store.ClearOwnedNotifications(userID)
	w.WriteHeader(http.StatusNoContent)
}

// Stream pushes the caller's notification feed as server-sent events:
// once on connect and again after every store change.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	userID, _ := authz.UserIDFromRequest(r)

	// Holds only the latest list so the store never waits on a slow client.
	updates := make(chan []models.SystemNotification, 1)
	unsubscribe := h.store.Subscribe(func(list []models.SystemNotification) {
		select {
		case <-updates:
		default:
		}
		updates <- list
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.writeEvent(w, h.feed(h.store.Notifications(userID))); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case list := <-updates:
			if err := h.writeEvent(w, h.feed(visibleTo(list, userID))); err != nil {
				h.logger.Debug().Err(err).Msg("notification stream closed")
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *NotificationHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.preferences())
}

func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SoundEnabled *bool `json:"sound_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.SoundEnabled == nil {
		writeError(w, http.StatusBadRequest, "sound_enabled is required")
		return
	}
	h.store.SetSoundEnabled(*payload.SoundEnabled)
	writeJSON(w, http.StatusOK, h.preferences())
}

func (h *NotificationHandler) Permission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"permission": h.store.PermissionStatus(),
		"supported":  h.store.IsSupported(),
	})
}

func (h *NotificationHandler) RequestPermission(w http.ResponseWriter, r *http.Request) {
	granted := h.store.RequestPermission(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"granted":    granted,
		"permission": h.store.PermissionStatus(),
	})
}

func (h *NotificationHandler) preferences() preferencesResponse {
	prefs := h.store.Preferences()
	return preferencesResponse{
		SoundEnabled: prefs.SoundEnabled,
		Permission:   prefs.Permission,
		Supported:    h.store.IsSupported(),
	}
}

func (h *NotificationHandler) feed(list []models.SystemNotification) notificationFeed {
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return notificationFeed{
		Notifications: list,
		UnreadCount:   unread,
		SoundEnabled:  h.store.SoundEnabled(),
	}
}

func (h *NotificationHandler) writeEvent(w http.ResponseWriter, feed notificationFeed) error {
	payload, err := json.Marshal(feed)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", payload)
	return err
}

// visibleID resolves the {id} path variable to a notification the caller
// may change: one addressed to them, or a broadcast when they moderate.
func (h *NotificationHandler) visibleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeError(w, http.StatusBadRequest, "Notification ID is required")
		return "", false
	}
	userID, _ := authz.UserIDFromRequest(r)
	notif, ok := h.store.Notification(id)
	if !ok || !notif.VisibleTo(userID) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return "", false
	}
	if notif.IsBroadcast() {
		role, _ := authz.RoleFromRequest(r)
		if !models.IsModerator(role) {
			writeError(w, http.StatusForbidden, "Broadcast notifications can only be changed by staff")
			return "", false
		}
	}
	return id, true
}

func visibleTo(list []models.SystemNotification, userID string) []models.SystemNotification {
	out := make([]models.SystemNotification, 0, len(list))
	for _, n := range list {
		if n.VisibleTo(userID) {
			out = append(out, n)
		}
	}
	return out
}
