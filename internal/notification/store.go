// Package notification holds the user-scoped notification store, its
// subscriber fan-out and the native notification platform integration.
package notification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reviewfighters/reviewfighters-api/internal/kv"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

// NotifyInput describes a notification to create. An empty UserID
// broadcasts to every user.
type NotifyInput struct {
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	Type        models.NotificationType `json:"type"`
	UserID      string                  `json:"user_id,omitempty"`
	ActionURL   string                  `json:"action_url,omitempty"`
	ShowBrowser bool                    `json:"show_browser"`
}

// Listener receives the full notification list after every mutation.
// Each call gets its own copy. Listeners may read from the store but
// must not mutate it.
type Listener func(notifications []models.SystemNotification)

type Options struct {
	Storage   kv.Store
	Namespace string
	Platform  Platform
	// SoundEnabled is used until a preference has been persisted.
	SoundEnabled bool
	Logger       zerolog.Logger

	now   func() time.Time
	newID func() string
}

type subscription struct {
	id       uint64
	listener Listener
}

// Store is the process-wide notification state. Construct it once with
// NewStore, share it by injection and release it with Close.
type Store struct {
	// dispatchMu serializes mutation+fan-out so listeners observe lists
	// strictly in call order. mu guards the fields below it.
	dispatchMu sync.Mutex

	mu            sync.RWMutex
	notifications []models.SystemNotification
	subscribers   []subscription
	nextSubID     uint64
	soundEnabled  bool

	storage  kv.Store
	keys     storageKeys
	platform Platform
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewStore builds a store and restores any persisted state.
func NewStore(ctx context.Context, opts Options) *Store {
	if opts.Storage == nil {
		opts.Storage = kv.NewMemoryStore()
	}
	if opts.Platform == nil {
		opts.Platform = unsupportedPlatform{}
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.newID == nil {
		opts.newID = uuid.NewString
	}

	s := &Store{
		soundEnabled: opts.SoundEnabled,
		storage:      opts.Storage,
		keys:         newStorageKeys(opts.Namespace),
		platform:     opts.Platform,
		logger:       opts.Logger.With().Str("component", "notification_store").Logger(),
		now:          opts.now,
		newID:        opts.newID,
	}
	s.load(ctx)
	return s
}

// Notify records a new unread notification, fans the updated list out to
// subscribers and, when requested and permitted, raises a native alert.
func (s *Store) Notify(ctx context.Context, in NotifyInput) models.SystemNotification {
	notif := models.SystemNotification{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Message:     strings.TrimSpace(in.Message),
		Type:        in.Type,
		Timestamp:   s.now().UTC(),
		UserID:      strings.TrimSpace(in.UserID),
		ActionURL:   strings.TrimSpace(in.ActionURL),
		ShowBrowser: in.ShowBrowser,
	}
	if !models.IsValidNotificationType(notif.Type) {
		notif.Type = models.NotificationTypeInfo
	}

	s.mutate(func() bool {
		s.notifications = append([]models.SystemNotification{notif}, s.notifications...)
		return true
	})

	s.logger.Debug().
		Str("notification_id", notif.ID).
		Str("user_id", notif.UserID).
		Str("type", string(notif.Type)).
		Msg("notification created")

	if notif.ShowBrowser && s.platform.Supported() && s.platform.Permission() == models.PermissionGranted {
		if err := s.platform.Show(ctx, notif); err != nil {
			s.logger.Warn().Err(err).Str("notification_id", notif.ID).Msg("failed to raise native notification")
		}
	}
	return notif
}

// Subscribe registers listener and returns the function that removes it.
// The returned function is safe to call more than once.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscription{id: id, listener: listener})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Notifications returns the broadcasts plus the notifications owned by
// userID, newest first. An empty userID sees broadcasts only.
func (s *Store) Notifications(userID string) []models.SystemNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SystemNotification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.VisibleTo(userID) {
			out = append(out, n)
		}
	}
	return out
}

// Notification looks up a single notification by id.
func (s *Store) Notification(id string) (models.SystemNotification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return models.SystemNotification{}, false
}

func (s *Store) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Read && n.VisibleTo(userID) {
			count++
		}
	}
	return count
}

// MarkAsRead flags one notification as read. Unknown ids are ignored.
func (s *Store) MarkAsRead(id string) {
	s.mutate(func() bool {
		for i := range s.notifications {
			if s.notifications[i].ID == id {
				if s.notifications[i].Read {
					return false
				}
				s.notifications[i].Read = true
				return true
			}
		}
		return false
	})
}

// MarkAllAsRead flags every notification visible to userID as read.
func (s *Store) MarkAllAsRead(userID string) {
	s.mutate(func() bool {
		changed := false
		for i := range s.notifications {
			n := &s.notifications[i]
			if !n.Read && n.VisibleTo(userID) {
				n.Read = true
				changed = true
			}
		}
		return changed
	})
}

// MarkOwnedAsRead flags the notifications addressed to userID as read,
// leaving broadcasts untouched.
func (s *Store) MarkOwnedAsRead(userID string) {
	s.mutate(func() bool {
		changed := false
		for i := range s.notifications {
			n := &s.notifications[i]
			if !n.Read && ownedBy(*n, userID) {
				n.Read = true
				changed = true
			}
		}
		return changed
	})
}

// DeleteNotification removes one notification. Unknown ids are ignored.
func (s *Store) DeleteNotification(id string) {
	s.mutate(func() bool {
		for i, n := range s.notifications {
			if n.ID == id {
				s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
				return true
			}
		}
		return false
	})
}

// ClearAllNotifications removes every notification visible to userID,
// broadcasts included.
func (s *Store) ClearAllNotifications(userID string) {
	s.mutate(func() bool {
		kept := make([]models.SystemNotification, 0, len(s.notifications))
		for _, n := range s.notifications {
			if !n.VisibleTo(userID) {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(s.notifications) {
			return false
		}
		s.notifications = kept
		return true
	})
}

// ClearOwnedNotifications removes the notifications addressed to userID.
// Broadcasts stay in place.
func (s *Store) ClearOwnedNotifications(userID string) {
	s.mutate(func() bool {
		kept := make([]models.SystemNotification, 0, len(s.notifications))
		for _, n := range s.notifications {
			if !ownedBy(n, userID) {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(s.notifications) {
			return false
		}
		s.notifications = kept
		return true
	})
}

// RequestPermission asks the platform for native notification permission
// and reports whether it was granted. Denial, cancellation and platform
// errors all yield false.
func (s *Store) RequestPermission(ctx context.Context) bool {
	if !s.platform.Supported() {
		return false
	}
	status, err := s.platform.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("native notification permission request failed")
		return false
	}
	s.persistPreferences()
	return status == models.PermissionGranted
}

func (s *Store) PermissionStatus() models.PermissionStatus {
	if !s.platform.Supported() {
		return models.PermissionDenied
	}
	return s.platform.Permission()
}

func (s *Store) IsSupported() bool {
	return s.platform.Supported()
}

func (s *Store) SoundEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.soundEnabled
}

func (s *Store) SetSoundEnabled(enabled bool) {
	s.mu.Lock()
	s.soundEnabled = enabled
	s.mu.Unlock()
	s.persistPreferences()
}

// Close drops every subscriber and flushes state to storage.
func (s *Store) Close() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.subscribers = nil
	snapshot := cloneList(s.notifications)
	s.mu.Unlock()

	s.persistNotifications(snapshot)
	s.persistPreferences()
}

// mutate applies fn under the write lock. When fn reports a change the
// new list is persisted and delivered to every subscriber.
func (s *Store) mutate(fn func() bool) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snapshot := cloneList(s.notifications)
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.persistNotifications(snapshot)
	for _, sub := range subs {
		sub.listener(cloneList(snapshot))
	}
}

func ownedBy(n models.SystemNotification, userID string) bool {
	return userID != "" && n.UserID == userID
}

func cloneList(in []models.SystemNotification) []models.SystemNotification {
	out := make([]models.SystemNotification, len(in))
	copy(out, in)
	return out
}
