package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/reviewfighters/reviewfighters-api/internal/kv"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

const persistTimeout = 5 * time.Second

type storageKeys struct {
	notifications string
	preferences   string
}

func newStorageKeys(namespace string) storageKeys {
	if namespace == "" {
		namespace = "reviewfighters"
	}
	return storageKeys{
		notifications: kv.Key(namespace, "notifications"),
		preferences:   kv.Key(namespace, "preferences"),
	}
}

// Preferences are the cross-session notification settings.
type Preferences struct {
	SoundEnabled bool                    `json:"sound_enabled"`
	Permission   models.PermissionStatus `json:"permission,omitempty"`
}

func (s *Store) Preferences() Preferences {
	return Preferences{
		SoundEnabled: s.SoundEnabled(),
		Permission:   s.PermissionStatus(),
	}
}

func (s *Store) load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if raw, err := s.storage.Get(ctx, s.keys.notifications); err == nil {
		var list []models.SystemNotification
		if err := json.Unmarshal(raw, &list); err != nil {
			s.logger.Warn().Err(err).Msg("discarding unreadable persisted notifications")
		} else {
			s.notifications = list
		}
	} else if !errors.Is(err, kv.ErrNotFound) {
		s.logger.Warn().Err(err).Msg("failed to load persisted notifications")
	}

	raw, err := s.storage.Get(ctx, s.keys.preferences)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to load notification preferences")
		}
		return
	}
	var prefs Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable notification preferences")
		return
	}
	s.soundEnabled = prefs.SoundEnabled
	if r, ok := s.platform.(permissionRestorer); ok && prefs.Permission != "" {
		r.RestorePermission(prefs.Permission)
	}
}

func (s *Store) persistNotifications(list []models.SystemNotification) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode notifications")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Put(ctx, s.keys.notifications, raw); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist notifications")
	}
}

func (s *Store) persistPreferences() {
	prefs := Preferences{SoundEnabled: s.SoundEnabled()}
	// Only a real platform decision is worth remembering.
	if s.platform.Supported() {
		prefs.Permission = s.platform.Permission()
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode notification preferences")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Put(ctx, s.keys.preferences, raw); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist notification preferences")
	}
}
