package notification

import (
	"context"
	"fmt"

	"github.com/reviewfighters/reviewfighters-api/internal/config"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

// PushNotifier is a log-only channel. It records which notifications would
// be published to the configured push topic and delivers nothing to devices.
// Enabling it does not reach users; wire a push provider before relying on it.
type PushNotifier struct {
	enabled   bool
	projectID string
	topic     string
	logger    zerolog.Logger
}

func NewPushNotifier(cfg config.PushConfig, logger zerolog.Logger) *PushNotifier {
	enabled := cfg.Enabled && cfg.ProjectID != "" && cfg.Topic != ""
	return &PushNotifier{
		enabled:   enabled,
		projectID: cfg.ProjectID,
		topic:     cfg.Topic,
		logger:    logger.With().Str("notifier", "push").Logger(),
	}
}

func (n *PushNotifier) Enabled() bool {
	return n.enabled
}

func (n *PushNotifier) Notify(_ context.Context, notif models.SystemNotification) error {
	if !n.enabled {
		return nil
	}
	n.logger.Info().
		Str("notification_id", notif.ID).
		Str("type", string(notif.Type)).
		Str("user_id", notif.UserID).
		Str("topic", n.topic).
		Bool("delivered", false).
		Msg("push notification logged")
	return nil
}

func (n *PushNotifier) String() string {
	if !n.enabled {
		return "PushNotifier(disabled)"
	}
	return fmt.Sprintf("PushNotifier(project=%s, topic=%s)", n.projectID, n.topic)
}
