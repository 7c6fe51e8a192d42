package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

// Notifier delivers a notification over one out-of-app channel.
type Notifier interface {
	Notify(ctx context.Context, notification models.SystemNotification) error
}

func sanitizeRecipients(recipients []string) []string {
	var cleaned []string
	for _, recipient := range recipients {
		if r := strings.TrimSpace(recipient); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return cleaned
}

func logNotifyError(logger zerolog.Logger, err error, channel string, notif models.SystemNotification) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Str("notification_id", notif.ID).
		Str("type", string(notif.Type)).
		Str("channel", channel).
		Msg("failed to deliver notification")
}

func notifierChannelName(n Notifier) string {
	if v, ok := n.(fmt.Stringer); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
