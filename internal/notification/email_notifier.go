package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/reviewfighters/reviewfighters-api/internal/config"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// RecipientLookup resolves the email address of the user a notification
// belongs to.
type RecipientLookup func(ctx context.Context, userID string) (string, error)

// EmailNotifier mails broadcasts to the operator alert list and
// user-scoped notifications to their owner, when an address lookup is set.
type EmailNotifier struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	recipients []string
	lookup     RecipientLookup
	send       sendMailFunc
	logger     zerolog.Logger
}

func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*EmailNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for email notifier")
	}
	if from == "" {
		return nil, fmt.Errorf("from is required for email notifier")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	return &EmailNotifier{
		host:       host,
		port:       port,
		username:   strings.TrimSpace(cfg.Username),
		password:   cfg.Password,
		from:       from,
		recipients: sanitizeRecipients(cfg.AlertRecipients),
		send:       smtp.SendMail,
		logger:     logger.With().Str("notifier", "email").Logger(),
	}, nil
}

// WithRecipientLookup enables mail for user-scoped notifications.
func (n *EmailNotifier) WithRecipientLookup(lookup RecipientLookup) *EmailNotifier {
	n.lookup = lookup
	return n
}

func (n *EmailNotifier) Notify(ctx context.Context, notif models.SystemNotification) error {
	to := n.recipientsFor(ctx, notif)
	if len(to) == 0 {
		return nil
	}

	message := n.compose(notif, to)
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := n.send(addr, auth, n.from, to, message); err != nil {
		return err
	}

	n.logger.Info().
		Str("notification_id", notif.ID).
		Str("type", string(notif.Type)).
		Strs("recipients", to).
		Msg("email notification sent")
	return nil
}

// recipientsFor keeps user-scoped notifications away from the operator list.
func (n *EmailNotifier) recipientsFor(ctx context.Context, notif models.SystemNotification) []string {
	if notif.IsBroadcast() {
		return n.recipients
	}
	if n.lookup == nil {
		return nil
	}
	addr, err := n.lookup(ctx, notif.UserID)
	if err != nil {
		n.logger.Warn().Err(err).Str("user_id", notif.UserID).Msg("no email address for notification owner")
		return nil
	}
	if addr = strings.TrimSpace(addr); addr == "" {
		return nil
	}
	return []string{addr}
}

func (n *EmailNotifier) compose(notif models.SystemNotification, to []string) []byte {
	subject := "[ReviewFighters] " + strings.TrimSpace(notif.Title)
	if strings.TrimSpace(notif.Title) == "" {
		subject = "[ReviewFighters] Notification"
	}

	body := strings.Builder{}
	body.WriteString(strings.TrimSpace(notif.Message))
	body.WriteString("\n\n")
	body.WriteString(fmt.Sprintf("Type: %s\n", notif.Type))
	body.WriteString(fmt.Sprintf("Created: %s\n", notif.Timestamp.Format("2006-01-02 15:04:05 MST")))
	if notif.UserID != "" {
		body.WriteString(fmt.Sprintf("User: %s\n", notif.UserID))
	}
	if notif.ActionURL != "" {
		body.WriteString(fmt.Sprintf("Link: %s\n", notif.ActionURL))
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		n.from, strings.Join(to, ","), subject)

	return []byte(headers + body.String())
}

func (n *EmailNotifier) String() string {
	return "EmailNotifier"
}
