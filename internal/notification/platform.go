package notification

import (
	"context"
	"sync"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
)

// Platform is the host environment's native notification facility: a
// three-state permission plus a way to raise an alert outside the app.
type Platform interface {
	Supported() bool
	Permission() models.PermissionStatus
	// RequestPermission may block on the user or operator and should honor ctx.
	RequestPermission(ctx context.Context) (models.PermissionStatus, error)
	Show(ctx context.Context, notification models.SystemNotification) error
}

// permissionRestorer is implemented by platforms that accept a previously
// persisted permission decision.
type permissionRestorer interface {
	RestorePermission(status models.PermissionStatus)
}

// Prompter asks whoever owns the decision whether native notifications are allowed.
type Prompter interface {
	Prompt(ctx context.Context) (bool, error)
}

// StaticPrompter answers every prompt with a fixed decision.
type StaticPrompter bool

func (p StaticPrompter) Prompt(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(p), nil
}

// ChannelPlatform raises native notifications by fanning them out to
// the configured Notifier channels. It is supported when at least one
// channel is configured.
type ChannelPlatform struct {
	mu         sync.RWMutex
	permission models.PermissionStatus
	prompter   Prompter
	notifiers  []Notifier
	logger     zerolog.Logger
}

func NewChannelPlatform(prompter Prompter, logger zerolog.Logger, notifiers ...Notifier) *ChannelPlatform {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	if prompter == nil {
		prompter = StaticPrompter(false)
	}
	return &ChannelPlatform{
		permission: models.PermissionDefault,
		prompter:   prompter,
		notifiers:  active,
		logger:     logger.With().Str("component", "notification_platform").Logger(),
	}
}

func (p *ChannelPlatform) Supported() bool {
	return len(p.notifiers) > 0
}

func (p *ChannelPlatform) Permission() models.PermissionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.permission
}

func (p *ChannelPlatform) RestorePermission(status models.PermissionStatus) {
	if !models.IsValidPermissionStatus(status) {
		return
	}
	p.mu.Lock()
	p.permission = status
	p.mu.Unlock()
}

// RequestPermission prompts only while the permission is undecided; a
// granted or denied state is returned as-is.
func (p *ChannelPlatform) RequestPermission(ctx context.Context) (models.PermissionStatus, error) {
	if current := p.Permission(); current != models.PermissionDefault {
		return current, nil
	}

	granted, err := p.prompter.Prompt(ctx)
	if err != nil {
		// An abandoned prompt leaves the decision open.
		return models.PermissionDefault, err
	}

	status := models.PermissionDenied
	if granted {
		status = models.PermissionGranted
	}
	p.mu.Lock()
	if p.permission == models.PermissionDefault {
		p.permission = status
	}
	status = p.permission
	p.mu.Unlock()

	p.logger.Info().Str("permission", string(status)).Msg("native notification permission decided")
	return status, nil
}

func (p *ChannelPlatform) Show(ctx context.Context, notif models.SystemNotification) error {
	if p.Permission() != models.PermissionGranted {
		return nil
	}
	for _, notifier := range p.notifiers {
		if err := notifier.Notify(ctx, notif); err != nil {
			logNotifyError(p.logger, err, notifierChannelName(notifier), notif)
		}
	}
	return nil
}

// unsupportedPlatform is used when no native channel exists.
type unsupportedPlatform struct{}

func (unsupportedPlatform) Supported() bool { return false }

func (unsupportedPlatform) Permission() models.PermissionStatus { return models.PermissionDenied }

func (unsupportedPlatform) RequestPermission(context.Context) (models.PermissionStatus, error) {
	return models.PermissionDenied, nil
}

func (unsupportedPlatform) Show(context.Context, models.SystemNotification) error { return nil }
