package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
)

// Events publishes the domain notifications raised by resource changes.
type Events struct {
	store *Store
}

func NewEvents(store *Store) *Events {
	return &Events{store: store}
}

func (e *Events) UserRegistered(ctx context.Context, user models.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required for welcome notifications")
	}
	e.store.Notify(ctx, NotifyInput{
		Title:     "Welcome to ReviewFighters",
		Message:   fmt.Sprintf("Hi %s, your %s account is ready.", fallbackName(user.Name, user.Email), strings.ToLower(string(user.Role))),
		Type:      models.NotificationTypeSuccess,
		UserID:    user.ID,
		ActionURL: "/profile",
	})
	return nil
}

// ReviewSubmitted confirms the submission to its author and, when the
// detection score is high, warns the author that it is held for moderation.
func (e *Events) ReviewSubmitted(ctx context.Context, review models.Review) error {
	if strings.TrimSpace(review.UserID) == "" {
		return fmt.Errorf("user id is required for review notifications")
	}
	product := fallbackName(review.ProductName, review.ID)
	e.store.Notify(ctx, NotifyInput{
		Title:     "Review submitted",
		Message:   fmt.Sprintf("Your review of %s was received.", product),
		Type:      models.NotificationTypeInfo,
		UserID:    review.UserID,
		ActionURL: "/reviews",
	})
	if review.SuspectedFake() || review.Status == models.ReviewStatusFlagged {
		e.store.Notify(ctx, NotifyInput{
			Title:       fmt.Sprintf("Review flagged: %s", product),
			Message:     fmt.Sprintf("Your review of %s scored %.2f and is held for moderation.", product, review.FakeScore),
			Type:        models.NotificationTypeWarning,
			UserID:      review.UserID,
			ActionURL:   "/reviews",
			ShowBrowser: true,
		})
	}
	return nil
}

func (e *Events) AffiliateRegistered(ctx context.Context, affiliate models.Affiliate) error {
	if strings.TrimSpace(affiliate.UserID) == "" {
		return fmt.Errorf("user id is required for affiliate notifications")
	}
	e.store.Notify(ctx, NotifyInput{
		Title:     "Affiliate account created",
		Message:   fmt.Sprintf("Your referral code is %s.", fallbackName(affiliate.Code, "pending")),
		Type:      models.NotificationTypeSuccess,
		UserID:    affiliate.UserID,
		ActionURL: "/affiliate/dashboard",
	})
	return nil
}

func (e *Events) StaffOnboarded(ctx context.Context, staff models.StaffMember) error {
	if strings.TrimSpace(staff.UserID) == "" {
		return fmt.Errorf("user id is required for staff notifications")
	}
	e.store.Notify(ctx, NotifyInput{
		Title:       "Welcome to the team",
		Message:     fmt.Sprintf("You have been onboarded as %s.", fallbackName(staff.Position, "staff")),
		Type:        models.NotificationTypeSuccess,
		UserID:      staff.UserID,
		ActionURL:   "/staff/dashboard",
		ShowBrowser: true,
	})
	return nil
}

func fallbackName(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
