package models

import "time"

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func IsValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

// PermissionStatus mirrors the three-state native notification permission.
type PermissionStatus string

const (
	PermissionDefault PermissionStatus = "default"
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

func IsValidPermissionStatus(p PermissionStatus) bool {
	return p == PermissionDefault || p == PermissionGranted || p == PermissionDenied
}

// SystemNotification is a single user-facing alert. An empty UserID marks a broadcast.
type SystemNotification struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
	UserID      string           `json:"user_id,omitempty"`
	ActionURL   string           `json:"action_url,omitempty"`
	ShowBrowser bool             `json:"show_browser"`
}

// IsBroadcast reports whether the notification has no owning user.
func (n SystemNotification) IsBroadcast() bool {
	return n.UserID == ""
}

// VisibleTo reports whether userID may see the notification. An empty
// userID only sees broadcasts.
func (n SystemNotification) VisibleTo(userID string) bool {
	return n.UserID == "" || n.UserID == userID
}
