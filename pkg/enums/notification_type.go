package enums

import "fmt"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeClaimSubmitted NotificationType = "claim_submitted"
	NotificationTypeClaimApproved  NotificationType = "claim_approved"
	NotificationTypeClaimRejected  NotificationType = "claim_rejected"
	NotificationTypeNewMessage     NotificationType = "new_message"
	NotificationTypeSystem         NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeClaimSubmitted,
	NotificationTypeClaimApproved,
	NotificationTypeClaimRejected,
	NotificationTypeNewMessage,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
