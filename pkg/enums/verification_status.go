package enums

import "fmt"

// VerificationStatus tracks whether a post's ownership has been verified
// through an approved claim.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusPending,
	VerificationStatusVerified,
}

// String returns the literal string for the status.
func (v VerificationStatus) String() string {
	return string(v)
}

// IsValid reports whether the status is known.
func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
