package enums

import "fmt"

// ClaimStatus describes the lifecycle of an ownership claim. Pending claims
// transition to approved or rejected exactly once; both are terminal.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

var validClaimStatuses = []ClaimStatus{
	ClaimStatusPending,
	ClaimStatusApproved,
	ClaimStatusRejected,
}

// String returns the literal string for the status.
func (c ClaimStatus) String() string {
	return string(c)
}

// IsValid reports whether the status is known.
func (c ClaimStatus) IsValid() bool {
	for _, candidate := range validClaimStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (c ClaimStatus) IsTerminal() bool {
	return c == ClaimStatusApproved || c == ClaimStatusRejected
}

// ParseClaimStatus converts raw input into a ClaimStatus.
func ParseClaimStatus(value string) (ClaimStatus, error) {
	for _, candidate := range validClaimStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim status %q", value)
}
