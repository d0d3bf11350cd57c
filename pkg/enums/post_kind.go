package enums

import "fmt"

// PostKind distinguishes reports of lost items from reports of found items.
type PostKind string

const (
	PostKindLost  PostKind = "lost"
	PostKindFound PostKind = "found"
)

var validPostKinds = []PostKind{PostKindLost, PostKindFound}

// String returns the literal string for the kind.
func (k PostKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is known.
func (k PostKind) IsValid() bool {
	for _, candidate := range validPostKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePostKind converts raw input into a PostKind.
func ParsePostKind(value string) (PostKind, error) {
	for _, candidate := range validPostKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid post kind %q", value)
}
