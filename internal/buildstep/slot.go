// Package buildstep edits the pre-build and post-build command text of a
// project so installers can inject and later withdraw their own commands.
package buildstep

import (
	"fmt"
	"strings"
)

// Slot names one of the two build event properties a project exposes.
type Slot string

const (
	Pre  Slot = "pre"
	Post Slot = "post"
)

// IsValid returns true if the slot is recognized.
func (s Slot) IsValid() bool {
	switch s {
	case Pre, Post:
		return true
	default:
		return false
	}
}

// String returns the string representation of the slot.
func (s Slot) String() string {
	return string(s)
}

// Property returns the project property name backing the slot.
func (s Slot) Property() string {
	switch s {
	case Pre:
		return "PreBuildEvent"
	case Post:
		return "PostBuildEvent"
	default:
		return ""
	}
}

// AllSlots returns every supported slot.
func AllSlots() []Slot {
	return []Slot{Pre, Post}
}

// ParseSlot accepts a slot name ("pre", "post") or its property name
// ("PreBuildEvent"), case-insensitively.
func ParseSlot(s string) (Slot, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, slot := range AllSlots() {
		if v == string(slot) || v == strings.ToLower(slot.Property()) || v == string(slot)+"build" {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected pre or post)", ErrInvalidSlot, s)
}
