package buildstep

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSlot is returned for a slot other than Pre or Post.
	ErrInvalidSlot = errors.New("invalid build step slot")

	// ErrSlotUnavailable indicates the target does not expose the slot's property.
	ErrSlotUnavailable = errors.New("build step slot unavailable")
)

// Target is anything with named text properties, typically a project.
type Target interface {
	Property(name string) (string, error)
	SetProperty(name, value string) error
}

// SlotError records a failed read or write of a slot property.
type SlotError struct {
	Slot Slot
	Op   string
	Err  error
}

// Error returns a formatted message naming the slot and operation.
func (e *SlotError) Error() string {
	return fmt.Sprintf("%s %s build step: %v", e.Op, e.Slot, e.Err)
}

// Unwrap exposes ErrSlotUnavailable along with the cause.
func (e *SlotError) Unwrap() []error {
	return []error{ErrSlotUnavailable, e.Err}
}

// Steps returns the current command text of the slot.
func Steps(target Target, slot Slot) (string, error) {
	if !slot.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	text, err := target.Property(slot.Property())
	if err != nil {
		return "", &SlotError{Slot: slot, Op: "read", Err: err}
	}
	return text, nil
}

// AddStep appends command to the slot unless the slot text already contains
// it. Containment is a plain substring test, so a command that is a substring
// of one already present is treated as present.
//
// On any error the target is left unchanged.
func AddStep(target Target, slot Slot, command string) error {
	current, err := Steps(target, slot)
	if err != nil {
		return err
	}
	if strings.Contains(current, command) {
		return nil
	}
	if err := target.SetProperty(slot.Property(), current+command); err != nil {
		return &SlotError{Slot: slot, Op: "write", Err: err}
	}
	return nil
}

// RemoveStep deletes every occurrence of command from the slot text.
//
// On any error the target is left unchanged.
func RemoveStep(target Target, slot Slot, command string) error {
	current, err := Steps(target, slot)
	if err != nil {
		return err
	}
	if command == "" || !strings.Contains(current, command) {
		return nil
	}
	if err := target.SetProperty(slot.Property(), strings.ReplaceAll(current, command, "")); err != nil {
		return &SlotError{Slot: slot, Op: "write", Err: err}
	}
	return nil
}
