package buildstep

import (
	"errors"
	"fmt"
	"maps"
)

// ErrNoProperty is returned by MapTarget for names it does not hold.
var ErrNoProperty = errors.New("property not found")

// MapTarget is an in-memory Target. Only names present in the map exist.
type MapTarget struct {
	props map[string]string
}

// NewMapTarget returns a target exposing the given properties.
func NewMapTarget(props map[string]string) *MapTarget {
	m := make(map[string]string, len(props))
	maps.Copy(m, props)
	return &MapTarget{props: m}
}

// NewProjectTarget returns a target exposing both build event properties, empty.
func NewProjectTarget() *MapTarget {
	return NewMapTarget(map[string]string{
		Pre.Property():  "",
		Post.Property(): "",
	})
}

// Property returns the named property value.
func (t *MapTarget) Property(name string) (string, error) {
	v, ok := t.props[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoProperty, name)
	}
	return v, nil
}

// SetProperty replaces an existing property value.
func (t *MapTarget) SetProperty(name, value string) error {
	if _, ok := t.props[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoProperty, name)
	}
	t.props[name] = value
	return nil
}
