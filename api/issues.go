package api

import (
	"fmt"
)

// MissingGrainError is returned when a URL template references a grain that has no
// value for the requesting minion.
type MissingGrainError struct {
	// Grain is the name of the grain that had no value.
	Grain string
}

func (e *MissingGrainError) Error() string {
	return fmt.Sprintf(`no value for grain '%s'`, e.Grain)
}

// MissingGrain creates an error that denotes an absent or empty grain value.
func MissingGrain(name string) error {
	return &MissingGrainError{Grain: name}
}

// MissingRequiredOption creates an error with a descriptive text and returns it.
func MissingRequiredOption(option string) error {
	return fmt.Errorf(`missing required source option '%s'`, option)
}

// NotHash creates an error denoting that a decoded document was not a hash.
func NotHash(format, source string) error {
	return fmt.Errorf(`'%s' does not contain a %s hash`, source, format)
}

// UnsupportedFormat creates an error denoting an unknown decode format.
func UnsupportedFormat(format string) error {
	return fmt.Errorf(`unsupported decode format '%s'`, format)
}
