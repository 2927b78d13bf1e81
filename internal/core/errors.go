package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound marks lookups of ids that do not exist. Never silently
	// defaulted: a missing employee referenced by a deduction is an error.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity marks store constraint violations that are not plain
	// field validation, e.g. a foreign key rejected by the database.
	ErrIntegrity = errors.New("integrity constraint violation")
)

// FieldErrors maps field names to human-readable validation messages.
// All fields are validated before any write happens.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first message when the
// same field fails more than one rule.
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// OrNil returns e as an error, or nil when no field failed.
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsFieldErrors unwraps err into FieldErrors when it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
