package service

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds surfaced by the chat core. Callers match with errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not allowed")
	ErrValidation     = errors.New("invalid request")
	ErrPersistence    = errors.New("failed to persist")
	ErrNotFound       = errors.New("not found")
)

var kinds = []error{ErrAuthentication, ErrAuthorization, ErrValidation, ErrPersistence, ErrNotFound}

func fail(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// ClientMessage drops the kind prefix so the reason reads naturally on the
// wire ("User not found", "content is required").
func ClientMessage(err error) string {
	msg := err.Error()
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return strings.TrimPrefix(msg, kind.Error()+": ")
		}
	}
	return msg
}
