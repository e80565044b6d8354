package users

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID indicates that a chat user identifier is missing or malformed.
var ErrInvalidID = errors.New("users: invalid user id")

// ID is the opaque identifier of the person on the other end of a chat session.
// The caller supplies it and the store trusts it.
type ID int64

// NewID validates a raw numeric identifier.
func NewID(value int64) (ID, error) {
	if value == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalidID)
	}
	return ID(value), nil
}

// ParseID validates a textual identifier such as a URL path segment.
func ParseID(rawInput string) (ID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, trimmed)
	}
	return NewID(value)
}

// Int64 exposes the raw identifier value.
func (id ID) Int64() int64 {
	return int64(id)
}

// String renders the identifier in base 10.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
