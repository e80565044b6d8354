package store

import (
	"errors"
	"strings"
)

// SQLite primary result codes for lock contention.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

type codedError interface {
	Code() int
}

// IsBusy reports whether err was caused by lock contention that outlasted the
// busy timeout. Such failures are retryable; the store never retries them itself.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coded codedError
	if errors.As(err, &coded) {
		switch coded.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "database is locked") || strings.Contains(message, "sqlite_busy")
}
