package booking

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength  = 200
	MaxNotesLength = 2000
	MinTravelers   = 1
	MaxTravelers   = 99

	DefaultCurrency  = "JPY"
	DefaultTravelers = 1

	// InitialVersion is assigned on creation; every successful write adds one.
	InitialVersion int64 = 1
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func NextVersion(v int64) int64 {
	return v + 1
}

// Date truncates t to a calendar day in UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func IsValidCurrency(s string) bool {
	return currencyRegex.MatchString(s)
}

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func normalizeName(s string, emptyErr, tooLongErr error) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", emptyErr
	}
	if utf8.RuneCountInString(t) > MaxNameLength {
		return "", tooLongErr
	}
	return t, nil
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
