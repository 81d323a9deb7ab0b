package domain

import "errors"

var (
	// ErrCodeTaken is returned when a caller-supplied custom code already
	// maps to a row, active or not.
	ErrCodeTaken = errors.New("short code already in use")

	// ErrNotFound covers both unknown and deactivated codes; callers cannot
	// tell the two apart.
	ErrNotFound = errors.New("URL not found")

	// ErrRetriesExhausted means the random generator kept colliding within
	// its retry budget. With a 62^6 codespace this signals a nearly full
	// table, not bad luck.
	ErrRetriesExhausted = errors.New("exhausted retries generating short code")
)
