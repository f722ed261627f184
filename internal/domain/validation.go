package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidIDFormat = errors.New("invalid ID format")
)

// Validation constants
const (
	MaxIDLength     = 64
	MaxPageSize     = 1000
	DefaultPageSize = 50
)

var idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID validates a sale item or beneficiary identifier.
func ValidateID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidIDFormat)
	}

	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidIDFormat, MaxIDLength)
	}

	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidIDFormat, id)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
