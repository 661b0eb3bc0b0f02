package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionOutOfRange is returned when a dimension exceeds the largest
	// pricing category. Pricing is never capped.
	ErrDimensionOutOfRange = errors.New("dimension out of range")
	// ErrMissingRate is returned when a required configuration row is absent.
	ErrMissingRate = errors.New("missing pricing configuration")
	// ErrLookupTablesRequired is returned by table-backed calculators called
	// without pre-built lookup tables.
	ErrLookupTablesRequired = errors.New("lookup tables required")
	// ErrNoPowerSupply is returned when no power supply matches the request.
	ErrNoPowerSupply = errors.New("no matching power supply")
	// ErrInvalidInput covers values the validation layer let through but the
	// engine cannot price.
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError pairs a failure with the short text shown inline on the row.
type DomainError struct {
	Display string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return e.Display
	}
	return fmt.Sprintf("%s: %v", e.Display, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

func domainErr(display string, err error) error {
	return &DomainError{Display: display, Err: err}
}

func missingRate(what, name string) error {
	if name == "" {
		return domainErr(fmt.Sprintf("%s not configured", what), ErrMissingRate)
	}
	return domainErr(fmt.Sprintf("%s %q not found", what, name), ErrMissingRate)
}

func asDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
