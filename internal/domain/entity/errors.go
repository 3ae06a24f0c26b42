package entity

import (
	"errors"
	"fmt"

	"silentskies-service/pkg/table"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrFetch             = errors.New("fetch failed")
	ErrAirportNotFound   = errors.New("airport not found")
)

// MissingColumnError is raised when a required column is absent.
type MissingColumnError = table.MissingColumnError

// UnsupportedFormatError rejects an uploaded file by extension.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// FetchError wraps a failed call to an external provider.
type FetchError struct {
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
