package rollback

import (
	"errors"
	"fmt"
)

// ContractError reports a caller bug detected by the registry.
//
// Contract errors are raised with panic, not returned. They signal that a
// caller queried or registered a marker outside the lifecycle path.
type ContractError struct {
	// Code identifies the violated contract.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// Marker is the offending marker, formatted with %v.
	Marker string
}

// ContractErrorCode categorizes contract violations.
type ContractErrorCode string

const (
	// ErrCodeNotRegistered indicates a lookup for a marker that was never registered.
	ErrCodeNotRegistered ContractErrorCode = "NOT_REGISTERED"

	// ErrCodeDuplicateMarker indicates a marker was registered twice.
	ErrCodeDuplicateMarker ContractErrorCode = "DUPLICATE_MARKER"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s (marker=%s)", e.Code, e.Message, e.Marker)
}

// IsNotRegistered returns true if the error is a not-registered contract error.
// Uses errors.As to handle wrapped errors.
func IsNotRegistered(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNotRegistered
	}
	return false
}

// IsDuplicateMarker returns true if the error is a duplicate-registration contract error.
func IsDuplicateMarker(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeDuplicateMarker
	}
	return false
}

func newNotRegisteredError(marker any) *ContractError {
	return &ContractError{
		Code:    ErrCodeNotRegistered,
		Message: "marker was not registered through a rollback command",
		Marker:  fmt.Sprintf("%v", marker),
	}
}

func newDuplicateMarkerError(marker any) *ContractError {
	return &ContractError{
		Code:    ErrCodeDuplicateMarker,
		Message: "marker is already registered",
		Marker:  fmt.Sprintf("%v", marker),
	}
}

// Errors returned by Session operations.
var (
	// ErrSessionClosed is returned when enqueueing to a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrAlreadyTagged is returned when adding a marker to an entity that has one.
	ErrAlreadyTagged = errors.New("entity already has a rollback marker")

	// ErrMarkerExists is returned when a raw marker is already registered.
	ErrMarkerExists = errors.New("marker already registered")
)
