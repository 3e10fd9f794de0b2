package models

import (
	"errors"
	"fmt"
)

// ErrorType represents the classified failure categories of an upload
type ErrorType int

const (
	ErrUnexpected ErrorType = iota
	ErrUnsupportedType
	ErrModelInstantiation
	ErrStoreFile
	ErrPackageMetadata
)

var (
	// ErrMissingField is wrapped when a required key or metadata field is absent or empty.
	ErrMissingField = errors.New("required field missing")

	// ErrFieldType is wrapped when a field has the wrong shape.
	ErrFieldType = errors.New("field has wrong type")
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrModelInstantiation:
		return "ModelInstantiation"
	case ErrStoreFile:
		return "StoreFile"
	case ErrPackageMetadata:
		return "PackageMetadata"
	default:
		return "Unexpected"
	}
}

// Message returns the short, stable text that is placed in a failure report.
func (e ErrorType) Message(typeID string) string {
	switch e {
	case ErrUnsupportedType:
		return fmt.Sprintf("%s is not a supported type for upload", typeID)
	case ErrModelInstantiation:
		return "metadata for the uploaded file was invalid"
	case ErrStoreFile:
		return "file could not be deployed into Pulp's storage"
	case ErrPackageMetadata:
		return "metadata for the given package could not be extracted"
	default:
		return "unexpected error occurred importing uploaded file"
	}
}

// UploadError represents a classified failure raised by an upload handler
type UploadError struct {
	Type   ErrorType
	TypeID string
	Err    error
}

// NewUploadError wraps err with a failure category.
func NewUploadError(kind ErrorType, typeID string, err error) *UploadError {
	return &UploadError{Type: kind, TypeID: typeID, Err: err}
}

// Error implements the error interface
func (e *UploadError) Error() string {
	if e.TypeID != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.TypeID, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *UploadError) Unwrap() error {
	return e.Err
}

// ErrorTypeOf returns the category carried by err. Errors that were never
// classified are ErrUnexpected.
func ErrorTypeOf(err error) ErrorType {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Type
	}
	return ErrUnexpected
}
