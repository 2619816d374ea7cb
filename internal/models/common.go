package models

import (
	"errors"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeValidationError    = "VALIDATION_ERROR"
	ErrCodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
	ErrCodeStudentNotFound    = "STUDENT_NOT_FOUND"
	ErrCodeAssignmentNotFound = "ASSIGNMENT_NOT_FOUND"
	ErrCodeBlobNotFound       = "BLOB_NOT_FOUND"
	ErrCodeExtractionFailed   = "EXTRACTION_FAILED"
	ErrCodeGenerationFailed   = "GENERATION_FAILED"
	ErrCodeAssignmentFailed   = "ASSIGNMENT_FAILED"
)

// Sentinel errors shared between the service and handler layers
var (
	// ErrTemplateNotFound is returned when no template is registered for a
	// document type. This is a valid state rather than a server fault: the
	// caller is expected to prompt for an upload.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrStudentNotFound is returned for lookups of unknown students
	ErrStudentNotFound = errors.New("student not found")

	// ErrAssignmentNotFound is returned for lookups of unknown assignments
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrBlobNotFound is returned when the blob store has no object for a key
	ErrBlobNotFound = errors.New("blob not found")

	// ErrFieldsIncomplete is returned when generation is requested while the
	// fill state still has empty fields
	ErrFieldsIncomplete = errors.New("document fields are incomplete")

	// ErrExtractionFailed is returned when template bytes cannot be parsed as
	// a PDF form
	ErrExtractionFailed = errors.New("failed to extract fields from template")

	// ErrGenerationFailed is returned when values cannot be written into the
	// template, for example when a target field no longer exists
	ErrGenerationFailed = errors.New("failed to generate document")
)

// HTTPStatusForErrorCode returns the appropriate HTTP status code for an error code
func HTTPStatusForErrorCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationError, ErrCodeExtractionFailed:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeTemplateNotFound, ErrCodeStudentNotFound,
		ErrCodeAssignmentNotFound, ErrCodeBlobNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeInternalError, ErrCodeDatabaseError, ErrCodeGenerationFailed, ErrCodeAssignmentFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Message: message,
		Data:    data,
	}
}

// AssignmentStatus lists the lifecycle statuses of a document assignment.
// At most one assignment per (student, document type) is CURRENT; committing
// a new one moves the previous row to SUPERSEDED.
type AssignmentStatus string

const (
	// AssignmentStatusCurrent marks the authoritative document for the pair
	AssignmentStatusCurrent AssignmentStatus = "CURRENT"
	// AssignmentStatusSuperseded marks a document replaced by a later commit
	AssignmentStatusSuperseded AssignmentStatus = "SUPERSEDED"
)

// UploaderRole identifies who committed an assignment
type UploaderRole string

const (
	// RoleAdmin is the administrative operator of the portal
	RoleAdmin UploaderRole = "ADMIN"
	// RoleCoordinator is a program coordinator with document privileges
	RoleCoordinator UploaderRole = "COORDINATOR"
)
