package utils

import (
	"fmt"
	"strings"
)

// ValidateStudentID validates student ID format
func ValidateStudentID(studentID string) error {
	if studentID == "" {
		return fmt.Errorf("student ID cannot be empty")
	}
	if len(studentID) > 255 {
		return fmt.Errorf("student ID too long (max 255 characters)")
	}
	return nil
}

// ValidateDocumentTypeString validates the raw document type parameter before
// it is resolved against the closed enumeration
func ValidateDocumentTypeString(documentType string) error {
	if documentType == "" {
		return fmt.Errorf("document type cannot be empty")
	}
	if len(documentType) > 64 {
		return fmt.Errorf("document type too long (max 64 characters)")
	}
	return nil
}

// ValidateFilename validates an uploaded filename
func ValidateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > 255 {
		return fmt.Errorf("filename too long (max 255 characters)")
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("filename must not contain path separators")
	}
	return nil
}

// ValidateBlobID validates a blob store key
func ValidateBlobID(blobID string) error {
	if blobID == "" {
		return fmt.Errorf("blob ID cannot be empty")
	}
	if len(blobID) > 512 {
		return fmt.Errorf("blob ID too long (max 512 characters)")
	}
	if strings.Contains(blobID, "..") {
		return fmt.Errorf("invalid blob ID")
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // Default limit
	}
	if limit > 100 {
		return 100 // Max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}
