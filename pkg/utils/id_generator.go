package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new UUID for templates, assignments, or events
func GenerateID() string {
	return uuid.New().String()
}

// GenerateTemplateID generates a unique template ID
func GenerateTemplateID() string {
	return "TEMPLATE-" + uuid.New().String()
}

// GenerateAssignmentID generates a unique document assignment ID
func GenerateAssignmentID() string {
	return "ASSIGN-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
