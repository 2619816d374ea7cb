// Package notifications raises document lifecycle events for downstream
// consumers (the student-facing portal, mailers). Delivery is somebody
// else's job; this package only publishes.
package notifications

import (
	"time"

	"github.com/stagiu-portal/document-management-api/internal/models"
)

// EventDocumentAssigned is published after a document is committed for a
// student
const EventDocumentAssigned = "document.assigned"

// DocumentAssignedEvent is the payload of a document.assigned message
type DocumentAssignedEvent struct {
	Event        string              `json:"event"`
	StudentID    string              `json:"studentId"`
	DocumentType models.DocumentType `json:"documentType"`
	AssignmentID string              `json:"assignmentId"`
	Filename     string              `json:"filename"`
	Timestamp    time.Time           `json:"timestamp"`
}

// NewDocumentAssignedEvent builds the event for a committed assignment
func NewDocumentAssignedEvent(assignment *models.DocumentAssignment) *DocumentAssignedEvent {
	return &DocumentAssignedEvent{
		Event:        EventDocumentAssigned,
		StudentID:    assignment.StudentID,
		DocumentType: assignment.DocumentType,
		AssignmentID: assignment.ID,
		Filename:     assignment.Filename,
		Timestamp:    time.Now().UTC(),
	}
}
