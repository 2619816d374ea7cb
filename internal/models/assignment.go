package models

import "time"

// DocumentAssignment represents the DM_DOCUMENT_ASSIGNMENT table: the
// persisted record naming the authoritative document for a
// (student, document type) pair. Rows are never mutated in place; a new
// commit inserts a CURRENT row and moves the previous one to SUPERSEDED.
type DocumentAssignment struct {
	ID               string           `db:"ID" json:"id"`
	StudentID        string           `db:"STUDENT_ID" json:"studentId"`
	DocumentType     DocumentType     `db:"DOCUMENT_TYPE" json:"documentType"`
	BlobID           string           `db:"BLOB_ID" json:"blobId"`
	Filename         string           `db:"FILENAME" json:"filename"`
	MimeType         string           `db:"MIME_TYPE" json:"mimeType"`
	UploadedAt       time.Time        `db:"UPLOADED_AT" json:"uploadedAt"`
	UploadedByRole   UploaderRole     `db:"UPLOADED_BY_ROLE" json:"uploadedByRole"`
	VisibleToStudent bool             `db:"VISIBLE_TO_STUDENT" json:"visibleToStudent"`
	Status           AssignmentStatus `db:"STATUS" json:"status"`
}

// AssignmentSource tells the committer which artifact to persist
type AssignmentSource string

const (
	// SourceGenerated persists a PDF produced by filling the template
	SourceGenerated AssignmentSource = "generated"
	// SourceSigned persists an externally prepared, already-signed file
	SourceSigned AssignmentSource = "signed"
)

// GenerateRequest is the JSON body of the preview-generation endpoint
type GenerateRequest struct {
	DocumentType string            `json:"documentType" binding:"required"`
	StudentID    string            `json:"studentId" binding:"required"`
	Fields       map[string]string `json:"fields" binding:"required"`
}

// AssignGeneratedRequest is the JSON body of the assignment endpoint when the
// source is a generated document. The fields map is re-filled server side so
// the committed bytes always match the registered template.
type AssignGeneratedRequest struct {
	DocumentType     string            `json:"documentType" binding:"required"`
	Fields           map[string]string `json:"fields" binding:"required"`
	VisibleToStudent *bool             `json:"visibleToStudent,omitempty"`
}

// AssignmentResponse is the API shape of a committed assignment
type AssignmentResponse struct {
	ID               string           `json:"id"`
	StudentID        string           `json:"studentId"`
	DocumentType     DocumentType     `json:"documentType"`
	BlobID           string           `json:"blobId"`
	Filename         string           `json:"filename"`
	MimeType         string           `json:"mimeType"`
	UploadedAt       time.Time        `json:"uploadedAt"`
	UploadedByRole   UploaderRole     `json:"uploadedByRole"`
	VisibleToStudent bool             `json:"visibleToStudent"`
	Status           AssignmentStatus `json:"status"`
}

// ToAssignmentResponse converts a DocumentAssignment to its API shape
func (a *DocumentAssignment) ToAssignmentResponse() *AssignmentResponse {
	return &AssignmentResponse{
		ID:               a.ID,
		StudentID:        a.StudentID,
		DocumentType:     a.DocumentType,
		BlobID:           a.BlobID,
		Filename:         a.Filename,
		MimeType:         a.MimeType,
		UploadedAt:       a.UploadedAt,
		UploadedByRole:   a.UploadedByRole,
		VisibleToStudent: a.VisibleToStudent,
		Status:           a.Status,
	}
}

// AssignmentListResponse lists a student's current documents
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Total       int                  `json:"total"`
}
