package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
)

// AssignmentDAO handles database operations for document assignments.
// Supersession is append-only: committing a new document inserts a CURRENT
// row and flips the previous CURRENT row for the same (student, type) to
// SUPERSEDED inside one transaction.
type AssignmentDAO struct {
	db *database.DB
}

// NewAssignmentDAO creates a new AssignmentDAO instance
func NewAssignmentDAO(db *database.DB) *AssignmentDAO {
	return &AssignmentDAO{db: db}
}

const assignmentColumns = `
	ID, STUDENT_ID, DOCUMENT_TYPE, BLOB_ID, FILENAME, MIME_TYPE,
	UPLOADED_AT, UPLOADED_BY_ROLE, VISIBLE_TO_STUDENT, STATUS
`

// GetByID retrieves an assignment by its ID
func (dao *AssignmentDAO) GetByID(ctx context.Context, assignmentID string) (*models.DocumentAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM DM_DOCUMENT_ASSIGNMENT
		WHERE ID = ?
	`

	var assignment models.DocumentAssignment
	err := dao.db.GetContext(ctx, &assignment, query, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return &assignment, nil
}

// GetCurrent retrieves the current assignment for a (student, document type) pair
func (dao *AssignmentDAO) GetCurrent(ctx context.Context, studentID string, documentType models.DocumentType) (*models.DocumentAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM DM_DOCUMENT_ASSIGNMENT
		WHERE STUDENT_ID = ? AND DOCUMENT_TYPE = ? AND STATUS = ?
	`

	var assignment models.DocumentAssignment
	err := dao.db.GetContext(ctx, &assignment, query, studentID, documentType, models.AssignmentStatusCurrent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get current assignment: %w", err)
	}

	return &assignment, nil
}

// ListCurrentByStudent lists a student's current documents ordered by type
func (dao *AssignmentDAO) ListCurrentByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.DocumentAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM DM_DOCUMENT_ASSIGNMENT
		WHERE STUDENT_ID = ? AND STATUS = ?
		ORDER BY DOCUMENT_TYPE
		LIMIT ? OFFSET ?
	`

	var assignments []models.DocumentAssignment
	err := dao.db.SelectContext(ctx, &assignments, query, studentID, models.AssignmentStatusCurrent, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

// CountCurrentByStudent counts a student's current documents
func (dao *AssignmentDAO) CountCurrentByStudent(ctx context.Context, studentID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM DM_DOCUMENT_ASSIGNMENT
		WHERE STUDENT_ID = ? AND STATUS = ?
	`

	var total int
	err := dao.db.GetContext(ctx, &total, query, studentID, models.AssignmentStatusCurrent)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	return total, nil
}

// SupersedeCurrentWithTx marks the current assignment for a (student, type)
// pair as superseded. Affecting zero rows is fine: it means this is the first
// assignment of that type for the student.
func (dao *AssignmentDAO) SupersedeCurrentWithTx(ctx context.Context, tx *database.Transaction, studentID string, documentType models.DocumentType) error {
	query := `
		UPDATE DM_DOCUMENT_ASSIGNMENT
		SET STATUS = ?
		WHERE STUDENT_ID = ? AND DOCUMENT_TYPE = ? AND STATUS = ?
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		models.AssignmentStatusSuperseded,
		studentID,
		documentType,
		models.AssignmentStatusCurrent,
	)

	if err != nil {
		return fmt.Errorf("failed to supersede assignment: %w", err)
	}

	return nil
}

// InsertWithTx inserts a new assignment row
func (dao *AssignmentDAO) InsertWithTx(ctx context.Context, tx *database.Transaction, assignment *models.DocumentAssignment) error {
	query := `
		INSERT INTO DM_DOCUMENT_ASSIGNMENT (` + assignmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.StudentID,
		assignment.DocumentType,
		assignment.BlobID,
		assignment.Filename,
		assignment.MimeType,
		assignment.UploadedAt,
		assignment.UploadedByRole,
		assignment.VisibleToStudent,
		assignment.Status,
	)

	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	return nil
}
