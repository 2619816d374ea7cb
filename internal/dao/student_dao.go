package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
)

// StudentDAO provides read-only access to student and application records.
// This subsystem never writes to these tables; they feed the auto-fill
// resolver and notification addressing.
type StudentDAO struct {
	db *database.DB
}

// NewStudentDAO creates a new StudentDAO instance
func NewStudentDAO(db *database.DB) *StudentDAO {
	return &StudentDAO{db: db}
}

// GetStudent retrieves a student record by ID
func (dao *StudentDAO) GetStudent(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	query := `
		SELECT ID, FIRST_NAME, LAST_NAME, EMAIL, CNP, ADDRESS,
		       ID_CARD_SERIES, ID_CARD_NUMBER, ID_CARD_ISSUED_BY
		FROM DM_STUDENT
		WHERE ID = ?
	`

	var student models.StudentRecord
	err := dao.db.GetContext(ctx, &student, query, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return &student, nil
}

// GetApplicationByStudent retrieves the student's latest enrollment
// application. Returns nil without error when the student has none: the
// resolver then falls back to the student record.
func (dao *StudentDAO) GetApplicationByStudent(ctx context.Context, studentID string) (*models.ApplicationRecord, error) {
	query := `
		SELECT ID, STUDENT_ID, PRENUME, NUME, INSTITUTIE, FACULTATE,
		       SPECIALIZARE, AN_STUDIU, EMAIL
		FROM DM_APPLICATION
		WHERE STUDENT_ID = ?
		ORDER BY ID DESC
		LIMIT 1
	`

	var application models.ApplicationRecord
	err := dao.db.GetContext(ctx, &application, query, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &application, nil
}
