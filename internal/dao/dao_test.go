package dao

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return database.New(sqlx.NewDb(rawDB, "sqlmock"), logger), mock
}

func TestTemplateDAO_Get(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewTemplateDAO(db)

	uploadedAt := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"DOCUMENT_TYPE", "BLOB_ID", "FILENAME", "UPLOADED_AT"}).
		AddRow("adeverinta_student", "documents/2025/02/abc", "adeverinta.pdf", uploadedAt)
	mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(models.DocTypeAdeverintaStudent)).
		WillReturnRows(rows)

	template, err := dao.Get(context.Background(), models.DocTypeAdeverintaStudent)
	require.NoError(t, err)

	assert.Equal(t, models.DocTypeAdeverintaStudent, template.DocumentType)
	assert.Equal(t, "documents/2025/02/abc", template.BlobID)
	assert.Equal(t, "adeverinta.pdf", template.Filename)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateDAO_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewTemplateDAO(db)

	mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(models.DocTypeDeclaratieStudent)).
		WillReturnError(sql.ErrNoRows)

	_, err := dao.Get(context.Background(), models.DocTypeDeclaratieStudent)
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}

func TestTemplateDAO_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewTemplateDAO(db)

	template := &models.Template{
		DocumentType: models.DocTypeAdeverintaStudent,
		BlobID:       "documents/2025/02/def",
		Filename:     "adeverinta_v2.pdf",
		UploadedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO DM_TEMPLATE").
		WithArgs(string(template.DocumentType), template.BlobID, template.Filename, template.UploadedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, dao.Upsert(context.Background(), template))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentDAO_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAssignmentDAO(db)

	mock.ExpectQuery("SELECT(.|\n)*FROM DM_DOCUMENT_ASSIGNMENT").
		WithArgs("ASSIGN-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := dao.GetByID(context.Background(), "ASSIGN-missing")
	assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
}

func TestAssignmentDAO_SupersedeThenInsert(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAssignmentDAO(db)

	assignment := &models.DocumentAssignment{
		ID:               "ASSIGN-1",
		StudentID:        "STU-001",
		DocumentType:     models.DocTypeAdeverintaStudent,
		BlobID:           "documents/2025/03/ghi",
		Filename:         "adeverinta_STU-001.pdf",
		MimeType:         "application/pdf",
		UploadedAt:       time.Now().UTC(),
		UploadedByRole:   models.RoleAdmin,
		VisibleToStudent: true,
		Status:           models.AssignmentStatusCurrent,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE DM_DOCUMENT_ASSIGNMENT").
		WithArgs(
			string(models.AssignmentStatusSuperseded),
			assignment.StudentID,
			string(assignment.DocumentType),
			string(models.AssignmentStatusCurrent),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO DM_DOCUMENT_ASSIGNMENT").
		WithArgs(
			assignment.ID,
			assignment.StudentID,
			string(assignment.DocumentType),
			assignment.BlobID,
			assignment.Filename,
			assignment.MimeType,
			assignment.UploadedAt,
			string(assignment.UploadedByRole),
			assignment.VisibleToStudent,
			string(assignment.Status),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := db.WithTransaction(context.Background(), func(tx *database.Transaction) error {
		if err := dao.SupersedeCurrentWithTx(context.Background(), tx, assignment.StudentID, assignment.DocumentType); err != nil {
			return err
		}
		return dao.InsertWithTx(context.Background(), tx, assignment)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentDAO_ListCurrentByStudent(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewAssignmentDAO(db)

	uploadedAt := time.Date(2025, 3, 5, 11, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"ID", "STUDENT_ID", "DOCUMENT_TYPE", "BLOB_ID", "FILENAME", "MIME_TYPE",
		"UPLOADED_AT", "UPLOADED_BY_ROLE", "VISIBLE_TO_STUDENT", "STATUS",
	}).AddRow("ASSIGN-1", "STU-001", "adeverinta_student", "documents/2025/03/a",
		"adeverinta.pdf", "application/pdf", uploadedAt, "ADMIN", true, "CURRENT")
	mock.ExpectQuery("SELECT(.|\n)*FROM DM_DOCUMENT_ASSIGNMENT").
		WithArgs("STU-001", string(models.AssignmentStatusCurrent), 20, 0).
		WillReturnRows(rows)

	assignments, err := dao.ListCurrentByStudent(context.Background(), "STU-001", 20, 0)
	require.NoError(t, err)

	require.Len(t, assignments, 1)
	assert.Equal(t, models.AssignmentStatusCurrent, assignments[0].Status)
	assert.Equal(t, models.DocTypeAdeverintaStudent, assignments[0].DocumentType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDAO_GetStudentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewStudentDAO(db)

	mock.ExpectQuery("SELECT ID, FIRST_NAME, LAST_NAME").
		WithArgs("STU-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := dao.GetStudent(context.Background(), "STU-missing")
	assert.ErrorIs(t, err, models.ErrStudentNotFound)
}

func TestStudentDAO_NoApplicationIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewStudentDAO(db)

	mock.ExpectQuery("SELECT ID, STUDENT_ID, PRENUME").
		WithArgs("STU-001").
		WillReturnError(sql.ErrNoRows)

	application, err := dao.GetApplicationByStudent(context.Background(), "STU-001")
	require.NoError(t, err)
	assert.Nil(t, application)
}
