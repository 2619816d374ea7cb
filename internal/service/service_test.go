package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagiu-portal/document-management-api/internal/config"
	"github.com/stagiu-portal/document-management-api/internal/dao"
	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/notifications"
	"github.com/stagiu-portal/document-management-api/internal/storage"
)

// fakeBlobStore keeps blobs in memory and hands out sequential IDs
type fakeBlobStore struct {
	blobs  map[string]*storage.Blob
	seq    int
	putErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string]*storage.Blob{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.seq++
	id := fmt.Sprintf("documents/2025/03/blob-%d", f.seq)
	f.blobs[id] = &storage.Blob{Data: data, ContentType: contentType}
	return id, nil
}

func (f *fakeBlobStore) Get(ctx context.Context, blobID string) (*storage.Blob, error) {
	blob, ok := f.blobs[blobID]
	if !ok {
		return nil, models.ErrBlobNotFound
	}
	return blob, nil
}

// fakePublisher records published events and can be told to fail
type fakePublisher struct {
	events []*notifications.DocumentAssignedEvent
	err    error
}

func (f *fakePublisher) PublishDocumentAssigned(ctx context.Context, event *notifications.DocumentAssignedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type testEnv struct {
	mock      sqlmock.Sqlmock
	db        *database.DB
	blobs     *fakeBlobStore
	publisher *fakePublisher

	templates   *TemplateService
	generation  *GenerationService
	assignments *AssignmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := database.New(sqlx.NewDb(rawDB, "sqlmock"), logger)
	blobs := newFakeBlobStore()
	publisher := &fakePublisher{}

	templateDAO := dao.NewTemplateDAO(db)
	studentDAO := dao.NewStudentDAO(db)
	assignmentDAO := dao.NewAssignmentDAO(db)

	documents := &config.DocumentsConfig{}
	generation := NewGenerationService(templateDAO, blobs, documents, logger)

	return &testEnv{
		mock:        mock,
		db:          db,
		blobs:       blobs,
		publisher:   publisher,
		templates:   NewTemplateService(templateDAO, studentDAO, blobs, logger),
		generation:  generation,
		assignments: NewAssignmentService(assignmentDAO, studentDAO, generation, blobs, publisher, db, logger),
	}
}

// formPDF builds a minimal single-revision PDF with flat text fields, enough
// for extraction and filling
func formPDF(fieldNames ...string) []byte {
	var body bytes.Buffer
	var offsets []int

	write := func(format string, args ...interface{}) {
		offsets = append(offsets, body.Len())
		fmt.Fprintf(&body, format, args...)
	}

	body.WriteString("%PDF-1.7\n")

	var fieldRefs bytes.Buffer
	for i := range fieldNames {
		if i > 0 {
			fieldRefs.WriteByte(' ')
		}
		fmt.Fprintf(&fieldRefs, "%d 0 R", 4+i)
	}

	write("1 0 obj\n<< /Type /Catalog /Pages 3 0 R /AcroForm 2 0 R >>\nendobj\n")
	write("2 0 obj\n<< /Fields [%s] >>\nendobj\n", fieldRefs.String())
	write("3 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	for i, name := range fieldNames {
		write("%d 0 obj\n<< /FT /Tx /T (%s) /Type /Annot /Subtype /Widget >>\nendobj\n", 4+i, name)
	}

	xrefOffset := body.Len()
	fmt.Fprintf(&body, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&body, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&body, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	return body.Bytes()
}

func (e *testEnv) registerTemplate(t *testing.T, documentType models.DocumentType, pdf []byte) string {
	t.Helper()
	blobID, err := e.blobs.Put(context.Background(), pdf, "application/pdf")
	require.NoError(t, err)
	return blobID
}

func (e *testEnv) expectTemplateLookup(documentType models.DocumentType, blobID string) {
	rows := sqlmock.NewRows([]string{"DOCUMENT_TYPE", "BLOB_ID", "FILENAME", "UPLOADED_AT"}).
		AddRow(string(documentType), blobID, "template.pdf", sampleTime())
	e.mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(documentType)).
		WillReturnRows(rows)
}

func (e *testEnv) expectStudentLookup(studentID string) {
	rows := sqlmock.NewRows([]string{
		"ID", "FIRST_NAME", "LAST_NAME", "EMAIL", "CNP", "ADDRESS",
		"ID_CARD_SERIES", "ID_CARD_NUMBER", "ID_CARD_ISSUED_BY",
	}).AddRow(studentID, "Andrei", "Popescu", "andrei@example.com", "1990505123456",
		"Str. Memorandumului 28", "CJ", "123456", "SPCLEP Cluj")
	e.mock.ExpectQuery("SELECT ID, FIRST_NAME, LAST_NAME").
		WithArgs(studentID).
		WillReturnRows(rows)
}

func (e *testEnv) expectCommit() {
	e.mock.ExpectBegin()
	e.mock.ExpectExec("UPDATE DM_DOCUMENT_ASSIGNMENT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	e.mock.ExpectExec("INSERT INTO DM_DOCUMENT_ASSIGNMENT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	e.mock.ExpectCommit()
}

func sampleTime() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerate_FillsTemplate(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name", "universitate")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)

	document, err := env.generation.Generate(context.Background(), models.DocTypeAdeverintaStudent, "STU-001", map[string]string{
		"student_full_name": "Andrei Popescu",
		"universitate":      "Universitatea Babeș-Bolyai",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, document.Data)
	assert.Equal(t, "adeverinta_student_STU-001.pdf", document.Filename)
	assert.True(t, bytes.HasPrefix(document.Data, pdf), "filling appends, never rewrites")
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGenerate_IncompleteFields(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name", "universitate")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)

	_, err := env.generation.Generate(context.Background(), models.DocTypeAdeverintaStudent, "STU-001", map[string]string{
		"student_full_name": "Andrei Popescu",
	})
	assert.ErrorIs(t, err, models.ErrFieldsIncomplete)
	assert.Contains(t, err.Error(), "universitate")
}

func TestGenerate_UnknownFieldAfterTemplateReplace(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("nume_complet")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)

	// The dialog still holds values for the old template's fields
	_, err := env.generation.Generate(context.Background(), models.DocTypeAdeverintaStudent, "STU-001", map[string]string{
		"nume_complet":      "Andrei Popescu",
		"student_full_name": "Andrei Popescu",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "student_full_name")
}

func TestGenerate_TemplateMissing(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(models.DocTypeAdeverintaStudent)).
		WillReturnError(errNoRows())

	_, err := env.generation.Generate(context.Background(), models.DocTypeAdeverintaStudent, "STU-001", nil)
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}

func TestAssignGenerated_SupersedesPrevious(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)
	fields := map[string]string{"student_full_name": "Andrei Popescu"}

	env.expectStudentLookup("STU-001")
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)
	env.expectCommit()
	first, err := env.assignments.AssignGenerated(context.Background(), "STU-001",
		models.DocTypeAdeverintaStudent, fields, models.RoleAdmin, true)
	require.NoError(t, err)

	env.expectStudentLookup("STU-001")
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)
	env.expectCommit()
	second, err := env.assignments.AssignGenerated(context.Background(), "STU-001",
		models.DocTypeAdeverintaStudent, fields, models.RoleAdmin, true)
	require.NoError(t, err)

	assert.NotEqual(t, first.BlobID, second.BlobID)
	assert.Equal(t, models.AssignmentStatusCurrent, second.Status)
	assert.Len(t, env.publisher.events, 2)
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAssignGenerated_BlobStoreFailureLeavesNoState(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)

	env.expectStudentLookup("STU-001")
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)
	env.blobs.putErr = errors.New("bucket unavailable")

	_, err := env.assignments.AssignGenerated(context.Background(), "STU-001",
		models.DocTypeAdeverintaStudent,
		map[string]string{"student_full_name": "Andrei Popescu"},
		models.RoleAdmin, true)
	require.Error(t, err)

	assert.Empty(t, env.publisher.events)
	// No transaction was ever opened
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAssignGenerated_InsertFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)

	env.expectStudentLookup("STU-001")
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)
	env.mock.ExpectBegin()
	env.mock.ExpectExec("UPDATE DM_DOCUMENT_ASSIGNMENT").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("INSERT INTO DM_DOCUMENT_ASSIGNMENT").
		WillReturnError(errors.New("duplicate key"))
	env.mock.ExpectRollback()

	_, err := env.assignments.AssignGenerated(context.Background(), "STU-001",
		models.DocTypeAdeverintaStudent,
		map[string]string{"student_full_name": "Andrei Popescu"},
		models.RoleAdmin, true)
	require.Error(t, err)

	assert.Empty(t, env.publisher.events, "no event for an uncommitted assignment")
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAssignSigned_BypassesCompleteness(t *testing.T) {
	env := newTestEnv(t)
	env.expectStudentLookup("STU-001")
	env.expectCommit()

	response, err := env.assignments.AssignSigned(context.Background(), "STU-001",
		models.DocTypeDeclaratieConsimtamant, []byte("%PDF-signed"), "declaratie_semnata.pdf",
		"application/pdf", models.RoleCoordinator, true)
	require.NoError(t, err)

	assert.Equal(t, models.DocTypeDeclaratieConsimtamant, response.DocumentType)
	assert.Equal(t, "declaratie_semnata.pdf", response.Filename)
	assert.Equal(t, models.RoleCoordinator, response.UploadedByRole)
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAssignSigned_EmptyFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.assignments.AssignSigned(context.Background(), "STU-001",
		models.DocTypeDeclaratieConsimtamant, nil, "declaratie.pdf",
		"application/pdf", models.RoleAdmin, true)
	assert.Error(t, err)
}

func TestAssign_NotificationFailureIsSoft(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	env.expectStudentLookup("STU-001")
	env.expectCommit()

	response, err := env.assignments.AssignSigned(context.Background(), "STU-001",
		models.DocTypeDeclaratieConsimtamant, []byte("%PDF-signed"), "declaratie.pdf",
		"application/pdf", models.RoleAdmin, true)
	require.NoError(t, err, "a failed notification never fails the commit")
	assert.Equal(t, models.AssignmentStatusCurrent, response.Status)
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestPutTemplate_RejectsUnparsableBytes(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.templates.PutTemplate(context.Background(),
		models.DocTypeAdeverintaStudent, []byte("not a pdf at all"), "broken.pdf")
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestPutTemplate_StoresAndUpserts(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectExec("INSERT INTO DM_TEMPLATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	response, err := env.templates.PutTemplate(context.Background(),
		models.DocTypeAdeverintaStudent, formPDF("student_full_name"), "adeverinta.pdf")
	require.NoError(t, err)

	assert.True(t, response.Exists)
	assert.Equal(t, "adeverinta.pdf", response.Filename)
	assert.NotEmpty(t, response.BlobID)
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetTemplate_MissingIsAValidState(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(models.DocTypeDeclaratieStudent)).
		WillReturnError(errNoRows())

	response, err := env.templates.GetTemplate(context.Background(), models.DocTypeDeclaratieStudent)
	require.NoError(t, err)
	assert.False(t, response.Exists)
	assert.Equal(t, models.DocTypeDeclaratieStudent, response.DocumentType)
}

func TestGetFields_SeedsInitialValues(t *testing.T) {
	env := newTestEnv(t)
	pdf := formPDF("student_full_name", "universitate", "observatii")
	blobID := env.registerTemplate(t, models.DocTypeAdeverintaStudent, pdf)
	env.expectTemplateLookup(models.DocTypeAdeverintaStudent, blobID)
	env.expectStudentLookup("STU-001")

	appRows := sqlmock.NewRows([]string{
		"ID", "STUDENT_ID", "PRENUME", "NUME", "INSTITUTIE", "FACULTATE",
		"SPECIALIZARE", "AN_STUDIU", "EMAIL",
	}).AddRow("APP-1", "STU-001", "Andrei", "Popescu", "Universitatea Babeș-Bolyai",
		"Facultatea de Litere", "Filologie", "II", "andrei@stud.ubbcluj.ro")
	env.mock.ExpectQuery("SELECT ID, STUDENT_ID, PRENUME").
		WithArgs("STU-001").
		WillReturnRows(appRows)

	response, err := env.templates.GetFields(context.Background(), models.DocTypeAdeverintaStudent, "STU-001")
	require.NoError(t, err)

	require.Len(t, response.Fields, 3)
	assert.Equal(t, "student_full_name", response.Fields[0].Name)
	assert.Equal(t, models.FieldKindText, response.Fields[0].Kind)
	assert.Equal(t, "Andrei Popescu", response.InitialValues["student_full_name"])
	assert.Equal(t, "Universitatea Babeș-Bolyai", response.InitialValues["universitate"])
	assert.NotContains(t, response.InitialValues, "observatii", "unresolved fields carry no initial value")
	require.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetFields_TemplateMissing(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT").
		WithArgs(string(models.DocTypeAdeverintaStudent)).
		WillReturnError(errNoRows())

	_, err := env.templates.GetFields(context.Background(), models.DocTypeAdeverintaStudent, "")
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}

func errNoRows() error {
	return sql.ErrNoRows
}
