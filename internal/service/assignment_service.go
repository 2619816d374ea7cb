package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stagiu-portal/document-management-api/internal/dao"
	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/notifications"
	"github.com/stagiu-portal/document-management-api/internal/storage"
	"github.com/stagiu-portal/document-management-api/pkg/utils"
)

// AssignmentService commits documents to students. A commit persists the
// bytes, supersedes the previous assignment for the same (student, document
// type) pair inside one transaction, and raises a notification event. The
// transaction is the only mutating point of the assignment records; failure
// before commit leaves the prior assignment current.
type AssignmentService struct {
	assignmentDAO *dao.AssignmentDAO
	studentDAO    *dao.StudentDAO
	generation    *GenerationService
	blobStore     storage.BlobStore
	publisher     notifications.Publisher
	db            *database.DB
	logger        *logrus.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignmentDAO *dao.AssignmentDAO,
	studentDAO *dao.StudentDAO,
	generation *GenerationService,
	blobStore storage.BlobStore,
	publisher notifications.Publisher,
	db *database.DB,
	logger *logrus.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentDAO: assignmentDAO,
		studentDAO:    studentDAO,
		generation:    generation,
		blobStore:     blobStore,
		publisher:     publisher,
		db:            db,
		logger:        logger,
	}
}

// AssignGenerated re-fills the template server side from the submitted field
// values and commits the result. Re-filling instead of trusting client bytes
// guarantees the committed document matches the registered template.
func (s *AssignmentService) AssignGenerated(ctx context.Context, studentID string, documentType models.DocumentType, fields map[string]string, role models.UploaderRole, visibleToStudent bool) (*models.AssignmentResponse, error) {
	if _, err := s.studentDAO.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}

	document, err := s.generation.Generate(ctx, documentType, studentID, fields)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, studentID, documentType, document.Data, document.Filename, "application/pdf", role, visibleToStudent)
}

// AssignSigned commits an externally prepared, already-signed document. The
// fill state plays no part here: a signed file is authoritative as supplied.
func (s *AssignmentService) AssignSigned(ctx context.Context, studentID string, documentType models.DocumentType, data []byte, filename, mimeType string, role models.UploaderRole, visibleToStudent bool) (*models.AssignmentResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("signed document file is empty")
	}
	if _, err := s.studentDAO.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	return s.commit(ctx, studentID, documentType, data, filename, mimeType, role, visibleToStudent)
}

// commit is the single write path: store the blob, swap the CURRENT row
// transactionally, notify best-effort
func (s *AssignmentService) commit(ctx context.Context, studentID string, documentType models.DocumentType, data []byte, filename, mimeType string, role models.UploaderRole, visibleToStudent bool) (*models.AssignmentResponse, error) {
	blobID, err := s.blobStore.Put(ctx, data, mimeType)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store document blob")
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	assignment := &models.DocumentAssignment{
		ID:               utils.GenerateAssignmentID(),
		StudentID:        studentID,
		DocumentType:     documentType,
		BlobID:           blobID,
		Filename:         filename,
		MimeType:         mimeType,
		UploadedAt:       time.Now().UTC(),
		UploadedByRole:   role,
		VisibleToStudent: visibleToStudent,
		Status:           models.AssignmentStatusCurrent,
	}

	err = s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		if err := s.assignmentDAO.SupersedeCurrentWithTx(ctx, tx, studentID, documentType); err != nil {
			return err
		}
		return s.assignmentDAO.InsertWithTx(ctx, tx, assignment)
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"student_id":    studentID,
			"document_type": documentType,
		}).Error("Failed to commit assignment")
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"assignment_id": assignment.ID,
		"student_id":    studentID,
		"document_type": documentType,
		"blob_id":       blobID,
	}).Info("Document assigned")

	// Soft failure: a persisted-but-unnotified assignment is tolerated
	event := notifications.NewDocumentAssignedEvent(assignment)
	if err := s.publisher.PublishDocumentAssigned(ctx, event); err != nil {
		s.logger.WithError(err).WithField("assignment_id", assignment.ID).
			Warn("Failed to publish assignment notification")
	}

	return assignment.ToAssignmentResponse(), nil
}

// GetAssignment retrieves an assignment by ID
func (s *AssignmentService) GetAssignment(ctx context.Context, assignmentID string) (*models.AssignmentResponse, error) {
	assignment, err := s.assignmentDAO.GetByID(ctx, assignmentID)
	if err != nil {
		if err == models.ErrAssignmentNotFound {
			return nil, models.ErrAssignmentNotFound
		}
		s.logger.WithError(err).Error("Failed to get assignment")
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment.ToAssignmentResponse(), nil
}

// ListStudentDocuments lists a student's current documents
func (s *AssignmentService) ListStudentDocuments(ctx context.Context, studentID string, limit, offset int) (*models.AssignmentListResponse, error) {
	if _, err := s.studentDAO.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentDAO.ListCurrentByStudent(ctx, studentID, limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list assignments")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	total, err := s.assignmentDAO.CountCurrentByStudent(ctx, studentID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count assignments")
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	responses := make([]models.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		responses = append(responses, *assignments[i].ToAssignmentResponse())
	}

	return &models.AssignmentListResponse{
		Assignments: responses,
		Total:       total,
	}, nil
}

// GetBlob fetches stored document bytes for the view and download endpoints
func (s *AssignmentService) GetBlob(ctx context.Context, blobID string) (*storage.Blob, error) {
	blob, err := s.blobStore.Get(ctx, blobID)
	if err != nil {
		if err == models.ErrBlobNotFound {
			return nil, models.ErrBlobNotFound
		}
		s.logger.WithError(err).WithField("blob_id", blobID).Error("Failed to fetch blob")
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return blob, nil
}
