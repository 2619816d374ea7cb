package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stagiu-portal/document-management-api/internal/acroform"
	"github.com/stagiu-portal/document-management-api/internal/autofill"
	"github.com/stagiu-portal/document-management-api/internal/config"
	"github.com/stagiu-portal/document-management-api/internal/dao"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/session"
	"github.com/stagiu-portal/document-management-api/internal/storage"
)

// GenerationService produces filled PDFs from a registered template and a
// complete value map. The dialog gates generation locally with its own
// completeness check; this service re-checks against a freshly extracted
// schema because the template may have been replaced mid-session.
type GenerationService struct {
	templateDAO *dao.TemplateDAO
	blobStore   storage.BlobStore
	documents   *config.DocumentsConfig
	logger      *logrus.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	templateDAO *dao.TemplateDAO,
	blobStore storage.BlobStore,
	documents *config.DocumentsConfig,
	logger *logrus.Logger,
) *GenerationService {
	return &GenerationService{
		templateDAO: templateDAO,
		blobStore:   blobStore,
		documents:   documents,
		logger:      logger,
	}
}

// GeneratedDocument is a filled PDF with its suggested filename
type GeneratedDocument struct {
	Data     []byte
	Filename string
}

// Generate fills the registered template for the document type with the
// given values and returns the resulting PDF. Fails without partial output
// when the fill state is incomplete against the template's current schema or
// when a value targets a field the template no longer has.
func (s *GenerationService) Generate(ctx context.Context, documentType models.DocumentType, studentID string, values map[string]string) (*GeneratedDocument, error) {
	template, err := s.templateDAO.Get(ctx, documentType)
	if err != nil {
		if err == models.ErrTemplateNotFound {
			return nil, models.ErrTemplateNotFound
		}
		s.logger.WithError(err).Error("Failed to get template")
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	blob, err := s.blobStore.Get(ctx, template.BlobID)
	if err != nil {
		s.logger.WithError(err).WithField("blob_id", template.BlobID).Error("Failed to fetch template blob")
		return nil, fmt.Errorf("failed to fetch template content: %w", err)
	}

	extracted, err := acroform.ExtractFields(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	schema := toSchemaFields(extracted)

	fillValues, err := s.checkCompleteness(documentType, studentID, schema, values)
	if err != nil {
		return nil, err
	}

	filled, err := acroform.FillFields(blob.Data, fillValues, acroform.FillOptions{
		Flatten: s.documents.FlattenOnGenerate,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"document_type": documentType,
			"student_id":    studentID,
		}).Error("Failed to fill template")
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_type": documentType,
		"student_id":    studentID,
		"size":          len(filled),
	}).Info("Document generated")

	return &GeneratedDocument{
		Data:     filled,
		Filename: fmt.Sprintf("%s_%s.pdf", documentType, studentID),
	}, nil
}

// checkCompleteness validates the value map against the freshly extracted
// schema through a throwaway session, then builds the map actually written
// into the PDF. Values for fields the schema does not declare are kept so
// the filler can report them by name instead of silently dropping them.
func (s *GenerationService) checkCompleteness(documentType models.DocumentType, studentID string, schema []models.SchemaField, values map[string]string) (map[string]string, error) {
	sess := session.New(documentType, studentID)
	defer sess.Close()
	if err := sess.ResetTemplate(schema, autofill.SeedValues(schema, values, nil)); err != nil {
		return nil, err
	}

	if !sess.IsComplete() {
		missing := sess.MissingFields()
		return nil, fmt.Errorf("%w: missing %s", models.ErrFieldsIncomplete, strings.Join(missing, ", "))
	}

	fillValues := sess.Values()
	for name, value := range values {
		fillValues[name] = value
	}
	return fillValues, nil
}
