package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stagiu-portal/document-management-api/internal/acroform"
	"github.com/stagiu-portal/document-management-api/internal/autofill"
	"github.com/stagiu-portal/document-management-api/internal/dao"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/storage"
)

// TemplateService handles business logic for document templates: the
// registry of one unfilled AcroForm PDF per document type, plus the derived
// field schema served to the editing dialog.
type TemplateService struct {
	templateDAO *dao.TemplateDAO
	studentDAO  *dao.StudentDAO
	blobStore   storage.BlobStore
	logger      *logrus.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateDAO *dao.TemplateDAO,
	studentDAO *dao.StudentDAO,
	blobStore storage.BlobStore,
	logger *logrus.Logger,
) *TemplateService {
	return &TemplateService{
		templateDAO: templateDAO,
		studentDAO:  studentDAO,
		blobStore:   blobStore,
		logger:      logger,
	}
}

// GetTemplate retrieves the registered template for a document type. An
// unregistered type is a valid state, reported as exists=false rather than
// an error.
func (s *TemplateService) GetTemplate(ctx context.Context, documentType models.DocumentType) (*models.TemplateResponse, error) {
	template, err := s.templateDAO.Get(ctx, documentType)
	if err != nil {
		if err == models.ErrTemplateNotFound {
			return models.MissingTemplateResponse(documentType), nil
		}
		s.logger.WithError(err).Error("Failed to get template")
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template.ToTemplateResponse(), nil
}

// PutTemplate stores the uploaded bytes in the blob store and replaces the
// template row for the document type. The previous template's schema and any
// fill state derived from it become invalid; sessions handle that by
// resetting on replace.
func (s *TemplateService) PutTemplate(ctx context.Context, documentType models.DocumentType, data []byte, filename string) (*models.TemplateResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("template file is empty")
	}

	// Reject bytes that cannot be parsed at all; a form with zero fields is
	// still accepted
	if _, err := acroform.ExtractFields(data); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	blobID, err := s.blobStore.Put(ctx, data, "application/pdf")
	if err != nil {
		s.logger.WithError(err).Error("Failed to store template blob")
		return nil, fmt.Errorf("failed to store template: %w", err)
	}

	template := &models.Template{
		DocumentType: documentType,
		BlobID:       blobID,
		Filename:     filename,
		UploadedAt:   time.Now().UTC(),
	}

	if err := s.templateDAO.Upsert(ctx, template); err != nil {
		s.logger.WithError(err).Error("Failed to upsert template")
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_type": documentType,
		"blob_id":       blobID,
		"filename":      filename,
	}).Info("Template replaced")

	return template.ToTemplateResponse(), nil
}

// ListTemplates returns the template inventory across all document types
func (s *TemplateService) ListTemplates(ctx context.Context) (*models.TemplateListResponse, error) {
	templates, err := s.templateDAO.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list templates")
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	registered := make(map[models.DocumentType]*models.Template, len(templates))
	for i := range templates {
		registered[templates[i].DocumentType] = &templates[i]
	}

	// One entry per known type, registered or not, in registry order
	responses := make([]models.TemplateResponse, 0, len(models.AllDocumentTypes()))
	for _, documentType := range models.AllDocumentTypes() {
		if template, ok := registered[documentType]; ok {
			responses = append(responses, *template.ToTemplateResponse())
		} else {
			responses = append(responses, *models.MissingTemplateResponse(documentType))
		}
	}

	return &models.TemplateListResponse{
		Templates: responses,
		Total:     len(responses),
	}, nil
}

// GetFields extracts the field schema of the registered template and, when a
// student is named, seeds initial values through the auto-fill resolver. The
// schema is derived fresh on every call; nothing is cached server side.
func (s *TemplateService) GetFields(ctx context.Context, documentType models.DocumentType, studentID string) (*models.TemplateFieldsResponse, error) {
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
		s.logger.WithError(err).WithField("document_type", documentType).Error("Template bytes are not parseable")
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	schema := toSchemaFields(extracted)

	response := &models.TemplateFieldsResponse{
		DocumentType: documentType,
		Fields:       schema,
	}

	if studentID != "" {
		initialValues, err := s.resolveInitialValues(ctx, documentType, studentID, schema)
		if err != nil {
			return nil, err
		}
		response.InitialValues = initialValues
	}

	return response, nil
}

// resolveInitialValues runs the auto-fill resolver against the student's
// records and keeps only the fields that actually resolved
func (s *TemplateService) resolveInitialValues(ctx context.Context, documentType models.DocumentType, studentID string, schema []models.SchemaField) (map[string]string, error) {
	student, err := s.studentDAO.GetStudent(ctx, studentID)
	if err != nil {
		if err == models.ErrStudentNotFound {
			return nil, models.ErrStudentNotFound
		}
		s.logger.WithError(err).Error("Failed to get student")
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	application, err := s.studentDAO.GetApplicationByStudent(ctx, studentID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get application")
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	resolved := autofill.Resolve(documentType, student, application)
	seeded := autofill.SeedValues(schema, nil, resolved)

	initialValues := make(map[string]string)
	for name, value := range seeded {
		if value != "" {
			initialValues[name] = value
		}
	}
	return initialValues, nil
}

// toSchemaFields converts extracted fields to their API shape
func toSchemaFields(extracted []acroform.Field) []models.SchemaField {
	schema := make([]models.SchemaField, 0, len(extracted))
	for _, f := range extracted {
		schema = append(schema, models.SchemaField{
			Name:         f.Name,
			Kind:         models.FieldKind(f.Kind),
			ReadOnly:     f.ReadOnly,
			DefaultValue: f.DefaultValue,
		})
	}
	return schema
}
