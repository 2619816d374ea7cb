package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/models"
)

// TemplateDAO handles database operations for document templates.
// The table holds at most one row per document type; a new upload replaces
// the row in full.
type TemplateDAO struct {
	db *database.DB
}

// NewTemplateDAO creates a new TemplateDAO instance
func NewTemplateDAO(db *database.DB) *TemplateDAO {
	return &TemplateDAO{db: db}
}

// Get retrieves the registered template for a document type
func (dao *TemplateDAO) Get(ctx context.Context, documentType models.DocumentType) (*models.Template, error) {
	query := `
		SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT
		FROM DM_TEMPLATE
		WHERE DOCUMENT_TYPE = ?
	`

	var template models.Template
	err := dao.db.GetContext(ctx, &template, query, documentType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &template, nil
}

// Upsert inserts or replaces the template row for a document type.
// The previous blob ID becomes unreferenced; the blob itself is not deleted.
func (dao *TemplateDAO) Upsert(ctx context.Context, template *models.Template) error {
	query := `
		INSERT INTO DM_TEMPLATE (DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			BLOB_ID = VALUES(BLOB_ID),
			FILENAME = VALUES(FILENAME),
			UPLOADED_AT = VALUES(UPLOADED_AT)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		template.DocumentType,
		template.BlobID,
		template.Filename,
		template.UploadedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}

	return nil
}

// List retrieves all registered templates ordered by document type
func (dao *TemplateDAO) List(ctx context.Context) ([]models.Template, error) {
	query := `
		SELECT DOCUMENT_TYPE, BLOB_ID, FILENAME, UPLOADED_AT
		FROM DM_TEMPLATE
		ORDER BY DOCUMENT_TYPE
	`

	var templates []models.Template
	err := dao.db.SelectContext(ctx, &templates, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

// Exists checks whether a template is registered for a document type
func (dao *TemplateDAO) Exists(ctx context.Context, documentType models.DocumentType) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM DM_TEMPLATE WHERE DOCUMENT_TYPE = ?)`

	var exists bool
	err := dao.db.GetContext(ctx, &exists, query, documentType)
	if err != nil {
		return false, fmt.Errorf("failed to check template existence: %w", err)
	}

	return exists, nil
}
