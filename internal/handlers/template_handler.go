package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/stagiu-portal/document-management-api/internal/config"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/service"
	"github.com/stagiu-portal/document-management-api/internal/utils"
	pkgutils "github.com/stagiu-portal/document-management-api/pkg/utils"
)

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// parseDocumentTypeParam validates the :documentType path parameter against
// the closed enumeration. Writes the error response itself on failure.
func parseDocumentTypeParam(c *gin.Context) (models.DocumentType, bool) {
	raw := c.Param("documentType")
	if err := pkgutils.ValidateDocumentTypeString(raw); err != nil {
		utils.SendBadRequestError(c, "Invalid document type", err.Error())
		return "", false
	}
	documentType, err := models.ParseDocumentType(raw)
	if err != nil {
		utils.SendBadRequestError(c, "Invalid document type", err.Error())
		return "", false
	}
	return documentType, true
}

// GetTemplate handles GET /api/v1/document-templates/:documentType
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	documentType, ok := parseDocumentTypeParam(c)
	if !ok {
		return
	}

	response, err := h.templateService.GetTemplate(c.Request.Context(), documentType)
	if err != nil {
		utils.SendInternalServerError(c, "Failed to get template", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// PutTemplate handles POST /api/v1/document-templates/:documentType.
// Multipart upload with the PDF under the "file" field; replaces any
// previously registered template for the type.
func (h *TemplateHandler) PutTemplate(c *gin.Context) {
	documentType, ok := parseDocumentTypeParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.SendBadRequestError(c, "Template file is required", err.Error())
		return
	}
	if err := pkgutils.ValidateFilename(fileHeader.Filename); err != nil {
		utils.SendBadRequestError(c, "Invalid filename", err.Error())
		return
	}
	if maxSize := config.Get().Documents.MaxTemplateSizeBytes; fileHeader.Size > maxSize {
		utils.SendBadRequestError(c, "Template file too large", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendBadRequestError(c, "Failed to read template file", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.SendBadRequestError(c, "Failed to read template file", err.Error())
		return
	}

	response, err := h.templateService.PutTemplate(c.Request.Context(), documentType, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, models.ErrExtractionFailed) {
			utils.SendExtractionFailed(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, "Failed to save template", err.Error())
		return
	}

	utils.SendCreatedResponse(c, response)
}

// ListTemplates handles GET /api/v1/document-templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	response, err := h.templateService.ListTemplates(c.Request.Context())
	if err != nil {
		utils.SendInternalServerError(c, "Failed to list templates", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// GetFields handles GET /api/v1/document-templates/:documentType/fields.
// With a studentId query parameter the response includes auto-filled initial
// values for that student.
func (h *TemplateHandler) GetFields(c *gin.Context) {
	documentType, ok := parseDocumentTypeParam(c)
	if !ok {
		return
	}

	studentID := c.Query("studentId")
	if studentID != "" {
		if err := pkgutils.ValidateStudentID(studentID); err != nil {
			utils.SendBadRequestError(c, "Invalid student ID", err.Error())
			return
		}
	}

	response, err := h.templateService.GetFields(c.Request.Context(), documentType, studentID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTemplateNotFound):
			utils.SendTemplateNotFound(c)
		case errors.Is(err, models.ErrStudentNotFound):
			utils.SendStudentNotFound(c)
		case errors.Is(err, models.ErrExtractionFailed):
			utils.SendExtractionFailed(c, err.Error())
		default:
			utils.SendInternalServerError(c, "Failed to get template fields", err.Error())
		}
		return
	}

	utils.SendOKResponse(c, response)
}
