package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stagiu-portal/document-management-api/internal/config"
	"github.com/stagiu-portal/document-management-api/internal/models"
	"github.com/stagiu-portal/document-management-api/internal/service"
	"github.com/stagiu-portal/document-management-api/internal/utils"
	pkgutils "github.com/stagiu-portal/document-management-api/pkg/utils"
)

// DocumentHandler handles document generation and assignment HTTP requests
type DocumentHandler struct {
	generationService *service.GenerationService
	assignmentService *service.AssignmentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(generationService *service.GenerationService, assignmentService *service.AssignmentService) *DocumentHandler {
	return &DocumentHandler{
		generationService: generationService,
		assignmentService: assignmentService,
	}
}

// GeneratePreview handles POST /api/v1/documents/generate-preview.
// Returns the filled PDF as a binary response; nothing is persisted.
func (h *DocumentHandler) GeneratePreview(c *gin.Context) {
	var request models.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request payload", err.Error())
		return
	}

	documentType, err := models.ParseDocumentType(request.DocumentType)
	if err != nil {
		utils.SendBadRequestError(c, "Invalid document type", err.Error())
		return
	}
	if err := pkgutils.ValidateStudentID(request.StudentID); err != nil {
		utils.SendBadRequestError(c, "Invalid student ID", err.Error())
		return
	}

	document, err := h.generationService.Generate(c.Request.Context(), documentType, request.StudentID, request.Fields)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTemplateNotFound):
			utils.SendTemplateNotFound(c)
		case errors.Is(err, models.ErrFieldsIncomplete):
			utils.SendValidationError(c, err.Error())
		case errors.Is(err, models.ErrExtractionFailed):
			utils.SendExtractionFailed(c, err.Error())
		case errors.Is(err, models.ErrGenerationFailed):
			utils.SendGenerationFailed(c, err.Error())
		default:
			utils.SendInternalServerError(c, "Failed to generate preview", err.Error())
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", document.Filename))
	c.Data(http.StatusOK, "application/pdf", document.Data)
}

// Assign handles POST /api/v1/students/:studentId/documents. A JSON body
// commits a server-side generated document from the submitted field values;
// a multipart body with source=signed commits the uploaded signed file.
func (h *DocumentHandler) Assign(c *gin.Context) {
	studentID := c.Param("studentId")
	if err := pkgutils.ValidateStudentID(studentID); err != nil {
		utils.SendBadRequestError(c, "Invalid student ID", err.Error())
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.assignSigned(c, studentID)
		return
	}
	h.assignGenerated(c, studentID)
}

func (h *DocumentHandler) assignGenerated(c *gin.Context, studentID string) {
	var request models.AssignGeneratedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request payload", err.Error())
		return
	}

	documentType, err := models.ParseDocumentType(request.DocumentType)
	if err != nil {
		utils.SendBadRequestError(c, "Invalid document type", err.Error())
		return
	}

	visible := true
	if request.VisibleToStudent != nil {
		visible = *request.VisibleToStudent
	}

	response, err := h.assignmentService.AssignGenerated(c.Request.Context(), studentID, documentType, request.Fields, models.RoleAdmin, visible)
	if err != nil {
		h.sendAssignError(c, err)
		return
	}

	utils.SendCreatedResponse(c, response)
}

func (h *DocumentHandler) assignSigned(c *gin.Context, studentID string) {
	if source := c.PostForm("source"); source != "" && source != string(models.SourceSigned) {
		utils.SendBadRequestError(c, "Invalid source", "multipart assignment requires source=signed")
		return
	}

	documentType, err := models.ParseDocumentType(c.PostForm("documentType"))
	if err != nil {
		utils.SendBadRequestError(c, "Invalid document type", err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.SendBadRequestError(c, "Signed document file is required", err.Error())
		return
	}
	if err := pkgutils.ValidateFilename(fileHeader.Filename); err != nil {
		utils.SendBadRequestError(c, "Invalid filename", err.Error())
		return
	}
	if maxSize := config.Get().Documents.MaxSignedSizeBytes; fileHeader.Size > maxSize {
		utils.SendBadRequestError(c, "Signed document file too large", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendBadRequestError(c, "Failed to read signed document", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.SendBadRequestError(c, "Failed to read signed document", err.Error())
		return
	}

	visible := true
	if raw := c.PostForm("visibleToStudent"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			visible = parsed
		}
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	response, err := h.assignmentService.AssignSigned(c.Request.Context(), studentID, documentType, data, fileHeader.Filename, mimeType, models.RoleAdmin, visible)
	if err != nil {
		h.sendAssignError(c, err)
		return
	}

	utils.SendCreatedResponse(c, response)
}

// sendAssignError translates committer failures. The prior assignment is
// still current for every error reported here.
func (h *DocumentHandler) sendAssignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrStudentNotFound):
		utils.SendStudentNotFound(c)
	case errors.Is(err, models.ErrTemplateNotFound):
		utils.SendTemplateNotFound(c)
	case errors.Is(err, models.ErrFieldsIncomplete):
		utils.SendValidationError(c, err.Error())
	case errors.Is(err, models.ErrGenerationFailed):
		utils.SendGenerationFailed(c, err.Error())
	case strings.Contains(err.Error(), "is empty"):
		utils.SendBadRequestError(c, "Invalid request", err.Error())
	default:
		utils.SendAssignmentFailed(c, err.Error())
	}
}

// GetAssignment handles GET /api/v1/documents/:assignmentId
func (h *DocumentHandler) GetAssignment(c *gin.Context) {
	assignmentID := c.Param("assignmentId")
	if assignmentID == "" {
		utils.SendBadRequestError(c, "Assignment ID is required", "")
		return
	}

	response, err := h.assignmentService.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, models.ErrAssignmentNotFound) {
			utils.SendAssignmentNotFound(c)
			return
		}
		utils.SendInternalServerError(c, "Failed to get assignment", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// ListStudentDocuments handles GET /api/v1/students/:studentId/documents
func (h *DocumentHandler) ListStudentDocuments(c *gin.Context) {
	studentID := c.Param("studentId")
	if err := pkgutils.ValidateStudentID(studentID); err != nil {
		utils.SendBadRequestError(c, "Invalid student ID", err.Error())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	pagination := utils.NewPaginationParams(limit, offset)

	response, err := h.assignmentService.ListStudentDocuments(c.Request.Context(), studentID, pagination.Limit, pagination.Offset)
	if err != nil {
		if errors.Is(err, models.ErrStudentNotFound) {
			utils.SendStudentNotFound(c)
			return
		}
		utils.SendInternalServerError(c, "Failed to list documents", err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// GetBlob handles GET /api/v1/blobs/*blobId and its /download variant. Blob
// IDs contain path separators, so the route is a wildcard and the download
// suffix is detected here.
func (h *DocumentHandler) GetBlob(c *gin.Context) {
	blobID := strings.TrimPrefix(c.Param("blobId"), "/")
	download := false
	if strings.HasSuffix(blobID, "/download") {
		download = true
		blobID = strings.TrimSuffix(blobID, "/download")
	}
	if err := pkgutils.ValidateBlobID(blobID); err != nil {
		utils.SendBadRequestError(c, "Invalid blob ID", err.Error())
		return
	}

	blob, err := h.assignmentService.GetBlob(c.Request.Context(), blobID)
	if err != nil {
		if errors.Is(err, models.ErrBlobNotFound) {
			utils.SendBlobNotFound(c)
			return
		}
		utils.SendInternalServerError(c, "Failed to fetch document", err.Error())
		return
	}

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, path.Base(blobID)))
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
