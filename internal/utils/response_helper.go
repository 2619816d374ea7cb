package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stagiu-portal/document-management-api/internal/models"
)

// SendSuccessResponse sends a successful JSON response
func SendSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendErrorCode sends an error response with the status derived from the code
func SendErrorCode(c *gin.Context, errCode, message, details string) {
	SendErrorResponse(c, models.HTTPStatusForErrorCode(errCode), errCode, message, details)
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendTemplateNotFound reports an unregistered template as an error state,
// used by endpoints that require one (field fetch, generation)
func SendTemplateNotFound(c *gin.Context) {
	SendErrorCode(c, models.ErrCodeTemplateNotFound, "No template registered for this document type", "")
}

// SendStudentNotFound sends the student lookup failure
func SendStudentNotFound(c *gin.Context) {
	SendErrorCode(c, models.ErrCodeStudentNotFound, "Student not found", "")
}

// SendAssignmentNotFound sends the assignment lookup failure
func SendAssignmentNotFound(c *gin.Context) {
	SendErrorCode(c, models.ErrCodeAssignmentNotFound, "Assignment not found", "")
}

// SendBlobNotFound sends the blob lookup failure
func SendBlobNotFound(c *gin.Context) {
	SendErrorCode(c, models.ErrCodeBlobNotFound, "Document not found", "")
}

// SendExtractionFailed reports template bytes that could not be parsed
func SendExtractionFailed(c *gin.Context, details string) {
	SendErrorCode(c, models.ErrCodeExtractionFailed, "Template could not be parsed as a PDF form", details)
}

// SendGenerationFailed reports a fill failure; no partial document exists
func SendGenerationFailed(c *gin.Context, details string) {
	SendErrorCode(c, models.ErrCodeGenerationFailed, "Failed to generate document", details)
}

// SendAssignmentFailed reports a commit failure; the prior assignment
// remains current
func SendAssignmentFailed(c *gin.Context, details string) {
	SendErrorCode(c, models.ErrCodeAssignmentFailed, "Failed to assign document", details)
}
