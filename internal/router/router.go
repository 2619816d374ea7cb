package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stagiu-portal/document-management-api/internal/database"
	"github.com/stagiu-portal/document-management-api/internal/handlers"
	"github.com/stagiu-portal/document-management-api/internal/service"
)

// SetupRouter configures all API routes
func SetupRouter(
	templateService *service.TemplateService,
	generationService *service.GenerationService,
	assignmentService *service.AssignmentService,
	db *database.DB,
) *gin.Engine {
	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Create handlers
	templateHandler := handlers.NewTemplateHandler(templateService)
	documentHandler := handlers.NewDocumentHandler(generationService, assignmentService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Template registry routes
		v1.GET("/document-templates", templateHandler.ListTemplates)
		v1.GET("/document-templates/:documentType", templateHandler.GetTemplate)
		v1.POST("/document-templates/:documentType", templateHandler.PutTemplate)
		v1.GET("/document-templates/:documentType/fields", templateHandler.GetFields)

		// Document generation and assignment routes
		v1.POST("/documents/generate-preview", documentHandler.GeneratePreview)
		v1.GET("/documents/:assignmentId", documentHandler.GetAssignment)
		v1.POST("/students/:studentId/documents", documentHandler.Assign)
		v1.GET("/students/:studentId/documents", documentHandler.ListStudentDocuments)

		// Blob IDs contain slashes; the handler splits off the /download suffix
		v1.GET("/blobs/*blobId", documentHandler.GetBlob)
	}

	return router
}
