package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	gradebookHandler *GradebookHandler
	metadataHandler  *MetadataHandler
	exportHandler    *ExportHandler
	analyticsHandler *AnalyticsHandler
	authHandler      *AuthHandler
	auth             *AuthMiddleware
	logger           utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		gradebookHandler: NewGradebookHandler(serviceManager.Gradebook(), logger),
		metadataHandler:  NewMetadataHandler(serviceManager.Metadata(), logger),
		exportHandler:    NewExportHandler(serviceManager.Export(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		auth:             NewAuthMiddleware(serviceManager.Auth(), NewBaseHandler(logger)),
		logger:           logger,
	}
}

// NewRouter builds a gin engine with the standard middleware and routes.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), utils.LoggerMiddleware(hm.logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "gradequest-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", hm.authHandler.Login)
	v1.GET("/scoring/policy", hm.gradebookHandler.GetPolicy)

	authed := v1.Group("", hm.auth.RequireSession())
	teacher := hm.auth.RequireTeacher()

	authed.GET("/dashboard", teacher, hm.analyticsHandler.GetDashboard)

	students := authed.Group("/students")
	{
		students.GET("", teacher, hm.gradebookHandler.ListStudents)
		students.GET("/:id", hm.auth.RequireStudentSelf(true), hm.gradebookHandler.GetStudent)
	}

	subjects := authed.Group("/subjects/:subject")
	{
		subjects.GET("/board", teacher, hm.gradebookHandler.SubjectBoard)
		subjects.GET("/export", teacher, hm.exportHandler.ExportSubject)
		subjects.GET("/analytics", teacher, hm.analyticsHandler.GetSubjectAnalytics)

		subjects.GET("/metadata", hm.metadataHandler.GetMetadata)
		subjects.PUT("/metadata", teacher, hm.metadataHandler.UpdateMetadata)

		record := subjects.Group("/students/:id")
		{
			record.PUT("/scores", teacher, hm.gradebookHandler.UpdateScore)
			record.PUT("/status", teacher, hm.gradebookHandler.UpdateStatus)
			record.PUT("/rewards", teacher, hm.gradebookHandler.OverrideBalance)
			record.POST("/redeem", hm.auth.RequireStudentSelf(false), hm.gradebookHandler.Redeem)
		}
	}
}
