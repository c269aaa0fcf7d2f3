package routes

import (
	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(settings *config.Settings, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger(logger))

	authRequired := utils.AuthMiddleware(settings.JWT.Secret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", authRequired, controllers.Me)
	}

	api := r.Group("/api")
	api.Use(authRequired)
	{
		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", controllers.CreateClient)
			clients.GET("", controllers.GetClients)
			clients.GET("/:id", controllers.GetClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", controllers.DeleteClient)
		}

		// Job routes
		jobs := api.Group("/jobs")
		{
			jobs.POST("", controllers.CreateJob)
			jobs.GET("", controllers.GetJobs)
			jobs.GET("/:id", controllers.GetJob)
			jobs.PUT("/:id", controllers.UpdateJob)
			jobs.PUT("/:id/status", controllers.UpdateJobStatus)
			jobs.POST("/:id/notes", controllers.AddJobNote)
			jobs.POST("/:id/photos", controllers.UploadJobPhoto)
			jobs.GET("/:id/parts", controllers.GetJobParts)
			jobs.DELETE("/:id", controllers.DeleteJob)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", controllers.CreateInvoice)
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PUT("/:id/status", controllers.UpdateInvoiceStatus)
			invoices.POST("/:id/payments", controllers.PayInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)
		}

		technicians := api.Group("/technicians")
		{
			technicians.POST("", controllers.CreateTechnician)
			technicians.GET("", controllers.GetTechnicians)
			technicians.GET("/:id", controllers.GetTechnician)
			technicians.PUT("/:id", controllers.UpdateTechnician)
			technicians.DELETE("/:id", controllers.DeleteTechnician)
		}

		timeEntries := api.Group("/time-entries")
		{
			timeEntries.POST("", controllers.StartTimeEntry)
			timeEntries.GET("", controllers.GetTimeEntries)
			timeEntries.GET("/active", controllers.GetActiveTimeEntry)
			timeEntries.PUT("/:id", controllers.UpdateTimeEntry)
			timeEntries.DELETE("/:id", controllers.DeleteTimeEntry)
		}

		// Inventory routes
		inventory := api.Group("/inventory")
		{
			inventory.POST("/items", controllers.CreateInventoryItem)
			inventory.GET("/items", controllers.GetInventoryItems)
			inventory.GET("/items/:id", controllers.GetInventoryItem)
			inventory.PUT("/items/:id", controllers.UpdateInventoryItem)
			inventory.DELETE("/items/:id", controllers.DeleteInventoryItem)

			inventory.POST("/movements", controllers.CreateStockMovement)
			inventory.GET("/movements", controllers.GetStockMovements)

			inventory.POST("/parts-usage", controllers.RecordPartsUsage)
			inventory.GET("/parts-usage", controllers.GetPartsUsage)

			inventory.GET("/alerts", controllers.GetLowStockAlerts)
			inventory.PUT("/alerts/:id/acknowledge", controllers.AcknowledgeLowStockAlert)

			inventory.GET("/analytics", controllers.GetInventoryAnalytics)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetNotifications)
			notifications.GET("/unread-count", controllers.GetUnreadCount)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
		}

		// Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports/technicians", reportController.GetTechnicianReport)
		api.GET("/reports/revenue", reportController.GetRevenueReport)

		// Dashboard routes
		api.GET("/dashboard/stats", controllers.GetDashboardStats)
		api.GET("/dashboard/recent-jobs", controllers.GetRecentJobs)

		// Settings routes
		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("", controllers.GetCompanySettings)
			settingsGroup.PUT("", controllers.UpdateCompanySettings)
			settingsGroup.GET("/templates", controllers.GetMessageTemplates)
			settingsGroup.PUT("/templates", controllers.UpsertMessageTemplate)
			settingsGroup.DELETE("/templates/:id", controllers.DeleteMessageTemplate)
			settingsGroup.GET("/messages", controllers.GetMessageLogs)
		}
	}

	return r
}
